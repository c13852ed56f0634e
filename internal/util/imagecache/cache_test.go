package imagecache

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestKey(t *testing.T) {
	tests := []struct {
		url     string
		wantExt string
	}{
		{"https://example.com/photo.png", ".png"},
		{"https://example.com/photo.JPG?size=large", ".jpg"},
		{"https://example.com/images/", defaultExt},
		{"https://example.com/archive.tar.verylong", defaultExt},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			key := Key(tt.url)
			if !strings.HasSuffix(key, tt.wantExt) {
				t.Errorf("Key(%q) = %q, want suffix %q", tt.url, key, tt.wantExt)
			}
			if len(key) != 32+len(tt.wantExt) {
				t.Errorf("Key(%q) = %q, want 32 hex characters before the extension", tt.url, key)
			}
			if Key(tt.url) != key {
				t.Error("Key is not deterministic")
			}
		})
	}

	if Key("https://example.com/a.png") == Key("https://example.com/b.png") {
		t.Error("different URLs share a key")
	}
}

func TestFetchReturnsCachedFile(t *testing.T) {
	dir := t.TempDir()
	const url = "https://example.com/photo.png"

	want := filepath.Join(dir, Key(url))
	if err := os.WriteFile(want, []byte("cached"), 0o600); err != nil {
		t.Fatal(err)
	}

	c := &Cache{Dir: dir}
	got, err := c.Fetch(context.Background(), url)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != want {
		t.Errorf("Fetch() = %q, want %q", got, want)
	}
}

func TestFetchRejectsUnsafeURLs(t *testing.T) {
	c := &Cache{Dir: t.TempDir()}

	for _, url := range []string{
		"http://example.com/a.png",
		"https://localhost/a.png",
		"https://192.168.1.10/a.png",
		"ftp://example.com/a.png",
	} {
		t.Run(url, func(t *testing.T) {
			if _, err := c.Fetch(context.Background(), url); err == nil {
				t.Errorf("Fetch(%q) expected error", url)
			}
		})
	}
}
