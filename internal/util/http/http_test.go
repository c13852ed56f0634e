package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jmylchreest/yourpalette/internal/security"
)

func TestFetch(t *testing.T) {
	var gotUA, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotHeader = r.Header.Get("X-Test")
		_, _ = w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	data, err := Fetch(context.Background(), server.URL, FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "image-bytes" {
		t.Errorf("Fetch() = %q", data)
	}
	if !strings.HasPrefix(gotUA, UserAgentName+"/") {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotHeader != "yes" {
		t.Errorf("X-Test = %q, want yes", gotHeader)
	}
}

func TestFetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 100)))
	}))
	defer server.Close()

	if _, err := Fetch(context.Background(), server.URL+"/missing", FetchOptions{}); err == nil {
		t.Error("expected error for 404")
	}

	_, err := Fetch(context.Background(), server.URL, FetchOptions{MaxBytes: 10})
	if !errors.Is(err, security.ErrSizeLimitExceeded) {
		t.Errorf("Fetch() error = %v, want ErrSizeLimitExceeded", err)
	}
}
