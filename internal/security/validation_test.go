package security

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestValidateHTTPURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/image.png", false},
		{"HTTPS://example.com/image.png", false},
		{"", true},
		{"http://example.com/image.png", true},
		{"https://", true},
		{"https://localhost/a.png", true},
		{"https://127.0.0.1/a.png", true},
		{"https://10.0.0.1/a.png", true},
		{"https://172.20.1.1/a.png", true},
		{"https://172.32.1.1/a.png", false},
		{"https://192.168.0.2/a.png", true},
		{"https://169.254.169.254/latest", true},
		{"https://[::1]/a.png", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			err := ValidateHTTPURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		path    string
		wantErr bool
	}{
		{"photo.png", false},
		{"sub/photo.png", false},
		{"", true},
		{"../photo.png", true},
		{"sub/../../photo.png", true},
		{"/etc/passwd", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			err := ValidateFilePath(tt.path, "/srv/uploads")
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) error = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSafeUint8(t *testing.T) {
	tests := []struct {
		in   int
		want uint8
	}{
		{-5, 0},
		{0, 0},
		{128, 128},
		{255, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := SafeUint8(tt.in); got != tt.want {
			t.Errorf("SafeUint8(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLimitedReader(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   int64
		wantErr error
	}{
		{"under limit", "hello", 10, nil},
		{"exact fit", "hello", 5, nil},
		{"over limit", "hello world", 5, ErrSizeLimitExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := io.ReadAll(NewLimitedReader(strings.NewReader(tt.input), tt.limit))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ReadAll() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && !bytes.Equal(data, []byte(tt.input)) {
				t.Errorf("ReadAll() = %q, want %q", data, tt.input)
			}
		})
	}
}
