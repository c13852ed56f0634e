package image

import (
	"errors"
	"strings"
	"testing"
)

func TestAllowedFile(t *testing.T) {
	allowed := DefaultAllowedExtensions()

	tests := []struct {
		name string
		want bool
	}{
		{"photo.png", true},
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.gif", true},
		{"PHOTO.PNG", true},
		{"archive.tar.png", true},
		{"notes.txt", false},
		{"doc.pdf", false},
		{"png", false},
		{"", false},
		{"photo.png.exe", false},
		{"photo.", false},
		{"image.webp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AllowedFile(tt.name, allowed); got != tt.want {
				t.Errorf("AllowedFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestAllowedFileDottedAllowList(t *testing.T) {
	if !AllowedFile("a.webp", []string{".webp"}) {
		t.Error("allow-list entries with a leading dot should match")
	}
}

func TestValidateUpload(t *testing.T) {
	allowed := DefaultAllowedExtensions()

	if err := ValidateUpload("", allowed); !errors.Is(err, ErrEmptyFilename) {
		t.Errorf("empty name: error = %v, want ErrEmptyFilename", err)
	}
	if err := ValidateUpload("a.txt", allowed); !errors.Is(err, ErrDisallowedExtension) {
		t.Errorf("bad extension: error = %v, want ErrDisallowedExtension", err)
	}
	if err := ValidateUpload("a.png", allowed); err != nil {
		t.Errorf("valid name: error = %v", err)
	}
}

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"My cool photo.jpg", "My_cool_photo.jpg"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Windows\evil.png`, "C_Windows_evil.png"},
		{"café.gif", "cafe.gif"},
		{".hidden.png", "hidden.png"},
		{"a$b%c.png", "abc.png"},
		{"..", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := SecureFilename(tt.in)
			if got != tt.want {
				t.Errorf("SecureFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if strings.ContainsAny(got, `/\`) {
				t.Errorf("SecureFilename(%q) = %q contains a path separator", tt.in, got)
			}
		})
	}
}
