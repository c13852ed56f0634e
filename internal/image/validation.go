package image

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNoFile is returned when a request carries no file part.
	ErrNoFile = errors.New("no file part")

	// ErrEmptyFilename is returned when the uploaded file has no name.
	ErrEmptyFilename = errors.New("no selected file")

	// ErrDisallowedExtension is returned for files outside the allow list.
	ErrDisallowedExtension = errors.New("file type not allowed")
)

// DefaultAllowedExtensions lists the upload extensions accepted by default.
func DefaultAllowedExtensions() []string {
	return []string{"png", "jpg", "jpeg", "gif"}
}

// SupportedImageExtensions returns every extension a decoder is registered for.
func SupportedImageExtensions() []string {
	return []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
}

// AllowedFile reports whether name has a final extension in allowed.
// Comparison is case-insensitive; allowed entries carry no leading dot.
// A name without a dot is never allowed.
func AllowedFile(name string, allowed []string) bool {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(name[idx+1:])
	return slices.ContainsFunc(allowed, func(a string) bool {
		return strings.EqualFold(strings.TrimPrefix(a, "."), ext)
	})
}

// ValidateUpload checks an uploaded filename against the allow list.
func ValidateUpload(name string, allowed []string) error {
	if name == "" {
		return ErrEmptyFilename
	}
	if !AllowedFile(name, allowed) {
		return fmt.Errorf("%w: %s (allowed: %s)", ErrDisallowedExtension, name, strings.Join(allowed, ", "))
	}
	return nil
}

// SecureFilename reduces a client-supplied filename to a safe basename.
// Accents are folded to ASCII, path separators become spaces, runs of
// whitespace become a single underscore, and anything outside
// [A-Za-z0-9._-] is dropped. Leading and trailing dots and underscores are
// trimmed. The result may be empty.
func SecureFilename(name string) string {
	name = foldASCII(name)
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}

	return strings.Trim(b.String(), "._")
}

// foldASCII decomposes runes and drops combining marks and non-ASCII runes.
func foldASCII(s string) string {
	var b strings.Builder
	for _, r := range norm.NFKD.String(s) {
		if unicode.Is(unicode.Mn, r) || r > unicode.MaxASCII {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
