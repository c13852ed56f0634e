// Package image provides utilities for loading, validating and resampling images.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format
	_ "image/jpeg" // Register JPEG format
	_ "image/png"  // Register PNG format
	"io"
	"os"
	"strings"

	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/yourpalette/internal/security"
	httputil "github.com/jmylchreest/yourpalette/internal/util/http"
	"github.com/jmylchreest/yourpalette/internal/util/imagecache"
)

// ErrUnreadableImage is returned when image data cannot be decoded.
var ErrUnreadableImage = errors.New("unreadable image data")

// Loader handles loading images from various sources.
type Loader interface {
	// LoadContext loads an image from the given path. Remote loads stop when
	// ctx is cancelled.
	LoadContext(ctx context.Context, path string) (image.Image, error)
}

// Decode decodes an image from r. Decode failures wrap ErrUnreadableImage so
// callers can tell corrupt input apart from I/O errors.
func Decode(r io.Reader) (image.Image, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}
	return img, format, nil
}

// FileLoader loads images from the local filesystem.
type FileLoader struct{}

// NewFileLoader creates a new FileLoader instance.
func NewFileLoader() *FileLoader {
	return &FileLoader{}
}

// LoadContext loads an image from a file path unless ctx is already done.
func (l *FileLoader) LoadContext(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.Load(path)
}

// Load loads an image from a file path.
// Supported formats: JPEG, PNG, GIF, WebP.
func (l *FileLoader) Load(path string) (image.Image, error) {
	if path == "" {
		return nil, fmt.Errorf("image path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("image file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path is a directory, not a file: %s", path)
	}

	file, err := os.Open(path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}
	defer file.Close()

	img, _, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return img, nil
}

// SmartLoader loads images from both local files and HTTPS URLs.
type SmartLoader struct {
	fileLoader *FileLoader

	// MaxBytes bounds the size of a fetched image. Zero means unlimited.
	MaxBytes int64

	// Cache keeps downloads on disk between runs. Nil fetches every time.
	Cache *imagecache.Cache
}

// NewSmartLoader creates a new SmartLoader instance.
func NewSmartLoader(maxBytes int64) *SmartLoader {
	return &SmartLoader{
		fileLoader: NewFileLoader(),
		MaxBytes:   maxBytes,
	}
}

// Load loads an image from either a local file path or an HTTPS URL.
func (l *SmartLoader) Load(path string) (image.Image, error) {
	return l.LoadContext(context.Background(), path)
}

// LoadContext is Load with a context bounding any download.
func (l *SmartLoader) LoadContext(ctx context.Context, path string) (image.Image, error) {
	if isURL(path) {
		return l.loadFromURL(ctx, path)
	}
	return l.fileLoader.LoadContext(ctx, path)
}

func (l *SmartLoader) loadFromURL(ctx context.Context, url string) (image.Image, error) {
	if l.Cache != nil {
		path, err := l.Cache.Fetch(ctx, url)
		if err != nil {
			return nil, err
		}
		return l.fileLoader.Load(path)
	}

	if err := security.ValidateHTTPURL(url); err != nil {
		return nil, err
	}

	data, err := httputil.Fetch(ctx, url, httputil.FetchOptions{MaxBytes: l.MaxBytes})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from URL: %w", err)
	}

	img, _, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}
	return img, nil
}

func isURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}
