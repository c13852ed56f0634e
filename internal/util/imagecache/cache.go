// Package imagecache downloads remote images once and keeps them on disk.
package imagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jmylchreest/yourpalette/internal/security"
	httputil "github.com/jmylchreest/yourpalette/internal/util/http"
)

// defaultExt is used when a URL path carries no usable extension.
const defaultExt = ".img"

// Cache stores downloaded images under Dir, keyed by URL.
type Cache struct {
	// Dir is the cache directory. Empty selects DefaultDir.
	Dir string

	// MaxBytes bounds the size of a download. Zero means unlimited.
	MaxBytes int64

	// Refresh re-downloads images that are already cached.
	Refresh bool
}

// DefaultDir returns ~/.cache/yourpalette/images, or the platform equivalent.
func DefaultDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to determine cache directory: %w", err)
		}
		return filepath.Join(home, ".cache", "yourpalette", "images"), nil
	}
	return filepath.Join(cacheDir, "yourpalette", "images"), nil
}

// Key returns the file name an image URL is cached under: a hash of the URL
// plus the extension of its path, ignoring any query string.
func Key(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	name := hex.EncodeToString(sum[:16])

	ext := defaultExt
	if u, err := url.Parse(rawURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); len(e) > 1 && len(e) <= 5 {
			ext = e
		}
	}
	return name + ext
}

// Fetch returns the local path of the image at rawURL, downloading it first
// unless it is already cached. Only HTTPS URLs to public hosts are accepted.
func (c *Cache) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := security.ValidateHTTPURL(rawURL); err != nil {
		return "", err
	}

	dir := c.Dir
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return "", err
		}
		dir = d
	}

	cached := filepath.Join(dir, Key(rawURL))
	if !c.Refresh {
		if info, err := os.Stat(cached); err == nil && info.Mode().IsRegular() {
			return cached, nil
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil { // #nosec G301 - Cache directory needs standard permissions
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := httputil.Fetch(ctx, rawURL, httputil.FetchOptions{MaxBytes: c.MaxBytes})
	if err != nil {
		return "", fmt.Errorf("failed to download image: %w", err)
	}

	// Write then rename so a concurrent reader never sees a partial file.
	tmp, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return "", fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write cached image: %w", err)
	}
	if err := os.Rename(tmp.Name(), cached); err != nil {
		return "", fmt.Errorf("failed to store cached image: %w", err)
	}

	return cached, nil
}
