// Package storage provides the transient upload directory shared by requests.
package storage

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/yourpalette/internal/security"
)

// ProcessedPrefix is prepended to the names of rendered composites.
const ProcessedPrefix = "processed_"

// Store saves and serves files from a single directory keyed by filename.
type Store struct {
	// Dir is the directory files are written to.
	Dir string

	// UniqueNames prefixes a random token when a file of the same name
	// already exists, so concurrent uploads do not overwrite each other.
	UniqueNames bool

	logger hclog.Logger
}

// New creates a Store rooted at dir.
func New(dir string, uniqueNames bool, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{
		Dir:         dir,
		UniqueNames: uniqueNames,
		logger:      logger.Named("storage"),
	}
}

// EnsureDir creates the storage directory if it doesn't exist.
func (s *Store) EnsureDir() error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil { // #nosec G301 - Upload directory is served to clients
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

// Path resolves name inside the storage directory, rejecting traversal.
func (s *Store) Path(name string) (string, error) {
	if err := security.ValidateFilePath(name, s.Dir); err != nil {
		return "", fmt.Errorf("invalid file name %q: %w", name, err)
	}
	return filepath.Join(s.Dir, name), nil
}

// maxNameAttempts bounds the tokens tried before Save gives up on a name.
const maxNameAttempts = 8

// Save writes r under name and returns the name actually used. When
// UniqueNames is set an existing file is never replaced: the file is created
// exclusively and a random token is prefixed until a free name is found.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	if !s.UniqueNames {
		if err := s.Write(name, r); err != nil {
			return "", err
		}
		return name, nil
	}

	candidate := name
	for range maxNameAttempts {
		f, err := s.create(candidate, os.O_EXCL)
		if errors.Is(err, fs.ErrExist) {
			token, err := randomToken()
			if err != nil {
				return "", err
			}
			s.logger.Debug("name collision, prefixing token", "name", name, "token", token)
			candidate = token + "_" + name
			continue
		}
		if err != nil {
			return "", err
		}
		if err := s.fill(f, candidate, r); err != nil {
			return "", err
		}
		return candidate, nil
	}
	return "", fmt.Errorf("failed to find a free name for %s after %d attempts", name, maxNameAttempts)
}

// Write writes r under name, replacing any existing file.
func (s *Store) Write(name string, r io.Reader) error {
	f, err := s.create(name, os.O_TRUNC)
	if err != nil {
		return err
	}
	return s.fill(f, name, r)
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (s *Store) Remove(name string) error {
	path, err := s.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	s.logger.Trace("file removed", "name", name)
	return nil
}

func (s *Store) create(name string, flag int) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|flag, 0o644) // #nosec G302 G304 - Path validated above; files are served to clients
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", name, err)
	}
	return f, nil
}

// fill copies r into f and closes it. A failed write leaves no partial file.
func (s *Store) fill(f *os.File, name string, r io.Reader) error {
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}

	s.logger.Trace("file written", "name", name, "bytes", n)
	return nil
}

// Open opens a stored file for reading.
func (s *Store) Open(name string) (*os.File, error) {
	path, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("file not found: %s: %w", name, err)
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return f, nil
}

// ProcessedName returns the stored name of the composite rendered from name.
func ProcessedName(name string) string {
	ext := filepath.Ext(name)
	return ProcessedPrefix + name[:len(name)-len(ext)] + ".png"
}

func randomToken() (string, error) {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("failed to generate file token: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
