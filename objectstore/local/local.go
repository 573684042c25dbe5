// Package local implements objectstore.Store on the local filesystem.
// Signed URLs are file:// URLs; intended for development and tests.
package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/skillsenselab/scribe/objectstore"
)

// Store implements objectstore.Store using a directory on disk.
type Store struct {
	basePath string
}

// New creates a new local filesystem store rooted at basePath.
func New(basePath string) (*Store, error) {
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("objectstore: resolve base path: %w", err)
	}
	if err := os.MkdirAll(abs, 0o750); err != nil {
		return nil, fmt.Errorf("objectstore: create base directory: %w", err)
	}
	return &Store{basePath: abs}, nil
}

// SignedURL returns a file:// URL for the object. Local files need no
// signature; the expiry is accepted for interface compatibility.
func (s *Store) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	fullPath := filepath.Join(s.basePath, filepath.Clean(path))
	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("objectstore: object not found: %s", path)
		}
		return "", fmt.Errorf("objectstore: stat object: %w", err)
	}
	u := &url.URL{Scheme: "file", Path: fullPath}
	return u.String(), nil
}

// Upload writes data from reader to a local file.
func (s *Store) Upload(_ context.Context, path string, reader io.Reader) error {
	fullPath := filepath.Join(s.basePath, filepath.Clean(path))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("objectstore: create directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("objectstore: create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		return fmt.Errorf("objectstore: write file: %w", err)
	}
	return nil
}

// Download returns a reader for the local file at the given path.
func (s *Store) Download(_ context.Context, path string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.basePath, filepath.Clean(path))
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("objectstore: object not found: %s", path)
		}
		return nil, fmt.Errorf("objectstore: open file: %w", err)
	}
	return f, nil
}

// Delete removes a local file. Returns nil if the file does not exist.
func (s *Store) Delete(_ context.Context, path string) error {
	fullPath := filepath.Join(s.basePath, filepath.Clean(path))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("objectstore: delete file: %w", err)
	}
	return nil
}

// Exists checks whether a local file exists.
func (s *Store) Exists(_ context.Context, path string) (bool, error) {
	fullPath := filepath.Join(s.basePath, filepath.Clean(path))
	_, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("objectstore: stat file: %w", err)
	}
	return true, nil
}

// compile-time check
var _ objectstore.Store = (*Store)(nil)
