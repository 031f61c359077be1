// Package filestore persists uploaded files on the local filesystem under a
// single configurable root.
package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store writes and serves files below its root directory.
type Store struct {
	root string
}

// New constructs a Store rooted at dir.
func New(dir string) *Store {
	return &Store{root: filepath.Clean(dir)}
}

// Save writes the reader's content to rel (slash-separated, relative to the
// root), creating intermediate directories, and returns the stored path.
func (s *Store) Save(rel string, r io.Reader) (string, error) {
	path, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("filestore: mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("filestore: create: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("filestore: write: %w", err)
	}
	return path, nil
}

// Open opens a previously stored path for reading.
func (s *Store) Open(path string) (*os.File, error) {
	if !s.contains(path) {
		return nil, fmt.Errorf("filestore: path %q escapes the store root", path)
	}
	return os.Open(path)
}

// Remove deletes a stored file; a missing file is not an error.
func (s *Store) Remove(path string) error {
	if !s.contains(path) {
		return fmt.Errorf("filestore: path %q escapes the store root", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("filestore: remove: %w", err)
	}
	return nil
}

func (s *Store) resolve(rel string) (string, error) {
	path := filepath.Join(s.root, filepath.FromSlash(rel))
	if !s.contains(path) {
		return "", fmt.Errorf("filestore: path %q escapes the store root", rel)
	}
	return path, nil
}

func (s *Store) contains(path string) bool {
	path = filepath.Clean(path)
	return path == s.root || strings.HasPrefix(path, s.root+string(filepath.Separator))
}
