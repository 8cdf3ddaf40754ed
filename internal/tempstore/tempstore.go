// Package tempstore scopes uploaded files to one request. Each batch gets
// its own directory keyed by batch ID, so concurrent uploads never collide,
// and the whole directory is removed on every exit path.
package tempstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var ErrEmptyFilename = errors.New("empty filename")

// Store creates and tears down per-batch upload directories.
type Store struct {
	baseDir string
}

// New creates a Store rooted at baseDir (os.TempDir() when empty).
func New(baseDir string) (*Store, error) {
	if baseDir == "" {
		baseDir = filepath.Join(os.TempDir(), "vocalysis-uploads")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Batch is one request's scoped directory.
type Batch struct {
	dir string
}

// NewBatch creates the directory for one upload batch.
func (s *Store) NewBatch(batchID string) (*Batch, error) {
	dir := filepath.Join(s.baseDir, batchID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create batch dir: %w", err)
	}
	return &Batch{dir: dir}, nil
}

// OpenBatch returns the directory for an existing batch, for workers that
// pick up files saved by the API process.
func (s *Store) OpenBatch(batchID string) *Batch {
	return &Batch{dir: filepath.Join(s.baseDir, batchID)}
}

// Dir returns the batch directory path.
func (b *Batch) Dir() string { return b.dir }

// Save writes one uploaded file into the batch directory under a sanitized
// name and returns its path.
func (b *Batch) Save(filename string, r io.Reader) (string, error) {
	name := SanitizeFilename(filename)
	if name == "" {
		return "", ErrEmptyFilename
	}

	path := filepath.Join(b.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return path, nil
}

// Remove deletes the batch directory and everything in it.
func (b *Batch) Remove() error {
	return os.RemoveAll(b.dir)
}

// SanitizeFilename strips path components and characters that could escape
// the batch directory.
func SanitizeFilename(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '_'
		default:
			return -1
		}
	}, name)
	name = strings.Trim(name, ".")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}
