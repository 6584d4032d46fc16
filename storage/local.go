package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore is a filesystem-backed BlobStore for development and tests.
type LocalStore struct {
	root string
}

// NewLocalStore creates a store rooted at dir, creating it if needed
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create storage root: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

func (s *LocalStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (s *LocalStore) Get(ctx context.Context, path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
}

func (s *LocalStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return nil
	})
	return keys, err
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	return os.Remove(filepath.Join(s.root, filepath.FromSlash(path)))
}

// SignURL returns a pseudo-signed file URL. Good enough for development; a
// real object store implementation signs for its own scheme.
func (s *LocalStore) SignURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if _, err := os.Stat(full); err != nil {
		return "", err
	}
	expires := time.Now().Add(expiry).Unix()
	return fmt.Sprintf("file://%s?expires=%d", full, expires), nil
}
