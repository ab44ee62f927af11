package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"pulse/internal/observability"
)

// LocalStore keeps objects in a directory that the HTTP server exposes
// statically.
type LocalStore struct {
	urlMapper
	dir string
}

// NewLocalStore creates dir when missing.
func NewLocalStore(dir, publicURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &LocalStore{urlMapper: newURLMapper(publicURL), dir: dir}, nil
}

// Dir is the root directory objects are written to.
func (s *LocalStore) Dir() string {
	return s.dir
}

func (s *LocalStore) Upload(_ context.Context, key string, body []byte, _ string) (url string, err error) {
	defer func() {
		observability.StorageOperations.WithLabelValues("local", "upload", observability.ResultLabel(err)).Inc()
	}()

	path, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return s.URL(key), nil
}

func (s *LocalStore) Delete(_ context.Context, keys ...string) (err error) {
	defer func() {
		observability.StorageOperations.WithLabelValues("local", "delete", observability.ResultLabel(err)).Inc()
	}()

	var errs []error
	for _, key := range keys {
		path, perr := s.path(key)
		if perr != nil {
			errs = append(errs, perr)
			continue
		}
		if rerr := os.Remove(path); rerr != nil && !errors.Is(rerr, fs.ErrNotExist) {
			errs = append(errs, rerr)
		}
	}
	return errors.Join(errs...)
}

func (s *LocalStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}
