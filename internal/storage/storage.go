// Package storage keeps uploaded media in an object store and maps stored
// keys to public URLs.
package storage

import (
	"context"
	"fmt"
	"strings"

	"pulse/internal/config"
)

// Store is an object store addressed by slash-separated keys.
type Store interface {
	// Upload writes body under key and returns its public URL.
	Upload(ctx context.Context, key string, body []byte, contentType string) (string, error)
	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// KeyFromURL reports the key behind a URL this store handed out.
	KeyFromURL(url string) (string, bool)
}

// New builds the store selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "s3":
		return NewS3Store(ctx, cfg)
	case "local", "":
		return NewLocalStore(cfg.StorageLocalDir, cfg.StoragePublicURL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// urlMapper converts between keys and URLs under one public base.
type urlMapper struct {
	base string
}

func newURLMapper(base string) urlMapper {
	return urlMapper{base: strings.TrimRight(base, "/")}
}

func (m urlMapper) URL(key string) string {
	return m.base + "/" + strings.TrimLeft(key, "/")
}

func (m urlMapper) KeyFromURL(url string) (string, bool) {
	prefix := m.base + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || strings.Contains(key, "..") || strings.ContainsAny(key, "?#") {
		return "", false
	}
	return key, true
}
