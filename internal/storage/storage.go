package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// Driver names accepted by New.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

var (
	// ErrInvalidKey is returned for empty keys or keys escaping the store root.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("storage: not found")
)

// Store keeps uploaded files such as profile pictures.
type Store interface {
	// Put writes body under key and returns the public location of the object.
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// Config selects and configures a Store.
type Config struct {
	Driver   string
	Root     string
	Bucket   string
	Region   string
	Endpoint string
}

// New builds the store named by cfg.Driver. An empty driver means local.
func New(cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverLocal:
		store, err := NewLocalStore(cfg.Root)
		if err != nil {
			return nil, err
		}
		return store, nil
	case DriverS3:
		store, err := NewS3Store(cfg.Bucket, cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.New("storage: unknown driver " + cfg.Driver)
	}
}

// CleanKey normalizes a slash separated key and rejects traversal.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || strings.HasPrefix(cleaned, "..") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
