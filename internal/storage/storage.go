// Package storage holds uploaded resource files. The local backend can hand
// back a filesystem path for a resource; the S3 backend is opaque and its
// files are only reachable through the resource URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Backends.
const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// ErrNotFound is returned when no file is stored for a resource.
var ErrNotFound = errors.New("storage: not found")

// Uploader stores the file of a resource.
type Uploader interface {
	Put(ctx context.Context, resourceID string, r io.Reader, size int64) error
	Exists(ctx context.Context, resourceID string) (bool, error)
}

// LocalPather is an Uploader whose files live on the local filesystem.
type LocalPather interface {
	Uploader
	Path(resourceID string) string
}

// Config selects and configures a backend.
type Config struct {
	Backend string
	Path    string
	S3      S3Config
}

// New returns the configured backend.
func New(cfg Config) (Uploader, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendLocal:
		return NewLocalStore(cfg.Path)
	case BackendS3:
		return NewS3Store(cfg.S3)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

func validID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errors.New("resource id is required")
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("invalid resource id %q", id)
	}
	return nil
}
