// Package storage abstracts where image bytes live. Two implementations
// exist: local disk and S3-compatible remote object storage. The active
// backend is chosen once at startup from configuration; callers address
// objects only by key and never see the difference.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/enzococca/soqotra-rockart/internal/config"
	"go.uber.org/zap"
)

// ErrNotExist is returned by Link when no object is stored under the key.
var ErrNotExist = errors.New("object does not exist")

// Backend is the capability set every storage medium must provide:
// upload-by-key, delete-by-key, and a retrievable link.
type Backend interface {
	// Upload streams data to the backend under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes the object identified by key. Deleting a missing
	// object is not an error.
	Delete(ctx context.Context, key string) error
	// Link returns a URL the browser can fetch the object from.
	// For local storage this is a static path; for remote storage a
	// time-bounded presigned URL. Returns ErrNotExist for missing objects.
	Link(ctx context.Context, key string) (string, error)
	// Tag identifies the backend kind ("local" or "remote") and is
	// recorded on every stored image at creation time.
	Tag() string
}

// New builds the backend selected by cfg.StorageBackend.
func New(cfg *config.Config, log *zap.Logger) (Backend, error) {
	switch cfg.StorageBackend {
	case config.BackendLocal:
		return NewLocal(cfg.UploadDir, cfg.PublicBase)
	case config.BackendRemote:
		return NewRemote(cfg, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
