// Package blobstore abstracts where uploaded document bytes live. The
// database keeps document metadata and a FileKey; this package resolves the
// key to actual storage.
package blobstore

import (
	"context"
	"fmt"
	"io"

	"adopsi/internal/platform/config"
)

//go:generate mockgen -source=blobstore.go -destination=mocks/mocks.go -package=mocks Store

// Store reads and writes document payloads by key.
type Store interface {
	// Put stores the full contents of r under key, overwriting any
	// existing object.
	Put(ctx context.Context, key string, contentType string, size int64, r io.Reader) error
	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// New builds the store selected by configuration.
func New(cfg config.BlobConfig) (Store, error) {
	switch cfg.Backend {
	case "s3":
		return NewS3Store(cfg)
	case "filesystem":
		return NewFilesystemStore(cfg.Root)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}
