package model

import (
	"context"
	"io"
)

// BlobMeta carries object metadata persisted alongside the blob payload.
type BlobMeta struct {
	Filename    string
	ContentType string
	UploadedBy  string
}

// BlobStore stores opaque byte payloads keyed by store-assigned identifiers.
// Delete tolerates already-absent keys.
type BlobStore interface {
	Put(ctx context.Context, reader io.Reader, size int64, meta BlobMeta) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
