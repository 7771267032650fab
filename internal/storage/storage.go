package storage

import (
	"context"
	"io"
)

// BlobStore holds uploaded media files. Names are the generated file names
// (no directories); items reference them through the /uploads/ path.
type BlobStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Remove deletes the blob. Callers treat failures as best-effort cleanup.
	Remove(ctx context.Context, name string) error
}
