package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DiskStore is the default blob backend: one flat directory of uploaded
// files, served statically under /uploads/.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the backing directory, for static file serving.
func (d *DiskStore) Dir() string {
	return d.dir
}

func (d *DiskStore) path(name string) string {
	// strip any path components a hostile client smuggled into the name
	return filepath.Join(d.dir, filepath.Base(name))
}

func (d *DiskStore) Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	f, err := os.Create(d.path(name))
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	return nil
}

func (d *DiskStore) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return os.Open(d.path(name))
}

func (d *DiskStore) Remove(ctx context.Context, name string) error {
	return os.Remove(d.path(name))
}
