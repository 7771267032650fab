package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/openclub/bulletin/internal/board"
)

// FileStore keeps the document as one indented JSON file, compatible with the
// data.json layout of the previous deployment.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Read(ctx context.Context) (*board.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readLocked()
}

func (f *FileStore) readLocked() (*board.Document, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: read %s: %v", ErrStorageUnavailable, f.path, err)
		}
		doc := board.NewDocument()
		if err := f.writeLocked(doc); err != nil {
			return nil, err
		}
		return doc, nil
	}
	doc := &board.Document{}
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrStorageUnavailable, f.path, err)
	}
	doc.Normalize()
	return doc, nil
}

func (f *FileStore) Write(ctx context.Context, doc *board.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writeLocked(doc)
}

func (f *FileStore) writeLocked(doc *board.Document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageUnavailable, err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: mkdir %s: %v", ErrStorageUnavailable, dir, err)
		}
	}
	if err := os.WriteFile(f.path, b, 0o644); err != nil {
		return fmt.Errorf("%w: write %s: %v", ErrStorageUnavailable, f.path, err)
	}
	return nil
}
