package store

import (
	"context"
	"errors"

	"github.com/openclub/bulletin/internal/board"
)

// ErrStorageUnavailable marks read/write failures of the persistent medium.
// Handlers treat it as fatal for the current request; nothing retries.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store persists the whole board document as one unit. Read must lazily
// create an empty document when none exists yet; Write replaces whatever was
// there. Neither call is transactional.
type Store interface {
	Read(ctx context.Context) (*board.Document, error)
	Write(ctx context.Context, doc *board.Document) error
}
