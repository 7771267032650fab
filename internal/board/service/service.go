package service

import (
	"context"
	"sync"

	"github.com/openclub/bulletin/internal/board"
	"github.com/openclub/bulletin/internal/board/store"
)

// Notifier is signalled after every successful mutation. The realtime
// broadcaster implements it; tests usually pass nil.
type Notifier interface {
	NotifyUpdate()
}

// Service is the single serialization point for document mutations: one mutex
// is held across the whole read-mutate-write sequence, so concurrent handlers
// can no longer lose each other's updates.
type Service struct {
	mu       sync.Mutex
	store    store.Store
	notifier Notifier
}

func New(st store.Store, n Notifier) *Service {
	return &Service{store: st, notifier: n}
}

// Document returns the current document.
func (s *Service) Document(ctx context.Context) (*board.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Read(ctx)
}

// Update runs fn against the current document under the writer lock and
// persists the result. fn returning an error aborts without writing. The
// notifier is signalled outside the lock so it may safely re-read the store.
func (s *Service) Update(ctx context.Context, fn func(*board.Document) error) error {
	s.mu.Lock()
	doc, err := s.store.Read(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if err := fn(doc); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.store.Write(ctx, doc); err != nil {
		s.mu.Unlock()
		return err
	}
	n := s.notifier
	s.mu.Unlock()

	if n != nil {
		n.NotifyUpdate()
	}
	return nil
}
