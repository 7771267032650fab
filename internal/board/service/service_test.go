package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openclub/bulletin/internal/board"
	"github.com/openclub/bulletin/internal/board/store"
)

type countingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *countingNotifier) NotifyUpdate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
}

func (c *countingNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

func newTestService(t *testing.T) (*Service, *countingNotifier) {
	t.Helper()
	fs := store.NewFileStore(filepath.Join(t.TempDir(), "data.json"))
	n := &countingNotifier{}
	return New(fs, n), n
}

func TestUpdate_PersistsAndNotifies(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	err := svc.Update(ctx, func(d *board.Document) error {
		_, err := d.AddNews(board.NewsInput{Title: "t"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n.count())

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	require.Len(t, doc.News, 1)
}

func TestUpdate_AbortsWithoutWriteOnError(t *testing.T) {
	svc, n := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Update(ctx, func(d *board.Document) error {
		_, err := d.AddNews(board.NewsInput{Title: "keep"})
		return err
	}))

	boom := errors.New("boom")
	err := svc.Update(ctx, func(d *board.Document) error {
		d.News = nil // would corrupt if written
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n.count(), "failed mutation must not broadcast")

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	require.Len(t, doc.News, 1, "aborted mutation must not persist")
}

func TestUpdate_SerializesConcurrentMutations(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_ = svc.Update(ctx, func(d *board.Document) error {
				_, err := d.AddWish(board.WishInput{Text: "w"})
				return err
			})
		}()
	}
	wg.Wait()

	doc, err := svc.Document(ctx)
	require.NoError(t, err)
	assert.Len(t, doc.Wishes, writers, "no update may be lost")
}
