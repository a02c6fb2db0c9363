package memstore

import (
	"context"
	"sync"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type watcher struct {
	store *Store
	query docstore.Query
	wakeC chan struct{}
	done  chan struct{}
	out   chan docstore.Event
	once  sync.Once
}

func (s *Store) Subscribe(ctx context.Context, q docstore.Query) (docstore.Stream, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, docstore.ErrUnavailable
	}
	w := &watcher{
		store: s,
		query: q,
		wakeC: make(chan struct{}, 1),
		done:  make(chan struct{}),
		out:   make(chan docstore.Event),
	}
	s.watchers[w] = struct{}{}
	s.mu.Unlock()

	w.wake()
	go w.run(ctx)
	return w, nil
}

func (w *watcher) Events() <-chan docstore.Event { return w.out }

func (w *watcher) Stop() {
	w.once.Do(func() { close(w.done) })
}

func (w *watcher) wake() {
	select {
	case w.wakeC <- struct{}{}:
	default:
	}
}

func (w *watcher) run(ctx context.Context) {
	defer func() {
		w.store.mu.Lock()
		delete(w.store.watchers, w)
		w.store.mu.Unlock()
		close(w.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.wakeC:
		}

		docs, err := w.store.snapshot(w.query)
		select {
		case w.out <- docstore.Event{Docs: docs, Err: err}:
		case <-ctx.Done():
			return
		case <-w.done:
			return
		}
		if err != nil {
			return
		}
	}
}
