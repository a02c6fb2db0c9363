package firestore

import (
	"context"
	"errors"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

type stream struct {
	it     *firestore.QuerySnapshotIterator
	cancel context.CancelFunc
	out    chan docstore.Event
	once   sync.Once
}

func (s *Store) Subscribe(ctx context.Context, q docstore.Query) (docstore.Stream, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	st := &stream{
		it:     s.build(q).Snapshots(ctx),
		cancel: cancel,
		out:    make(chan docstore.Event),
	}
	go st.run(ctx, q.Collection)
	return st, nil
}

func (st *stream) Events() <-chan docstore.Event { return st.out }

func (st *stream) Stop() {
	st.once.Do(st.cancel)
}

func (st *stream) run(ctx context.Context, collection string) {
	defer close(st.out)
	defer st.it.Stop()

	for {
		snap, err := st.it.Next()
		if err != nil {
			if errors.Is(err, iterator.Done) || ctx.Err() != nil {
				return
			}
			st.send(ctx, docstore.Event{Err: mapError(err)})
			return
		}

		docs, err := snap.Documents.GetAll()
		if err != nil {
			st.send(ctx, docstore.Event{Err: mapError(err)})
			return
		}
		if !st.send(ctx, docstore.Event{Docs: toDocuments(collection, docs)}) {
			return
		}
	}
}

func (st *stream) send(ctx context.Context, ev docstore.Event) bool {
	select {
	case st.out <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
