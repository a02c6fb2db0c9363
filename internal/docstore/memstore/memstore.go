// Package memstore is an in-process docstore.Store. It keeps the semantics of
// the remote drivers (store-assigned monotonic timestamps, atomic set
// operations, full-snapshot subscriptions) and lets tests inject failures.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/google/uuid"
)

// Fault kinds accepted by SetFault.
const (
	FaultRead  = "read"
	FaultWrite = "write"
)

type Store struct {
	mu          sync.RWMutex
	clock       docstore.Clock
	collections map[string]map[string]map[string]any
	watchers    map[*watcher]struct{}
	faults      map[string]error
	writes      map[string]int
	closed      bool
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		watchers:    make(map[*watcher]struct{}),
		faults:      make(map[string]error),
		writes:      make(map[string]int),
	}
}

// SetFault makes every read or write on collection fail with err until it
// is cleared with a nil err. Open subscriptions on the collection observe a
// read fault on their next delivery.
func (s *Store) SetFault(collection, kind string, err error) {
	s.mu.Lock()
	key := kind + ":" + collection
	if err == nil {
		delete(s.faults, key)
	} else {
		s.faults[key] = err
	}
	s.mu.Unlock()

	if kind == FaultRead {
		s.notify(collection)
	}
}

// OpenStreams returns the number of live subscription channels.
func (s *Store) OpenStreams() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

// Writes returns how many successful writes touched collection.
func (s *Store) Writes(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[collection]
}

func (s *Store) fault(collection, kind string) error {
	if s.closed {
		return docstore.ErrUnavailable
	}
	if err, ok := s.faults[kind+":"+collection]; ok {
		return err
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := docstore.ValidateCollection(collection); err != nil {
		return "", err
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate document id: %w", err)
	}

	s.mu.Lock()
	if err := s.fault(collection, FaultWrite); err != nil {
		s.mu.Unlock()
		return "", err
	}
	s.put(collection, id.String(), docstore.ResolveServerTimestamps(data, s.clock.Next()))
	s.mu.Unlock()

	s.notify(collection)
	return id.String(), nil
}

func (s *Store) Create(ctx context.Context, path string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.fault(collection, FaultWrite); err != nil {
		s.mu.Unlock()
		return err
	}
	if _, exists := s.collections[collection][id]; exists {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", docstore.ErrAlreadyExists, path)
	}
	s.put(collection, id, docstore.ResolveServerTimestamps(data, s.clock.Next()))
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) SetMerge(ctx context.Context, path string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.fault(collection, FaultWrite); err != nil {
		s.mu.Unlock()
		return err
	}
	resolved := docstore.ResolveServerTimestamps(data, s.clock.Next())
	current := s.collections[collection][id]
	if current == nil {
		current = make(map[string]any)
	}
	s.put(collection, id, merge(current, resolved))
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func merge(dst, src map[string]any) map[string]any {
	out := docstore.Clone(dst)
	for k, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if existing, ok := out[k].(map[string]any); ok {
				out[k] = merge(existing, sub)
				continue
			}
		}
		out[k] = v
	}
	return out
}

func (s *Store) AddToSet(ctx context.Context, path, field string, value any) error {
	return s.mutateSet(ctx, path, field, func(current []any) ([]any, bool) {
		for _, v := range current {
			if docstore.Compare(v, value) == 0 {
				return current, false
			}
		}
		return append(current, value), true
	})
}

func (s *Store) RemoveFromSet(ctx context.Context, path, field string, value any) error {
	return s.mutateSet(ctx, path, field, func(current []any) ([]any, bool) {
		out := make([]any, 0, len(current))
		for _, v := range current {
			if docstore.Compare(v, value) != 0 {
				out = append(out, v)
			}
		}
		return out, len(out) != len(current)
	})
}

func (s *Store) mutateSet(ctx context.Context, path, field string, apply func([]any) ([]any, bool)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.fault(collection, FaultWrite); err != nil {
		s.mu.Unlock()
		return err
	}
	doc, ok := s.collections[collection][id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	current := docstore.AsSlice(doc[field])
	next, changed := apply(append([]any(nil), current...))
	if _, isArray := doc[field].([]any); !changed && isArray {
		s.mu.Unlock()
		return nil
	}
	doc[field] = next
	s.writes[collection]++
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

func (s *Store) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	collection, id, err := docstore.Split(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.fault(collection, FaultWrite); err != nil {
		s.mu.Unlock()
		return err
	}
	_, exists := s.collections[collection][id]
	if exists {
		delete(s.collections[collection], id)
		s.writes[collection]++
	}
	s.mu.Unlock()

	if exists {
		s.notify(collection)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, path string) (*docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection, id, err := docstore.Split(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault(collection, FaultRead); err != nil {
		return nil, err
	}
	data, ok := s.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", docstore.ErrNotFound, path)
	}
	return &docstore.Document{ID: id, Path: path, Data: docstore.Clone(data)}, nil
}

func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}
	return s.snapshot(q)
}

func (s *Store) snapshot(q docstore.Query) ([]docstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.fault(q.Collection, FaultRead); err != nil {
		return nil, err
	}

	docs := make([]docstore.Document, 0, len(s.collections[q.Collection]))
	for id, data := range s.collections[q.Collection] {
		docs = append(docs, docstore.Document{
			ID:   id,
			Path: docstore.Doc(q.Collection, id),
			Data: docstore.Clone(data),
		})
	}
	return q.Apply(docs), nil
}

// put stores data; callers hold the write lock.
func (s *Store) put(collection, id string, data map[string]any) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]map[string]any)
		s.collections[collection] = docs
	}
	docs[id] = docstore.Clone(data)
	s.writes[collection]++
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for w := range s.watchers {
		if w.query.Collection == collection {
			w.wake()
		}
	}
}

func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	watchers := make([]*watcher, 0, len(s.watchers))
	for w := range s.watchers {
		watchers = append(watchers, w)
	}
	s.mu.Unlock()

	for _, w := range watchers {
		w.Stop()
	}
	return nil
}
