package pgstore

import (
	"context"
	"errors"
	"log"
	"reflect"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
)

// maxRetryDelay caps the wait between attempts while the database is
// unreachable.
const maxRetryDelay = 30 * time.Second

func changeChannel(collection string) string {
	return "docstore:changes:" + collection
}

// changeFeed wakes subscribers after writes. Local subscribers are woken
// directly; other processes hear about writes over Redis.
type changeFeed struct {
	rdb       *redis.Client
	mu        sync.Mutex
	listeners map[string]map[chan struct{}]struct{}
}

func newChangeFeed(rdb *redis.Client) *changeFeed {
	return &changeFeed{
		rdb:       rdb,
		listeners: make(map[string]map[chan struct{}]struct{}),
	}
}

func (f *changeFeed) publish(ctx context.Context, collection string) {
	f.mu.Lock()
	for ch := range f.listeners[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	f.mu.Unlock()

	if f.rdb != nil {
		if err := f.rdb.Publish(ctx, changeChannel(collection), collection).Err(); err != nil {
			log.Printf("⚠️ change feed publish failed for %s: %v", collection, err)
		}
	}
}

func (f *changeFeed) listen(collection string) (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	f.mu.Lock()
	set, ok := f.listeners[collection]
	if !ok {
		set = make(map[chan struct{}]struct{})
		f.listeners[collection] = set
	}
	set[ch] = struct{}{}
	f.mu.Unlock()

	return ch, func() {
		f.mu.Lock()
		delete(f.listeners[collection], ch)
		f.mu.Unlock()
	}
}

func (f *changeFeed) close() {
	f.mu.Lock()
	f.listeners = make(map[string]map[chan struct{}]struct{})
	f.mu.Unlock()
}

type stream struct {
	cancel context.CancelFunc
	out    chan docstore.Event
	once   sync.Once
}

func (st *stream) Events() <-chan docstore.Event { return st.out }

func (st *stream) Stop() {
	st.once.Do(st.cancel)
}

func (s *Store) Subscribe(ctx context.Context, q docstore.Query) (docstore.Stream, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	st := &stream{cancel: cancel, out: make(chan docstore.Event)}

	local, unlisten := s.feed.listen(q.Collection)
	var remote <-chan *redis.Message
	var pubsub *redis.PubSub
	if s.feed.rdb != nil {
		pubsub = s.feed.rdb.Subscribe(ctx, changeChannel(q.Collection))
		if _, err := pubsub.Receive(ctx); err != nil {
			log.Printf("⚠️ change feed subscribe failed, polling %s: %v", q.Collection, err)
			pubsub.Close()
			pubsub = nil
		} else {
			remote = pubsub.Channel()
		}
	}

	go func() {
		defer close(st.out)
		defer unlisten()
		if pubsub != nil {
			defer pubsub.Close()
		}
		query := func(ctx context.Context) ([]docstore.Document, error) {
			return s.Query(ctx, q)
		}
		watch(ctx, q.Collection, query, s.pollInterval, st.out, local, remote)
	}()
	return st, nil
}

// watch re-runs query whenever the collection changes and emits the result
// when it differs from the last delivery. The poll ticker covers writers
// that do not announce themselves. While the database is unavailable the
// query is retried with a growing delay; any other error ends the stream.
func watch(ctx context.Context, collection string, query func(context.Context) ([]docstore.Document, error), pollInterval time.Duration, out chan<- docstore.Event, local <-chan struct{}, remote <-chan *redis.Message) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last []docstore.Document
	first := true
	delay := pollInterval
	for {
		docs, err := query(ctx)
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, docstore.ErrUnavailable) {
			log.Printf("⚠️ query on %s failed, retrying in %s: %v", collection, delay, err)
			retry := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				retry.Stop()
				return
			case <-retry.C:
			}
			delay = min(delay*2, maxRetryDelay)
			continue
		}
		if err != nil {
			select {
			case out <- docstore.Event{Err: err}:
			case <-ctx.Done():
			}
			return
		}
		delay = pollInterval

		if first || !reflect.DeepEqual(last, docs) {
			select {
			case out <- docstore.Event{Docs: docs}:
			case <-ctx.Done():
				return
			}
			last, first = docs, false
		}

		select {
		case <-ctx.Done():
			return
		case <-local:
		case <-remote:
		case <-ticker.C:
		}
	}
}
