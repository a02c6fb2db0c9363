// Package subscription turns store queries into live, locally ordered
// sequences. A Manager owns the channels of one view: identical queries share
// one remote channel, and closing the Manager releases all of them.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

var ErrManagerClosed = errors.New("subscription manager closed")

type Manager struct {
	store docstore.Store

	mu       sync.Mutex
	channels map[string]*channel
	subs     map[*Subscription]struct{}
	derived  map[*Derived]struct{}
	closed   bool
}

func NewManager(store docstore.Store) *Manager {
	return &Manager{
		store:    store,
		channels: make(map[string]*channel),
		subs:     make(map[*Subscription]struct{}),
		derived:  make(map[*Derived]struct{}),
	}
}

// Scope runs fn with a fresh Manager and closes it on every exit path.
func Scope(store docstore.Store, fn func(*Manager) error) error {
	m := NewManager(store)
	defer m.Close()
	return fn(m)
}

// channel is one remote subscription shared by every handle on the same
// query. Its run goroutine is the only writer of view.
type channel struct {
	key    string
	query  docstore.Query
	stream docstore.Stream
	done   chan struct{}

	mu   sync.RWMutex
	view View
	subs map[*Subscription]struct{}
	refs int
}

type Subscription struct {
	m   *Manager
	ch  *channel
	key string

	mu      sync.Mutex
	updates *updates
	once    sync.Once
	stop    func() bool
}

// Subscribe opens (or joins) the live channel for q. The subscription ends
// when Cancel is called, when ctx is done, or when the Manager closes.
func (m *Manager) Subscribe(ctx context.Context, q docstore.Query) (*Subscription, error) {
	if err := docstore.ValidateCollection(q.Collection); err != nil {
		return nil, fmt.Errorf("%w: %v", apperror.ErrInvalidInput, err)
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}

	key := q.Key()
	ch, shared := m.channels[key]
	if !shared {
		ch = m.open(q)
		if ch.stream != nil {
			m.channels[key] = ch
		}
	}

	sub := &Subscription{m: m, ch: ch, key: key, updates: newUpdates()}
	m.subs[sub] = struct{}{}

	ch.mu.Lock()
	ch.refs++
	ch.subs[sub] = struct{}{}
	current := ch.view
	ch.mu.Unlock()
	m.mu.Unlock()

	if current.Version > 0 {
		sub.offer(current)
	}
	stop := context.AfterFunc(ctx, sub.Cancel)
	sub.mu.Lock()
	sub.stop = stop
	sub.mu.Unlock()
	return sub, nil
}

// open starts the remote channel; callers hold m.mu. A store that refuses
// the subscription yields a channel that is already unavailable.
func (m *Manager) open(q docstore.Query) *channel {
	ch := &channel{
		key:   q.Key(),
		query: q,
		done:  make(chan struct{}),
		subs:  make(map[*Subscription]struct{}),
		view:  View{State: StateLoading},
	}

	stream, err := m.store.Subscribe(context.Background(), q)
	if err != nil {
		ch.view = View{State: StateUnavailable, Err: err, Version: 1}
		close(ch.done)
		return ch
	}
	ch.stream = stream
	go m.run(ch)
	return ch
}

func (m *Manager) run(ch *channel) {
	defer close(ch.done)

	var version uint64
	for ev := range ch.stream.Events() {
		version++
		if ev.Err != nil {
			m.detach(ch)
			ch.publish(View{State: StateUnavailable, Err: ev.Err, Version: version})
			ch.stream.Stop()
			return
		}

		docs := append([]docstore.Document(nil), ev.Docs...)
		docstore.SortDocuments(docs, ch.query.OrderBy, ch.query.Direction)
		ch.publish(View{Docs: docs, State: StateLive, Version: version})
	}
}

// detach forgets a failed channel so that the next Subscribe of the same
// query opens a fresh one.
func (m *Manager) detach(ch *channel) {
	m.mu.Lock()
	if m.channels[ch.key] == ch {
		delete(m.channels, ch.key)
	}
	m.mu.Unlock()
}

func (ch *channel) publish(v View) {
	ch.mu.Lock()
	ch.view = v
	subs := make([]*Subscription, 0, len(ch.subs))
	for s := range ch.subs {
		subs = append(subs, s)
	}
	ch.mu.Unlock()

	for _, s := range subs {
		s.offer(v)
	}
}

func (s *Subscription) offer(v View) {
	s.mu.Lock()
	s.updates.offer(v)
	s.mu.Unlock()
}

// View returns the latest view of the channel.
func (s *Subscription) View() View {
	s.ch.mu.RLock()
	defer s.ch.mu.RUnlock()
	return s.ch.view
}

// Updates delivers views as they change. It is closed after Cancel.
func (s *Subscription) Updates() <-chan View {
	return s.updates.ch
}

func (s *Subscription) Query() docstore.Query {
	return s.ch.query
}

// Cancel releases the handle. The remote channel is stopped once its last
// handle is gone. Calling Cancel again is a no-op.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.mu.Lock()
		stop := s.stop
		s.mu.Unlock()

		if stop != nil {
			stop()
		}
		s.m.release(s)

		// Updates closes only once the channel is released, so a reader
		// draining it observes the stream already stopped.
		s.mu.Lock()
		s.updates.close()
		s.mu.Unlock()
	})
}

func (m *Manager) release(s *Subscription) {
	ch := s.ch

	m.mu.Lock()
	delete(m.subs, s)
	ch.mu.Lock()
	delete(ch.subs, s)
	ch.refs--
	last := ch.refs == 0
	ch.mu.Unlock()
	if last && m.channels[ch.key] == ch {
		delete(m.channels, ch.key)
	}
	m.mu.Unlock()

	if last && ch.stream != nil {
		ch.stream.Stop()
		<-ch.done
	}
}

// Open returns the number of remote channels the Manager holds.
func (m *Manager) Open() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.channels)
}

// Close cancels every subscription of the Manager. Later Subscribe calls
// fail with ErrManagerClosed.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	subs := make([]*Subscription, 0, len(m.subs))
	for s := range m.subs {
		subs = append(subs, s)
	}
	derived := make([]*Derived, 0, len(m.derived))
	for d := range m.derived {
		derived = append(derived, d)
	}
	m.mu.Unlock()

	for _, d := range derived {
		d.Cancel()
	}
	for _, s := range subs {
		s.Cancel()
	}
}
