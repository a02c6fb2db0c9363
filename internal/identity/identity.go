// Package identity holds the signed-in identity of a session and broadcasts
// changes to whoever scopes data by it.
package identity

import "sync"

type Identity struct {
	UID      string `json:"uid"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl"`
}

// Watcher is the identity-change event source of one session. A nil
// identity means signed out.
type Watcher struct {
	mu        sync.Mutex
	current   *Identity
	listeners map[chan *Identity]struct{}
}

func NewWatcher(initial *Identity) *Watcher {
	return &Watcher{
		current:   clone(initial),
		listeners: make(map[chan *Identity]struct{}),
	}
}

func (w *Watcher) Current() *Identity {
	w.mu.Lock()
	defer w.mu.Unlock()
	return clone(w.current)
}

// Set replaces the identity and notifies listeners when it changed.
func (w *Watcher) Set(id *Identity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if equal(w.current, id) {
		return
	}
	w.current = clone(id)
	for ch := range w.listeners {
		deliver(ch, clone(id))
	}
}

// Watch returns a channel that first yields the current identity and then
// every change. Slow readers only see the latest value.
func (w *Watcher) Watch() (<-chan *Identity, func()) {
	ch := make(chan *Identity, 1)

	w.mu.Lock()
	w.listeners[ch] = struct{}{}
	ch <- clone(w.current)
	w.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			w.mu.Lock()
			delete(w.listeners, ch)
			w.mu.Unlock()
		})
	}
}

// deliver replaces any pending value; callers hold w.mu.
func deliver(ch chan *Identity, id *Identity) {
	select {
	case <-ch:
	default:
	}
	ch <- id
}

func clone(id *Identity) *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func equal(a, b *Identity) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
