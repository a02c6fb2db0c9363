package subscription

import (
	"context"
	"sync"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/identity"
)

// DeriveFunc builds the query of an identity-scoped subscription.
type DeriveFunc func(id identity.Identity) docstore.Query

// Derived follows an identity watcher: each identity change cancels the
// current channel and opens the one derived for the new identity.
type Derived struct {
	m *Manager

	mu      sync.Mutex
	view    View
	id      *identity.Identity
	version uint64
	updates *updates

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func (m *Manager) SubscribeDerived(ctx context.Context, w *identity.Watcher, derive DeriveFunc) (*Derived, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrManagerClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	d := &Derived{
		m:       m,
		view:    View{State: StateLoading},
		updates: newUpdates(),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	m.derived[d] = struct{}{}
	m.mu.Unlock()

	changes, unwatch := w.Watch()
	go d.run(ctx, changes, unwatch, derive)
	return d, nil
}

func (d *Derived) run(ctx context.Context, changes <-chan *identity.Identity, unwatch func(), derive DeriveFunc) {
	defer close(d.done)
	defer unwatch()

	var inner *Subscription
	var innerUpdates <-chan View
	var current *identity.Identity
	defer func() {
		if inner != nil {
			inner.Cancel()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case id := <-changes:
			if inner != nil {
				inner.Cancel()
				inner, innerUpdates = nil, nil
			}
			current = id
			if id == nil {
				d.publish(View{State: StateSignedOut}, nil)
				continue
			}

			sub, err := d.m.Subscribe(ctx, derive(*id))
			if err != nil {
				d.publish(View{State: StateUnavailable, Err: err}, current)
				continue
			}
			d.publish(View{State: StateLoading}, current)
			inner, innerUpdates = sub, sub.Updates()

		case v, ok := <-innerUpdates:
			if !ok {
				innerUpdates = nil
				continue
			}
			d.publish(v, current)
		}
	}
}

// publish renumbers v so that versions keep increasing across identities.
func (d *Derived) publish(v View, id *identity.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version++
	v.Version = d.version
	d.view = v
	d.id = id
	d.updates.offer(v)
}

func (d *Derived) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.view
}

// Snapshot returns the latest view together with the identity it was
// derived for, nil when signed out.
func (d *Derived) Snapshot() (View, *identity.Identity) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.id == nil {
		return d.view, nil
	}
	id := *d.id
	return d.view, &id
}

func (d *Derived) Updates() <-chan View {
	return d.updates.ch
}

// Cancel stops following the identity and releases the current channel.
func (d *Derived) Cancel() {
	d.once.Do(func() {
		d.cancel()
		<-d.done

		d.mu.Lock()
		d.updates.close()
		d.mu.Unlock()

		d.m.mu.Lock()
		delete(d.m.derived, d)
		d.m.mu.Unlock()
	})
}
