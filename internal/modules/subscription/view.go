package subscription

import "github.com/Marco3041/linkedin-clone/internal/docstore"

type State int

const (
	StateLoading State = iota
	StateLive
	StateUnavailable
	StateSignedOut
)

func (s State) String() string {
	switch s {
	case StateLive:
		return "live"
	case StateUnavailable:
		return "unavailable"
	case StateSignedOut:
		return "signed_out"
	default:
		return "loading"
	}
}

// View is one immutable rendering of a subscription. Docs must not be
// modified by readers.
type View struct {
	Docs    []docstore.Document
	State   State
	Err     error
	Version uint64
}

// updates is a one-slot mailbox where a newer view replaces an unread one.
type updates struct {
	ch     chan View
	last   uint64
	closed bool
}

func newUpdates() *updates {
	return &updates{ch: make(chan View, 1)}
}

// offer must be called with the owner's lock held.
func (u *updates) offer(v View) {
	if u.closed || v.Version <= u.last {
		return
	}
	u.last = v.Version
	select {
	case <-u.ch:
	default:
	}
	u.ch <- v
}

func (u *updates) close() {
	if u.closed {
		return
	}
	u.closed = true
	close(u.ch)
}
