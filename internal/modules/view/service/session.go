// Package view runs live view sessions. A session is one connected client:
// it mounts screens, each screen renders read models from its own
// subscriptions, and every subscription belongs to the session's Manager so
// that nothing outlives the connection.
package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/Marco3041/linkedin-clone/internal/docstore"
	"github.com/Marco3041/linkedin-clone/internal/identity"
	seeding "github.com/Marco3041/linkedin-clone/internal/modules/seeding/service"
	"github.com/Marco3041/linkedin-clone/internal/modules/subscription"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

// Client operations.
const (
	OpIdentify = "identify"
	OpSignOut  = "signout"
	OpMount    = "mount"
	OpUnmount  = "unmount"
	OpExpand   = "expand"
	OpCollapse = "collapse"
)

// StateError marks a frame answering a rejected client operation.
const StateError = "error"

var ErrSessionClosed = errors.New("view session closed")

// ClientMessage is one operation sent by the client.
type ClientMessage struct {
	Op     string            `json:"op"`
	Screen string            `json:"screen,omitempty"`
	Token  string            `json:"token,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// Frame is one rendering of a screen pushed to the client. Data is only set
// while the screen is live.
type Frame struct {
	Screen  string `json:"screen"`
	State   string `json:"state"`
	Version uint64 `json:"version"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Authenticator resolves tokens sent with identify.
type Authenticator interface {
	Verify(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, uid string) (*identity.Identity, error)
}

type Deps struct {
	Store   docstore.Store
	Seeding seeding.SeedingService
	Auth    Authenticator
}

type Session struct {
	ID string

	deps    Deps
	manager *subscription.Manager
	watcher *identity.Watcher
	frames  chan Frame

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	screens map[string]*screen
	closed  bool
}

func NewSession(parent context.Context, deps Deps, initial *identity.Identity) *Session {
	ctx, cancel := context.WithCancel(parent)
	return &Session{
		ID:      ulid.Make().String(),
		deps:    deps,
		manager: subscription.NewManager(deps.Store),
		watcher: identity.NewWatcher(initial),
		frames:  make(chan Frame, 16),
		ctx:     ctx,
		cancel:  cancel,
		screens: make(map[string]*screen),
	}
}

// Frames delivers rendered screens in the order they were produced.
func (s *Session) Frames() <-chan Frame {
	return s.frames
}

// Done is closed once the session has been closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

func (s *Session) Identity() *identity.Identity {
	return s.watcher.Current()
}

// SetIdentity switches the session to id, or signs it out when id is nil.
// Mounted screens re-derive their subscriptions.
func (s *Session) SetIdentity(id *identity.Identity) {
	s.watcher.Set(id)
}

// Open reports how many remote channels the session holds.
func (s *Session) Open() int {
	return s.manager.Open()
}

// Handle applies one client operation. Errors are meant to be reported back
// to the client; the session stays usable.
func (s *Session) Handle(ctx context.Context, msg ClientMessage) error {
	switch msg.Op {
	case OpIdentify:
		uid, err := s.deps.Auth.Verify(ctx, msg.Token)
		if err != nil {
			return err
		}
		me, err := s.deps.Auth.Me(ctx, uid)
		if err != nil {
			return err
		}
		s.SetIdentity(me)
		return nil

	case OpSignOut:
		s.SetIdentity(nil)
		return nil

	case OpMount:
		return s.mount(msg.Screen, msg.Params)

	case OpUnmount:
		s.unmount(msg.Screen)
		return nil

	case OpExpand, OpCollapse:
		return s.send(msg)

	default:
		return fmt.Errorf("%w: unknown op %q", apperror.ErrInvalidInput, msg.Op)
	}
}

func (s *Session) mount(name string, params map[string]string) error {
	def, err := s.define(name, params)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	old := s.screens[name]
	ctx, cancel := context.WithCancel(s.ctx)
	sc := &screen{
		name:   name,
		cancel: cancel,
		done:   make(chan struct{}),
		ops:    make(chan ClientMessage, 4),
	}
	s.screens[name] = sc
	s.mu.Unlock()

	if old != nil {
		old.stop()
	}
	go s.run(ctx, sc, def)
	return nil
}

func (s *Session) unmount(name string) {
	s.mu.Lock()
	sc := s.screens[name]
	delete(s.screens, name)
	s.mu.Unlock()

	if sc != nil {
		sc.stop()
	}
}

// send hands a screen-level operation to the mounted screen.
func (s *Session) send(msg ClientMessage) error {
	s.mu.Lock()
	sc := s.screens[msg.Screen]
	s.mu.Unlock()
	if sc == nil {
		return fmt.Errorf("%w: screen %q is not mounted", apperror.ErrInvalidInput, msg.Screen)
	}

	select {
	case sc.ops <- msg:
		return nil
	case <-sc.done:
		return fmt.Errorf("%w: screen %q has ended", apperror.ErrInvalidInput, msg.Screen)
	}
}

// emit queues f for the client, giving up when ctx ends.
func (s *Session) emit(ctx context.Context, f Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

// Reject reports a failed operation to the client.
func (s *Session) Reject(msg ClientMessage, err error) {
	s.emit(s.ctx, Frame{Screen: msg.Screen, State: StateError, Error: err.Error()})
}

// Close unmounts every screen and releases all subscriptions. It is safe to
// call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	screens := make([]*screen, 0, len(s.screens))
	for _, sc := range s.screens {
		screens = append(screens, sc)
	}
	s.screens = map[string]*screen{}
	s.mu.Unlock()

	s.cancel()
	for _, sc := range screens {
		sc.stop()
	}
	s.manager.Close()
	log.Printf("🔌 view session %s closed", s.ID)
}
