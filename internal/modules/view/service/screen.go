package view

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Marco3041/linkedin-clone/internal/identity"
	feedRepo "github.com/Marco3041/linkedin-clone/internal/modules/feed/repository"
	feed "github.com/Marco3041/linkedin-clone/internal/modules/feed/service"
	"github.com/Marco3041/linkedin-clone/internal/modules/subscription"
	"github.com/Marco3041/linkedin-clone/pkg/apperror"
)

type screen struct {
	name   string
	cancel context.CancelFunc
	done   chan struct{}
	ops    chan ClientMessage
}

func (sc *screen) stop() {
	sc.cancel()
	<-sc.done
}

// definition describes how a screen is fed and rendered. Every query is
// derived from the session identity; render runs only once all of them are
// live for the same identity.
type definition struct {
	prepare func(ctx context.Context) error
	queries []subscription.DeriveFunc
	render  func(me identity.Identity, views []subscription.View) any
	board   *feed.Board
}

func (s *Session) run(ctx context.Context, sc *screen, def *definition) {
	defer close(sc.done)

	if def.prepare != nil {
		if err := def.prepare(ctx); err != nil {
			log.Printf("⚠️ preparing screen %s of session %s: %v", sc.name, s.ID, err)
		}
	}

	dirty := make(chan struct{}, 1)
	mark := func() {
		select {
		case dirty <- struct{}{}:
		default:
		}
	}

	var (
		wg  sync.WaitGroup
		rev atomic.Uint64
	)
	sources := make([]*subscription.Derived, 0, len(def.queries))
	threads := make(map[string]*subscription.Subscription)
	defer func() {
		for _, d := range sources {
			d.Cancel()
		}
		for _, sub := range threads {
			sub.Cancel()
		}
		wg.Wait()
	}()

	follow := func(updates <-chan subscription.View, onView func(subscription.View)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for v := range updates {
				if onView != nil {
					onView(v)
					rev.Add(1)
				}
				mark()
			}
		}()
	}

	for _, derive := range def.queries {
		d, err := s.manager.SubscribeDerived(ctx, s.watcher, derive)
		if err != nil {
			s.emit(ctx, Frame{Screen: sc.name, State: subscription.StateUnavailable.String(), Error: err.Error()})
			return
		}
		sources = append(sources, d)
		follow(d.Updates(), nil)
	}

	changes, unwatch := s.watcher.Watch()
	defer unwatch()

	var (
		version  uint64
		lastSeen string
	)
	for {
		select {
		case <-ctx.Done():
			return

		case id := <-changes:
			if id != nil || len(threads) == 0 {
				continue
			}
			for postID, sub := range threads {
				sub.Cancel()
				delete(threads, postID)
				def.board.Collapse(postID)
			}
			rev.Add(1)
			mark()

		case op := <-sc.ops:
			if err := s.threadOp(ctx, def.board, threads, op, follow); err != nil {
				s.emit(ctx, Frame{Screen: sc.name, State: StateError, Error: err.Error()})
				continue
			}
			rev.Add(1)
			mark()

		case <-dirty:
			frame, seen := compose(sc.name, def, sources)
			seen = fmt.Sprintf("%s|%d", seen, rev.Load())
			if seen == lastSeen {
				continue
			}
			lastSeen = seen
			version++
			frame.Version = version
			if !s.emit(ctx, frame) {
				return
			}
		}
	}
}

// threadOp opens or closes the comment thread of a post on the feed board.
func (s *Session) threadOp(ctx context.Context, board *feed.Board, threads map[string]*subscription.Subscription, op ClientMessage, follow func(<-chan subscription.View, func(subscription.View))) error {
	if board == nil {
		return fmt.Errorf("%w: screen %q has no comment threads", apperror.ErrInvalidInput, op.Screen)
	}
	postID := op.Params["postId"]
	if postID == "" || strings.Contains(postID, "/") {
		return fmt.Errorf("%w: postId is required", apperror.ErrInvalidInput)
	}

	switch op.Op {
	case OpExpand:
		if sub, open := threads[postID]; open {
			if sub.View().State != subscription.StateUnavailable {
				return nil
			}
			// A failed thread is reopened on a fresh channel.
			sub.Cancel()
			delete(threads, postID)
		}
		sub, err := s.manager.Subscribe(ctx, feedRepo.CommentsQuery(postID))
		if err != nil {
			return err
		}
		board.Expand(postID)
		threads[postID] = sub
		follow(sub.Updates(), func(v subscription.View) {
			switch v.State {
			case subscription.StateLive:
				board.SetComments(postID, v.Docs)
			case subscription.StateUnavailable:
				log.Printf("⚠️ comments of %s unavailable: %v", postID, v.Err)
				board.FailComments(postID, v.Err)
			}
		})

	case OpCollapse:
		if sub, open := threads[postID]; open {
			sub.Cancel()
			delete(threads, postID)
		}
		board.Collapse(postID)
	}
	return nil
}

// compose renders the screen from the latest view of every source. The
// second result identifies the inputs so that unchanged renders can be
// skipped.
func compose(name string, def *definition, sources []*subscription.Derived) (Frame, string) {
	views := make([]subscription.View, len(sources))
	var (
		owner *identity.Identity
		state = subscription.StateLive
		err   error
		seen  strings.Builder
	)

	for i, d := range sources {
		v, id := d.Snapshot()
		views[i] = v
		fmt.Fprintf(&seen, "%d:%d,", i, v.Version)

		switch v.State {
		case subscription.StateUnavailable:
			if state != subscription.StateUnavailable {
				state, err = subscription.StateUnavailable, v.Err
			}
		case subscription.StateSignedOut:
			if state != subscription.StateUnavailable {
				state = subscription.StateSignedOut
			}
		case subscription.StateLoading:
			if state == subscription.StateLive {
				state = subscription.StateLoading
			}
		}

		if id != nil {
			if owner == nil {
				owner = id
			} else if owner.UID != id.UID && state == subscription.StateLive {
				state = subscription.StateLoading
			}
		}
	}

	frame := Frame{Screen: name, State: state.String()}
	switch state {
	case subscription.StateUnavailable:
		if err != nil {
			frame.Error = err.Error()
		}
	case subscription.StateLive:
		if owner != nil {
			frame.Data = def.render(*owner, views)
		}
	}
	return frame, seen.String()
}
