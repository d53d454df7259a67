// Package client keeps an optimistic copy of one owner's tree. Actions are
// projected locally the moment they are dispatched and committed to the
// server as one batch; the server's answer, or a refetch, settles the result.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/CrowderSoup/taskboard/board"
)

// Committer is the server side of a session.
type Committer interface {
	// Commit applies actions atomically, in order.
	Commit(ctx context.Context, actions []board.Action) error
	// Fetch returns the authoritative tree.
	Fetch(ctx context.Context) (board.Tree, error)
}

// Session holds the optimistic tree for one actor.
//
// The visible tree is always base with the in-flight batch projected on top.
// base is the last tree the server confirmed, either by fetch or by
// accepting a batch. gen counts base replacements: a fetch is installed only
// if gen did not move while it was outstanding, and an accepted batch is
// projected onto base only if no fetch replaced base while it was in flight.
// Otherwise the session fetches again rather than replaying the batch.
type Session struct {
	committer Committer
	logger    *slog.Logger
	onChange  func(board.Tree)

	// dispatchMu keeps one batch in flight so commits reach the server in
	// projection order.
	dispatchMu sync.Mutex

	mu       sync.Mutex
	gen      uint64
	base     board.Tree
	inflight []board.Action
	tree     board.Tree
}

// refreshAttempts bounds how often a fetch is retried when base changes
// underneath it.
const refreshAttempts = 3

var errBaseMoving = errors.New("base replaced during every fetch")

type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// OnChange registers fn to receive every new visible tree. fn runs on the
// goroutine that caused the change.
func OnChange(fn func(board.Tree)) Option {
	return func(s *Session) { s.onChange = fn }
}

// NewSession starts a session from initial, usually the result of a Fetch.
func NewSession(c Committer, initial board.Tree, opts ...Option) *Session {
	s := &Session{
		committer: c,
		logger:    slog.Default(),
		base:      initial.Clone(),
		tree:      initial.Clone(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open fetches the actor's tree and starts a session on it.
func Open(ctx context.Context, c Committer, opts ...Option) (*Session, error) {
	tree, err := c.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	return NewSession(c, tree, opts...), nil
}

// Tree returns a copy of the visible tree.
func (s *Session) Tree() board.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Clone()
}

// Dispatch projects actions onto the visible tree, then commits them as one
// batch. When the commit fails the projection is dropped and the session
// refetches; if that fetch fails too the tree stays as it was before
// Dispatch. The commit error is returned either way.
func (s *Session) Dispatch(ctx context.Context, actions ...board.Action) error {
	if len(actions) == 0 {
		return nil
	}
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	var start uint64
	s.update(func() bool {
		start = s.gen
		s.inflight = actions
		s.tree = board.ProjectAll(s.base, actions)
		return true
	})

	err := s.committer.Commit(ctx, actions)
	if err == nil {
		settled := false
		s.update(func() bool {
			if s.gen != start {
				return false
			}
			s.gen++
			s.base = board.ProjectAll(s.base, actions)
			s.inflight = nil
			s.tree = s.base.Clone()
			settled = true
			return true
		})
		if settled {
			return nil
		}
		// A fetch replaced base mid-flight and may or may not hold this
		// batch. Only a fetch issued after the commit is authoritative.
		if ferr := s.refresh(ctx, true); ferr != nil {
			s.logger.Warn("refetch after commit failed, projecting locally", "error", ferr)
			s.update(func() bool {
				s.gen++
				s.base = board.ProjectAll(s.base, actions)
				s.inflight = nil
				s.tree = s.base.Clone()
				return true
			})
		}
		return nil
	}

	s.logger.Warn("commit rejected, rolling back", "actions", len(actions), "error", err)
	s.update(func() bool {
		s.inflight = nil
		s.tree = s.base.Clone()
		return true
	})
	if ferr := s.Refresh(ctx); ferr != nil {
		s.logger.Warn("refetch after rejected commit failed", "error", ferr)
	}
	return err
}

// Refresh replaces base with the server's tree and reprojects anything in
// flight on top of it. A fetch that base moved past while it was outstanding
// is discarded and retried.
func (s *Session) Refresh(ctx context.Context) error {
	return s.refresh(ctx, false)
}

// refresh installs a fetched tree. settle drops the in-flight batch, for use
// once the server has accepted it.
func (s *Session) refresh(ctx context.Context, settle bool) error {
	for attempt := 0; attempt < refreshAttempts; attempt++ {
		s.mu.Lock()
		start := s.gen
		s.mu.Unlock()

		fetched, err := s.committer.Fetch(ctx)
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}

		installed := false
		s.update(func() bool {
			if s.gen != start {
				return false
			}
			s.gen++
			s.base = fetched
			if settle {
				s.inflight = nil
			}
			s.tree = board.ProjectAll(fetched, s.inflight)
			installed = true
			return true
		})
		if installed {
			return nil
		}
		s.logger.Debug("discarding stale fetch")
	}
	return fmt.Errorf("refresh: %w", errBaseMoving)
}

// update runs fn under the lock and, when fn reports a change, hands the new
// visible tree to onChange outside it.
func (s *Session) update(fn func() bool) {
	s.mu.Lock()
	changed := fn()
	var snapshot board.Tree
	if changed && s.onChange != nil {
		snapshot = s.tree.Clone()
	}
	s.mu.Unlock()

	if changed && s.onChange != nil {
		s.onChange(snapshot)
	}
}

type pushMessage struct {
	Type  string `json:"type"`
	Owner string `json:"owner"`
}

// Watch subscribes to invalidation pushes at url and refreshes on each one.
// It returns when ctx is done or the connection fails.
func (s *Session) Watch(ctx context.Context, url string, header http.Header) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return fmt.Errorf("watch: dial: %w", err)
	}
	defer conn.Close()

	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	for {
		var msg pushMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				continue
			}
			return fmt.Errorf("watch: read: %w", err)
		}
		if msg.Type != "invalidate" {
			continue
		}
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("refresh after invalidation failed", "error", err)
		}
	}
}
