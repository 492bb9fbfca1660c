package domain

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/docvault/internal/errors"
)

// State is a preview session lifecycle state.
type State string

const (
	StateIdle       State = "idle"
	StateDecrypting State = "decrypting"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateCancelled  State = "cancelled"
)

// PreviewSession is the ephemeral state of a single preview rendering.
//
// The state machine is Idle -> Decrypting -> Completed | Failed, with
// Cancelled reachable from Idle and Decrypting. The chunk cursor only moves
// forward; a fresh decrypt needs a fresh session (there is no seek). Cancel
// may be called from a different goroutine than the decrypt loop (a view
// close), so state access is guarded.
type PreviewSession struct {
	id        uuid.UUID
	createdAt time.Time
	expiresAt time.Time
	watermark string

	mu     sync.Mutex
	state  State
	cursor int
}

// NewPreviewSession creates an idle session expiring after ttl.
//
// The watermark text carries a session identifier fragment and the creation
// timestamp so any unauthorized capture of the rendered area is attributable.
func NewPreviewSession(now time.Time, ttl time.Duration) *PreviewSession {
	id := uuid.Must(uuid.NewV7())
	return &PreviewSession{
		id:        id,
		createdAt: now,
		expiresAt: now.Add(ttl),
		watermark: fmt.Sprintf("preview %s %s", id.String()[:8], now.UTC().Format(time.RFC3339)),
		state:     StateIdle,
	}
}

// ID returns the session identifier.
func (s *PreviewSession) ID() uuid.UUID {
	return s.id
}

// CreatedAt returns the session creation time.
func (s *PreviewSession) CreatedAt() time.Time {
	return s.createdAt
}

// ExpiresAt returns the session expiry time.
func (s *PreviewSession) ExpiresAt() time.Time {
	return s.expiresAt
}

// Watermark returns the attribution text painted over the rendered area.
func (s *PreviewSession) Watermark() string {
	return s.watermark
}

// State returns the current lifecycle state.
func (s *PreviewSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the number of chunks consumed so far.
func (s *PreviewSession) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Expired reports whether the session's own expiry has passed.
func (s *PreviewSession) Expired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

// Start moves the session from Idle to Decrypting.
func (s *PreviewSession) Start() error {
	return s.transition(StateIdle, StateDecrypting)
}

// Advance records that chunk index has been consumed. Indexes must arrive in
// strictly increasing order starting at zero.
func (s *PreviewSession) Advance(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateDecrypting {
		return errors.Wrapf(ErrInvalidTransition, "advance in state %s", s.state)
	}
	if index != s.cursor {
		return errors.Wrapf(ErrInvalidTransition, "chunk %d out of order, cursor at %d", index, s.cursor)
	}
	s.cursor = index + 1
	return nil
}

// Complete moves the session from Decrypting to Completed.
func (s *PreviewSession) Complete() error {
	return s.transition(StateDecrypting, StateCompleted)
}

// Fail marks the session failed. Valid from Idle and Decrypting.
func (s *PreviewSession) Fail() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle || s.state == StateDecrypting {
		s.state = StateFailed
	}
}

// Cancel marks the session cancelled. A no-op once the session reached a
// terminal state. Returns true when the call performed the cancellation.
func (s *PreviewSession) Cancel() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateIdle || s.state == StateDecrypting {
		s.state = StateCancelled
		return true
	}
	return false
}

// Cancelled reports whether the session was cancelled.
func (s *PreviewSession) Cancelled() bool {
	return s.State() == StateCancelled
}

func (s *PreviewSession) transition(from, to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != from {
		return errors.Wrapf(ErrInvalidTransition, "%s -> %s from state %s", from, to, s.state)
	}
	s.state = to
	return nil
}
