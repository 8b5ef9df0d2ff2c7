package stream

import (
	"context"
	"sync"
)

// Controller owns cancellation for exactly one in-flight stream. Triggering
// it stops the read loop at the next read boundary; the upstream call has no
// way to observe it other than the closed downstream connection.
type Controller struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context governing the stream's read loop.
func (c *Controller) Context() context.Context {
	return c.ctx
}

// Trigger cancels the stream. Safe to call multiple times.
func (c *Controller) Trigger() {
	c.cancel()
}

// Session tracks at most one live controller. Starting a new stream triggers
// and discards the previous controller, so switching chats, starting a new
// chat and tearing down all route through the same cancellation path.
type Session struct {
	mu      sync.Mutex
	current *Controller
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{}
}

// Start triggers any previous controller and returns a fresh one derived
// from parent.
func (s *Session) Start(parent context.Context) *Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Trigger()
	}

	ctx, cancel := context.WithCancel(parent)
	s.current = &Controller{ctx: ctx, cancel: cancel}
	return s.current
}

// Cancel triggers the live controller, if any.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		s.current.Trigger()
		s.current = nil
	}
}

// Active reports whether a controller is live and not yet canceled.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && s.current.ctx.Err() == nil
}
