// Package session serializes the module's long-running operations. Exactly
// one scan, sweep, or upscale flow may run at a time; callers acquire the
// session before starting a flow and release it when the flow unwinds. The
// core components never lock on their own.
package session

import (
	"fmt"
	"sync"
)

// ErrBusy is returned when an operation is already in progress.
type ErrBusy struct {
	Operation string
}

func (e *ErrBusy) Error() string {
	return fmt.Sprintf("operation already in progress: %s", e.Operation)
}

// Session is the explicit operation-in-progress lock.
type Session struct {
	mu        sync.Mutex
	held      bool
	operation string
}

// New creates an idle session.
func New() *Session {
	return &Session{}
}

// Acquire claims the session for the named operation. It fails fast with
// ErrBusy when another operation holds it; it never blocks.
func (s *Session) Acquire(operation string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held {
		return &ErrBusy{Operation: s.operation}
	}
	s.held = true
	s.operation = operation
	return nil
}

// Release clears the session. Safe to call from a deferred cleanup even if
// Acquire failed.
func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.held = false
	s.operation = ""
}

// InProgress reports the currently held operation, if any.
func (s *Session) InProgress() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.operation, s.held
}
