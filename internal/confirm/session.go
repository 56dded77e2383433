// Package confirm implements the countdown that decides whether a newly
// applied frequency is kept.
package confirm

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// Session is one confirmation window. It ends exactly once, on the first of
// Confirm, Reject or the tick that exhausts the countdown. Later calls are
// no-ops.
type Session struct {
	mu          sync.Mutex
	id          string
	deadline    time.Time
	left        int
	result      domain.ConfirmationResult
	done        chan struct{}
	onTerminate []func(domain.ConfirmationResult)
}

// NewSession opens a session lasting timeout, rounded up to whole seconds
// and at least one second.
func NewSession(timeout time.Duration, now time.Time) *Session {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return &Session{
		id:       uuid.NewString(),
		deadline: now.Add(time.Duration(secs) * time.Second),
		left:     secs,
		result:   domain.ResultPending,
		done:     make(chan struct{}),
	}
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Deadline is when the session times out.
func (s *Session) Deadline() time.Time { return s.deadline }

// TimeLeft returns the whole seconds remaining.
func (s *Session) TimeLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.left
}

// Result returns ResultPending until the session ends.
func (s *Session) Result() domain.ConfirmationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} { return s.done }

// OnTerminate registers fn to run once with the terminal result. If the
// session has already ended, fn runs immediately.
func (s *Session) OnTerminate(fn func(domain.ConfirmationResult)) {
	s.mu.Lock()
	if !s.result.Terminal() {
		s.onTerminate = append(s.onTerminate, fn)
		s.mu.Unlock()
		return
	}
	r := s.result
	s.mu.Unlock()
	fn(r)
}

// Tick advances the countdown by one second. It reports whether this tick
// ended the session.
func (s *Session) Tick() bool {
	s.mu.Lock()
	if s.result.Terminal() {
		s.mu.Unlock()
		return false
	}
	s.left--
	if s.left > 0 {
		s.mu.Unlock()
		return false
	}
	return s.finishLocked(domain.ResultTimedOut)
}

// Confirm keeps the new value. It reports whether it ended the session.
func (s *Session) Confirm() bool {
	s.mu.Lock()
	if s.result.Terminal() {
		s.mu.Unlock()
		return false
	}
	return s.finishLocked(domain.ResultConfirmed)
}

// Reject reverts the new value. It reports whether it ended the session.
func (s *Session) Reject() bool {
	s.mu.Lock()
	if s.result.Terminal() {
		s.mu.Unlock()
		return false
	}
	return s.finishLocked(domain.ResultRejected)
}

// finishLocked is called with s.mu held and releases it.
func (s *Session) finishLocked(r domain.ConfirmationResult) bool {
	s.result = r
	if r == domain.ResultTimedOut {
		s.left = 0
	}
	hooks := s.onTerminate
	s.onTerminate = nil
	close(s.done)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(r)
	}
	return true
}
