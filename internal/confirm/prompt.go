package confirm

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// Answer is what a Responder got from the user.
type Answer int

const (
	// AnswerNone means the user gave no usable answer.
	AnswerNone Answer = iota
	AnswerKeep
	AnswerRevert
)

func (a Answer) String() string {
	switch a {
	case AnswerKeep:
		return "keep"
	case AnswerRevert:
		return "revert"
	default:
		return "none"
	}
}

// Responder asks the user whether the screen is still usable.
type Responder interface {
	// Ask blocks until the user answers or ctx is done.
	Ask(ctx context.Context, s *Session) (Answer, error)
	// Remaining is called after every tick that did not end the session.
	// It must not block.
	Remaining(s *Session)
}

// Ticker delivers the countdown ticks.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker returns a Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

// Option configures a Prompt.
type Option func(*Prompt)

// WithTicker replaces the 1 Hz ticker.
func WithTicker(fn func(time.Duration) Ticker) Option {
	return func(p *Prompt) { p.newTicker = fn }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Prompt) { p.now = now }
}

// Prompt runs a Session against a Responder with a 1 Hz countdown.
// It implements ports.ConfirmationPrompt.
type Prompt struct {
	responder Responder
	logger    ports.Logger
	newTicker func(time.Duration) Ticker
	now       func() time.Time
}

var _ ports.ConfirmationPrompt = (*Prompt)(nil)

// NewPrompt creates a Prompt.
func NewPrompt(responder Responder, logger ports.Logger, opts ...Option) *Prompt {
	p := &Prompt{
		responder: responder,
		logger:    logger,
		newTicker: NewTimeTicker,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type reply struct {
	answer Answer
	err    error
}

// Show blocks until the session ends. Anything other than an explicit keep
// before the deadline ends in ResultRejected or ResultTimedOut. A done ctx
// rejects and returns ctx.Err().
func (p *Prompt) Show(ctx context.Context, timeout time.Duration) (domain.ConfirmationResult, error) {
	s := NewSession(timeout, p.now())

	ticker := p.newTicker(time.Second)
	var stopOnce sync.Once
	stop := func() { stopOnce.Do(ticker.Stop) }
	s.OnTerminate(func(domain.ConfirmationResult) { stop() })
	defer stop()

	askCtx, cancelAsk := context.WithCancel(ctx)
	defer cancelAsk()
	replies := make(chan reply, 1)
	go func() {
		a, err := p.responder.Ask(askCtx, s)
		replies <- reply{a, err}
	}()

	p.logger.Info("waiting for confirmation",
		ports.Tag("confirm"),
		ports.String("session", s.ID()),
		ports.Int("seconds", s.TimeLeft()),
	)

	var (
		ctxErr   error
		answered bool
	)
	for !s.Result().Terminal() {
		select {
		case <-ticker.C():
			if !s.Tick() {
				p.responder.Remaining(s)
			}
		case r := <-replies:
			answered = true
			switch {
			case r.err != nil:
				p.logger.Warn("responder failed", ports.Tag("confirm"), ports.Err(r.err))
				s.Reject()
			case r.answer == AnswerKeep:
				s.Confirm()
			default:
				s.Reject()
			}
		case <-ctx.Done():
			ctxErr = ctx.Err()
			s.Reject()
		}
	}

	cancelAsk()
	if !answered {
		<-replies
	}

	result := s.Result()
	p.logger.Info("confirmation finished",
		ports.Tag("confirm"),
		ports.String("session", s.ID()),
		ports.String("result", result.String()),
	)
	return result, ctxErr
}
