package domain

import "time"

// Outcome is the result of a single watchdog attempt.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

// String returns a human-readable representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "Pending"
	case OutcomeSuccess:
		return "Success"
	case OutcomeFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Attempt is one boot watchdog try. Only Index crosses process boundaries,
// carried as a command-line argument.
type Attempt struct {
	Index   int
	Wait    time.Duration
	Outcome Outcome
}

// NewAttempt creates a pending attempt. Negative indices are clamped to 0.
func NewAttempt(index int, wait time.Duration) Attempt {
	if index < 0 {
		index = 0
	}
	return Attempt{Index: index, Wait: wait, Outcome: OutcomePending}
}

// WithOutcome returns a copy of a carrying the given outcome.
func (a Attempt) WithOutcome(o Outcome) Attempt {
	a.Outcome = o
	return a
}
