package domain

// ConfirmationResult is the terminal answer of a confirmation session.
type ConfirmationResult int

const (
	ResultPending ConfirmationResult = iota
	ResultConfirmed
	ResultRejected
	ResultTimedOut
)

// String returns a human-readable representation of the result.
func (r ConfirmationResult) String() string {
	switch r {
	case ResultPending:
		return "Pending"
	case ResultConfirmed:
		return "Confirmed"
	case ResultRejected:
		return "Rejected"
	case ResultTimedOut:
		return "TimedOut"
	default:
		return "Unknown"
	}
}

// Terminal reports whether r ends a session.
func (r ConfirmationResult) Terminal() bool {
	return r == ResultConfirmed || r == ResultRejected || r == ResultTimedOut
}
