package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent error conditions in the pwmguard domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrInvalidFrequency is returned when a requested frequency is not an integer.
	ErrInvalidFrequency = errors.New("pwmguard: invalid frequency")

	// ErrOutOfRange is returned when a frequency lies outside [SafeMin, SafeMax].
	// It is always raised before any hardware write.
	ErrOutOfRange = errors.New("pwmguard: frequency out of range")

	// ErrDriverUnavailable marks transient driver failures, typically a
	// gateway that is not initialized yet after boot.
	ErrDriverUnavailable = errors.New("pwmguard: driver unavailable")

	// ErrRespawn is returned when the watchdog cannot launch its successor.
	ErrRespawn = errors.New("pwmguard: respawn failed")

	// ErrRollback is returned when restoring the previous frequency fails.
	ErrRollback = errors.New("pwmguard: rollback failed")

	// ErrApplyInProgress is returned when Apply is called while another apply
	// is still awaiting confirmation.
	ErrApplyInProgress = errors.New("pwmguard: apply already in progress")

	// ErrSessionActive is returned when another interactive process holds the
	// session lock.
	ErrSessionActive = errors.New("pwmguard: another interactive session is active")

	// ErrInvalidTransition is returned when a state machine is asked to move
	// along an edge it does not have.
	ErrInvalidTransition = errors.New("pwmguard: invalid state transition")
)

// DriverError is a failure reported by the driver gateway. Code carries the
// vendor or OS error code.
type DriverError struct {
	Op   string
	Code uint32
	Err  error
}

func (e *DriverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: driver error 0x%X: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: driver error 0x%X", e.Op, e.Code)
}

// Unwrap returns the underlying cause.
func (e *DriverError) Unwrap() error { return e.Err }

// Is reports every driver error as ErrDriverUnavailable so callers can route
// them to the retry path with errors.Is.
func (e *DriverError) Is(target error) bool {
	return target == ErrDriverUnavailable
}
