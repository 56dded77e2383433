package app

import "time"

// MaxAttempts is the highest attempt index the watchdog runs. Indices 0
// through MaxAttempts are all tried, so a driver that never comes up sees
// MaxAttempts+1 attempts before the chain gives up.
const MaxAttempts = 10

// Boot settling delays. Early attempts get a flat delay rather than a
// geometric curve because the driver is usually just slow after login.
const (
	delayColdStart = 5 * time.Second
	delaySettling  = 8 * time.Second
	delayPersist   = 10 * time.Second
)

// DelayFor returns how long attempt waits before probing the driver.
// Negative indices are treated as 0.
func DelayFor(attempt int) time.Duration {
	switch {
	case attempt <= 1:
		return delayColdStart
	case attempt == 2:
		return delaySettling
	default:
		return delayPersist
	}
}

// ShouldRespawn reports whether a failed attempt may launch a successor.
func ShouldRespawn(attempt int) bool {
	return attempt < MaxAttempts
}
