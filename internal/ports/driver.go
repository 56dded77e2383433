package ports

import (
	"context"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// Driver is the gateway to the display driver's PWM control.
// Failures are reported as *domain.DriverError.
type Driver interface {
	// Read returns the current frequency and the base clock.
	Read(ctx context.Context) (domain.Reading, error)

	// Write sets a new frequency. Implementations reached through the range
	// guard never see values outside [SafeMin, SafeMax].
	Write(ctx context.Context, f domain.Frequency) error
}

// DriverFactory opens a fresh driver handle. The watchdog opens one per
// process so no handle state survives a failed attempt.
type DriverFactory func(ctx context.Context) (Driver, error)
