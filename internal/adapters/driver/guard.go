// Package driver provides the Driver Gateway backends.
package driver

import (
	"context"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// Guard rejects out-of-range writes before they reach the wrapped driver.
type Guard struct {
	inner ports.Driver
}

var _ ports.Driver = (*Guard)(nil)

// NewGuard wraps inner.
func NewGuard(inner ports.Driver) *Guard {
	return &Guard{inner: inner}
}

// Read delegates to the wrapped driver.
func (g *Guard) Read(ctx context.Context) (domain.Reading, error) {
	return g.inner.Read(ctx)
}

// Write returns domain.ErrOutOfRange for values outside [SafeMin, SafeMax]
// without calling the wrapped driver.
func (g *Guard) Write(ctx context.Context, f domain.Frequency) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return g.inner.Write(ctx, f)
}
