package ports

import (
	"context"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// ConfigStore persists the boot target.
type ConfigStore interface {
	// Load returns the stored configuration. Missing or corrupt storage
	// yields domain.DefaultConfiguration(); Load never fails.
	Load(ctx context.Context) domain.Configuration

	// Save records f as the last confirmed frequency.
	Save(ctx context.Context, f domain.Frequency) error
}
