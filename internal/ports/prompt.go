package ports

import (
	"context"
	"time"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// ConfirmationPrompt asks whether the screen is still usable after a change.
type ConfirmationPrompt interface {
	// Show blocks until the user confirms, rejects, or timeout elapses, and
	// returns exactly one terminal result. Cancelling ctx rejects.
	Show(ctx context.Context, timeout time.Duration) (domain.ConfirmationResult, error)
}
