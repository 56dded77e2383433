package ports

import "context"

// AutostartRegistrar registers the executable to run at user login with the
// silent watchdog invocation.
type AutostartRegistrar interface {
	// IsEnabled reports whether a registration exists for the current or the
	// canonical executable name. Query failures report false.
	IsEnabled(ctx context.Context) bool

	// Enable registers executablePath. Calling it again overwrites the entry.
	Enable(ctx context.Context, executablePath string) error

	// Disable removes the registration. Removing a missing entry succeeds.
	Disable(ctx context.Context) error
}
