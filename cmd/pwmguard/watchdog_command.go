package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/bft-labs/pwmguard/internal/adapters/process"
	"github.com/bft-labs/pwmguard/internal/app"
)

// runWatchdog runs one boot attempt. Every outcome is final for this
// process; the only trace is the log.
func runWatchdog(ctx context.Context, c *commandContext) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	w := app.NewWatchdog(
		app.WatchdogConfig{Attempt: c.attempt},
		c.driverFactory(),
		c.store(),
		process.NewSpawner(c.exe),
		c.logger,
	)
	w.Run(ctx)
}
