package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/pwmguard/internal/adapters/fs"
	"github.com/bft-labs/pwmguard/internal/app"
	"github.com/bft-labs/pwmguard/internal/domain"
)

func newStatusCommand(c *commandContext) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the panel frequency, saved target and autostart state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, c, follow)
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "print again whenever the saved target changes")
	return cmd
}

func runStatus(cmd *cobra.Command, c *commandContext, follow bool) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	store := c.store()
	show := func() {
		report := app.Status(ctx, c.driverFactory(), store, c.registrar())
		fmt.Fprintln(out, renderStatus(report, store.Path()))
	}
	show()
	if !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	path := store.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}
	return fs.Watch(ctx, path, fs.DefaultDebounce, c.logger, show)
}

func renderStatus(report app.StatusReport, storePath string) string {
	current := "unavailable"
	rating := "-"
	base := "-"
	if report.DriverErr == nil {
		current = report.Reading.Current.String()
		rating = report.Rating.String()
		base = report.Reading.BaseClock.String()
	}
	autostart := "disabled"
	if report.Autostart {
		autostart = "enabled"
	}
	stored := report.Stored.String()
	if report.Stored < domain.SafeMin {
		stored = fmt.Sprintf("%s (boot uses %s)", stored, domain.OptimalTarget)
	}

	rows := [][2]string{
		{"Current", current},
		{"Flicker risk", rating},
		{"Base clock", base},
		{"Suggested", report.Suggested.String()},
		{"Boot target", stored},
		{"Autostart", autostart},
		{"Settings", storePath},
	}
	rendered := renderKeyValues(rows)
	if report.DriverErr != nil {
		rendered += "\ndriver: " + report.DriverErr.Error()
	}
	return rendered
}
