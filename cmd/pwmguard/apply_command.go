package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bft-labs/pwmguard/internal/adapters/fs"
	"github.com/bft-labs/pwmguard/internal/adapters/prompt"
	"github.com/bft-labs/pwmguard/internal/app"
	"github.com/bft-labs/pwmguard/internal/confirm"
	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

func newApplyCommand(c *commandContext) *cobra.Command {
	var smart bool
	cmd := &cobra.Command{
		Use:   "apply [frequency]",
		Short: "Apply a frequency and keep it only if confirmed",
		Long: `Apply a PWM frequency (in Hz, 200 to 4000) and ask for confirmation.
Without an answer before the timeout the previous frequency is restored.
With no argument the saved boot target is applied.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if smart && len(args) > 0 {
				return errors.New("--smart and a frequency are mutually exclusive")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runApply(ctx, c, cmd.OutOrStdout(), args, smart)
		},
	}
	cmd.Flags().BoolVar(&smart, "smart", false, "apply the frequency suggested for this panel")
	return cmd
}

func runApply(ctx context.Context, c *commandContext, out io.Writer, args []string, smart bool) error {
	lock := fs.NewSessionLock(c.cfg.LockPath)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			c.logger.Warn("release session lock", ports.Tag("lock"), ports.Err(err))
		}
	}()

	if c.exe != "" {
		c.autostartService().SelfHeal(ctx, c.exe)
	}

	responder, err := prompt.New(c.cfg.Prompt, os.Stdin, c.stderr)
	if err != nil {
		return err
	}
	store := c.store()
	protocol := app.NewProtocol(
		c.driverFactory(),
		store,
		confirm.NewPrompt(responder, c.logger),
		c.logger,
		app.WithConfirmTimeout(c.cfg.ConfirmTimeout),
	)

	var res app.ApplyResult
	switch {
	case len(args) == 1:
		res, err = protocol.Apply(ctx, args[0])
	case smart:
		_, suggested, serr := app.Suggest(ctx, c.driverFactory())
		if serr != nil {
			return serr
		}
		fmt.Fprintln(out, "Suggested frequency:", suggested)
		res, err = protocol.ApplyFrequency(ctx, suggested)
	default:
		res, err = protocol.ApplyFrequency(ctx, store.Load(ctx).BootTarget())
	}
	printApplyResult(out, res)
	return err
}

// printApplyResult reports how an apply ended. Rollback and save failures
// do not fail the command but are always shown.
func printApplyResult(out io.Writer, res app.ApplyResult) {
	switch {
	case res.Unchanged:
		fmt.Fprintf(out, "Already at %s, nothing to do.\n", res.New)
	case res.State == app.ProtocolCommitted:
		fmt.Fprintf(out, "Kept %s (was %s).\n", res.New, res.Old)
		if res.SaveErr != nil {
			fmt.Fprintf(out, "WARNING: %s will not be restored at login: %v\n", res.New, res.SaveErr)
		}
	case res.State == app.ProtocolRolledBack:
		if res.Confirmation == domain.ResultTimedOut {
			fmt.Fprintf(out, "No answer, restored %s.\n", res.Old)
		} else {
			fmt.Fprintf(out, "Reverted to %s.\n", res.Old)
		}
	}
	if res.RollbackErr != nil {
		fmt.Fprintf(out, "WARNING: could not restore %s: %v\n", res.Old, res.RollbackErr)
		fmt.Fprintf(out, "The panel is still at %s. Set it back manually.\n", res.Current)
	}
}

func newSuggestCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Show the recommended frequency for this panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reading, suggested, err := app.Suggest(cmd.Context(), c.driverFactory())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Current:    %s (%s)\n", reading.Current, domain.Rate(reading.Current))
			fmt.Fprintf(out, "Base clock: %s\n", reading.BaseClock)
			fmt.Fprintf(out, "Suggested:  %s\n", suggested)
			return nil
		},
	}
}
