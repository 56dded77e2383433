package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newAutostartCommand(c *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage the login entry that restores the frequency",
	}

	var install bool
	enable := &cobra.Command{
		Use:   "enable",
		Short: "Run the boot watchdog at login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.exe == "" {
				return errors.New("cannot locate the running executable")
			}
			target, err := c.autostartService().Enable(cmd.Context(), c.exe, install)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart enabled: %s\n", target)
			fmt.Fprintf(cmd.OutOrStdout(), "Entry: %s\n", c.registrar().Path())
			return nil
		},
	}
	enable.Flags().BoolVar(&install, "install", false, "copy the binary to the install directory under its canonical name first")

	disable := &cobra.Command{
		Use:   "disable",
		Short: "Remove the login entry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.autostartService().Disable(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled.")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Report whether the login entry is installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state := "disabled"
			if c.autostartService().IsEnabled(cmd.Context()) {
				state = "enabled"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Autostart %s (%s)\n", state, c.registrar().Path())
			return nil
		},
	}

	cmd.AddCommand(enable, disable, status)
	return cmd
}
