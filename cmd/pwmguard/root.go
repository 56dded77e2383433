package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/pwmguard/internal/adapters/autostart"
	"github.com/bft-labs/pwmguard/internal/adapters/driver"
	"github.com/bft-labs/pwmguard/internal/adapters/fs"
	logAdapter "github.com/bft-labs/pwmguard/internal/adapters/log"
	"github.com/bft-labs/pwmguard/internal/app"
	"github.com/bft-labs/pwmguard/internal/cliconfig"
	"github.com/bft-labs/pwmguard/internal/ports"
)

const longHelp = `Keep a laptop panel's PWM dimming frequency where you set it.

A new frequency only sticks after you confirm the screen is still usable;
without an answer it is reverted automatically. At login a watchdog
re-applies the saved frequency once the driver is ready, retrying in fresh
processes with a growing delay.`

var exampleUsage = strings.TrimSpace(`
  pwmguard apply 2000
  pwmguard apply --smart
  pwmguard status --follow
  pwmguard autostart enable --install
`)

// commandContext carries the resolved configuration and collaborators
// shared by all subcommands.
type commandContext struct {
	cfg          cliconfig.Config
	settingsPath string
	silent       bool
	attempt      int
	verbose      bool

	stderr io.Writer
	logger ports.Logger
	exe    string
}

func newRootCommand() *cobra.Command {
	c := &commandContext{cfg: cliconfig.DefaultConfig(), stderr: os.Stderr}

	root := &cobra.Command{
		Use:           "pwmguard",
		Short:         "Apply a panel PWM frequency safely and restore it at login",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.silent {
				runWatchdog(cmd.Context(), c)
				return nil
			}
			return runStatus(cmd, c, false)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.settingsPath, "settings", "", "path to settings file (default: $XDG_CONFIG_HOME/pwmguard/settings.toml)")
	flags.StringVar(&c.cfg.StorePath, "store", c.cfg.StorePath, "JSON file holding the last confirmed frequency")
	flags.StringVar(&c.cfg.LogPath, "log-file", c.cfg.LogPath, "append-only log file")
	flags.StringVar(&c.cfg.LockPath, "lock-file", c.cfg.LockPath, "lock file guarding interactive applies")
	flags.StringVar(&c.cfg.Driver, "driver", c.cfg.Driver, "driver backend: sysfs or command")
	flags.StringVar(&c.cfg.DriverPath, "driver-path", c.cfg.DriverPath, "PWM channel directory (sysfs driver)")
	flags.StringVar(&c.cfg.BaseClockPath, "base-clock-path", c.cfg.BaseClockPath, "file holding the panel base clock in Hz (sysfs driver)")
	flags.StringVar(&c.cfg.DriverCommand, "driver-command", c.cfg.DriverCommand, "gateway executable (command driver)")
	flags.DurationVar(&c.cfg.ConfirmTimeout, "timeout", c.cfg.ConfirmTimeout, "how long to wait for confirmation before reverting")
	flags.StringVar(&c.cfg.Prompt, "prompt", c.cfg.Prompt, "confirmation prompt: auto, terminal or dialog")
	flags.StringVar(&c.cfg.AutostartDir, "autostart-dir", c.cfg.AutostartDir, "XDG autostart directory")
	flags.StringVar(&c.cfg.InstallDir, "install-dir", c.cfg.InstallDir, "where autostart enable --install copies the binary")
	flags.StringVar(&c.cfg.CanonicalName, "canonical-name", c.cfg.CanonicalName, "expected binary file name")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "log debug lines")

	if err := flags.MarkHidden("canonical-name"); err != nil {
		fmt.Fprintf(c.stderr, "hide canonical-name flag: %v\n", err)
	}

	// Set only by the login entry and by respawning watchdogs.
	local := root.Flags()
	local.BoolVar(&c.silent, "silent", false, "run the boot watchdog")
	local.IntVar(&c.attempt, "retry", 0, "watchdog attempt index")
	for _, name := range []string{"silent", "retry"} {
		if err := local.MarkHidden(name); err != nil {
			fmt.Fprintf(c.stderr, "hide %s flag: %v\n", name, err)
		}
	}

	root.AddCommand(newApplyCommand(c))
	root.AddCommand(newSuggestCommand(c))
	root.AddCommand(newStatusCommand(c))
	root.AddCommand(newAutostartCommand(c))
	return root
}

// setup resolves the configuration and builds the logger. In silent mode a
// broken settings file must not stop the watchdog, so it falls back to the
// defaults.
func (c *commandContext) setup(cmd *cobra.Command) error {
	c.stderr = cmd.ErrOrStderr()
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	flagged := c.cfg
	loadErr := cliconfig.Load(&c.cfg, c.settingsPath, changed)
	if loadErr != nil && c.silent {
		c.cfg = cliconfig.DefaultConfig()
		applyChanged(&c.cfg, flagged, changed)
		if err := c.cfg.Validate(); err != nil {
			c.cfg = cliconfig.DefaultConfig()
		}
	}

	c.exe = executable()
	c.logger = c.newLogger()
	if loadErr != nil {
		if !c.silent {
			return loadErr
		}
		c.logger.Warn("settings ignored, using defaults", ports.Tag("config"), ports.Err(loadErr))
	}
	c.logger.Debug("configuration", ports.Tag("config"), ports.Any("config", c.cfg))
	return nil
}

// applyChanged copies the explicitly set flag values from src onto dst.
func applyChanged(dst *cliconfig.Config, src cliconfig.Config, changed map[string]bool) {
	if changed["log-file"] {
		dst.LogPath = src.LogPath
	}
	if changed["store"] {
		dst.StorePath = src.StorePath
	}
	if changed["driver"] {
		dst.Driver = src.Driver
	}
	if changed["driver-path"] {
		dst.DriverPath = src.DriverPath
	}
	if changed["base-clock-path"] {
		dst.BaseClockPath = src.BaseClockPath
	}
	if changed["driver-command"] {
		dst.DriverCommand = src.DriverCommand
	}
}

func (c *commandContext) newLogger() ports.Logger {
	opts := logAdapter.Options{FilePath: c.cfg.LogPath, Level: zerolog.InfoLevel}
	if c.verbose {
		opts.Level = zerolog.DebugLevel
	}
	if !c.silent {
		opts.Console = c.stderr
	}
	return logAdapter.New(opts)
}

func (c *commandContext) driverFactory() ports.DriverFactory {
	return driver.Factory(driver.Options{
		Kind:          c.cfg.Driver,
		Path:          c.cfg.DriverPath,
		BaseClockPath: c.cfg.BaseClockPath,
		Command:       c.cfg.DriverCommand,
	}, c.logger)
}

func (c *commandContext) store() *fs.ConfigFileStore {
	portable := ""
	if c.exe != "" {
		portable = filepath.Join(filepath.Dir(c.exe), fs.ConfigFileName)
	}
	return fs.NewConfigFileStore(c.cfg.StorePath, portable, c.logger)
}

func (c *commandContext) registrar() *autostart.XDG {
	return autostart.NewXDG(c.cfg.AutostartDir, c.cfg.CanonicalName, c.exe, c.logger)
}

func (c *commandContext) autostartService() *app.Autostart {
	return app.NewAutostart(c.registrar(), c.cfg.CanonicalName, c.cfg.InstallDir, c.logger)
}

// executable returns the resolved path of the running binary, or "".
func executable() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		return resolved
	}
	return exe
}
