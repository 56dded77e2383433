package cliconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// AppName names the per-user directories and the canonical binary.
const AppName = "pwmguard"

// Driver and prompt kinds accepted by Validate.
const (
	DriverSysfs   = "sysfs"
	DriverCommand = "command"

	PromptAuto     = "auto"
	PromptTerminal = "terminal"
	PromptDialog   = "dialog"
)

// DefaultConfirmTimeout is the confirmation window length.
const DefaultConfirmTimeout = 11 * time.Second

// Config holds CLI configuration for pwmguard.
type Config struct {
	// StorePath is the per-user JSON file holding the last confirmed frequency.
	StorePath string
	LogPath   string
	LockPath  string

	Driver        string
	DriverPath    string
	BaseClockPath string
	DriverCommand string

	ConfirmTimeout time.Duration
	Prompt         string

	CanonicalName string
	AutostartDir  string
	InstallDir    string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	configDir := userDir(os.UserConfigDir, ".config")
	cacheDir := userDir(os.UserCacheDir, ".cache")

	return Config{
		StorePath:      filepath.Join(configDir, AppName, "config.json"),
		LogPath:        filepath.Join(cacheDir, AppName, "boot_log.txt"),
		LockPath:       filepath.Join(cacheDir, AppName, AppName+".lock"),
		Driver:         DriverSysfs,
		DriverPath:     "/sys/class/pwm/pwmchip0/pwm0",
		ConfirmTimeout: DefaultConfirmTimeout,
		Prompt:         PromptAuto,
		CanonicalName:  AppName,
		AutostartDir:   filepath.Join(configDir, "autostart"),
		InstallDir:     filepath.Join(userDir(os.UserHomeDir, ""), ".local", "bin"),
	}
}

// userDir returns lookup's result, or $HOME/fallback, or the temp dir.
func userDir(lookup func() (string, error), fallback string) string {
	if d, err := lookup(); err == nil && d != "" {
		return d
	}
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, fallback)
	}
	return os.TempDir()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSysfs:
		if c.DriverPath == "" {
			return fmt.Errorf("driver-path is required for the sysfs driver")
		}
	case DriverCommand:
		if c.DriverCommand == "" {
			return fmt.Errorf("driver-command is required for the command driver")
		}
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverSysfs, DriverCommand)
	}

	switch c.Prompt {
	case PromptAuto, PromptTerminal, PromptDialog:
	default:
		return fmt.Errorf("unknown prompt %q (want %s, %s or %s)", c.Prompt, PromptAuto, PromptTerminal, PromptDialog)
	}

	if c.ConfirmTimeout <= 0 {
		return fmt.Errorf("confirm timeout must be positive")
	}
	if c.StorePath == "" {
		return fmt.Errorf("store path is required")
	}
	if c.CanonicalName == "" {
		c.CanonicalName = AppName
	}
	if c.LockPath == "" {
		c.LockPath = filepath.Join(filepath.Dir(c.StorePath), AppName+".lock")
	}
	return nil
}

// Load applies the settings file and the environment on top of cfg, then
// validates it. Flags already set by the user (changed) are left alone. A
// missing settings file is not an error.
func Load(cfg *Config, settingsPath string, changed map[string]bool) error {
	if settingsPath == "" {
		settingsPath = DefaultSettingsPath()
	}
	if settingsPath != "" && FileExists(settingsPath) {
		fc, err := LoadFileConfig(settingsPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if err := ApplyFileConfig(cfg, fc, changed); err != nil {
			return err
		}
	}
	if err := ApplyEnvConfig(cfg, changed); err != nil {
		return err
	}
	return cfg.Validate()
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}
