package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	StorePath      string `toml:"store_path"`
	LogPath        string `toml:"log_path"`
	LockPath       string `toml:"lock_path"`
	Driver         string `toml:"driver"`
	DriverPath     string `toml:"driver_path"`
	BaseClockPath  string `toml:"base_clock_path"`
	DriverCommand  string `toml:"driver_command"`
	ConfirmTimeout string `toml:"confirm_timeout"`
	Prompt         string `toml:"prompt"`
	CanonicalName  string `toml:"canonical_name"`
	AutostartDir   string `toml:"autostart_dir"`
	InstallDir     string `toml:"install_dir"`
}

// LoadFileConfig reads and parses a TOML settings file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultSettingsPath returns $XDG_CONFIG_HOME/pwmguard/settings.toml, or ""
// when no config directory can be determined.
func DefaultSettingsPath() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, AppName, "settings.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("store", fc.StorePath, &cfg.StorePath)
	s.setString("log-file", fc.LogPath, &cfg.LogPath)
	s.setString("lock-file", fc.LockPath, &cfg.LockPath)
	s.setString("driver", fc.Driver, &cfg.Driver)
	s.setString("driver-path", fc.DriverPath, &cfg.DriverPath)
	s.setString("base-clock-path", fc.BaseClockPath, &cfg.BaseClockPath)
	s.setString("driver-command", fc.DriverCommand, &cfg.DriverCommand)
	s.setString("prompt", fc.Prompt, &cfg.Prompt)
	s.setString("canonical-name", fc.CanonicalName, &cfg.CanonicalName)
	s.setString("autostart-dir", fc.AutostartDir, &cfg.AutostartDir)
	s.setString("install-dir", fc.InstallDir, &cfg.InstallDir)

	return s.setDuration("timeout", fc.ConfirmTimeout, &cfg.ConfirmTimeout)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
