package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (PWMGUARD_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("store", os.Getenv("PWMGUARD_STORE"), &cfg.StorePath)
	s.setString("log-file", os.Getenv("PWMGUARD_LOG_FILE"), &cfg.LogPath)
	s.setString("lock-file", os.Getenv("PWMGUARD_LOCK_FILE"), &cfg.LockPath)
	s.setString("driver", os.Getenv("PWMGUARD_DRIVER"), &cfg.Driver)
	s.setString("driver-path", os.Getenv("PWMGUARD_DRIVER_PATH"), &cfg.DriverPath)
	s.setString("base-clock-path", os.Getenv("PWMGUARD_BASE_CLOCK_PATH"), &cfg.BaseClockPath)
	s.setString("driver-command", os.Getenv("PWMGUARD_DRIVER_COMMAND"), &cfg.DriverCommand)
	s.setString("prompt", os.Getenv("PWMGUARD_PROMPT"), &cfg.Prompt)
	s.setString("autostart-dir", os.Getenv("PWMGUARD_AUTOSTART_DIR"), &cfg.AutostartDir)
	s.setString("install-dir", os.Getenv("PWMGUARD_INSTALL_DIR"), &cfg.InstallDir)

	return s.setDuration("timeout", os.Getenv("PWMGUARD_CONFIRM_TIMEOUT"), &cfg.ConfirmTimeout)
}
