package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyFileConfig(t *testing.T) {
	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				StorePath:      "/data/config.json",
				Driver:         "command",
				DriverCommand:  "pwmctl",
				ConfirmTimeout: "15s",
				Prompt:         "dialog",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				StorePath:      "/data/config.json",
				Driver:         "command",
				DriverCommand:  "pwmctl",
				ConfirmTimeout: 15 * time.Second,
				Prompt:         "dialog",
			},
			wantErr: false,
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Driver:     "command",
				DriverPath: "/sys/class/pwm/pwmchip1/pwm0",
			},
			changed: map[string]bool{"driver": true},
			initial: Config{
				Driver:     "sysfs",
				DriverPath: "/flag/path",
			},
			expected: Config{
				Driver:     "sysfs", // unchanged because flag was set
				DriverPath: "/sys/class/pwm/pwmchip1/pwm0",
			},
			wantErr: false,
		},
		{
			name: "empty values keep defaults",
			fileConfig: FileConfig{
				Driver: "",
			},
			changed: map[string]bool{},
			initial: Config{
				Driver:         "sysfs",
				ConfirmTimeout: 11 * time.Second,
			},
			expected: Config{
				Driver:         "sysfs",
				ConfirmTimeout: 11 * time.Second,
			},
			wantErr: false,
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				ConfirmTimeout: "soon",
			},
			changed: map[string]bool{},
			wantErr: true,
		},
		{
			name: "handles all field types correctly",
			fileConfig: FileConfig{
				StorePath:      "/s/config.json",
				LogPath:        "/s/boot_log.txt",
				LockPath:       "/s/lock",
				Driver:         "sysfs",
				DriverPath:     "/sys/pwm",
				BaseClockPath:  "/sys/pwm/base",
				DriverCommand:  "pwmctl",
				ConfirmTimeout: "1m",
				Prompt:         "terminal",
				CanonicalName:  "pwmguard-bin",
				AutostartDir:   "/a",
				InstallDir:     "/i",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				StorePath:      "/s/config.json",
				LogPath:        "/s/boot_log.txt",
				LockPath:       "/s/lock",
				Driver:         "sysfs",
				DriverPath:     "/sys/pwm",
				BaseClockPath:  "/sys/pwm/base",
				DriverCommand:  "pwmctl",
				ConfirmTimeout: time.Minute,
				Prompt:         "terminal",
				CanonicalName:  "pwmguard-bin",
				AutostartDir:   "/a",
				InstallDir:     "/i",
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr && err == nil {
				t.Error("ApplyFileConfig() expected error but got nil")
				return
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ApplyFileConfig() unexpected error: %v", err)
				return
			}

			if !tt.wantErr && cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "settings.toml")

	tomlContent := `
driver = "sysfs"
driver_path = "/sys/class/pwm/pwmchip0/pwm1"
base_clock_path = "/etc/pwmguard/base_clock"
confirm_timeout = "30s"
`

	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.Driver != "sysfs" {
		t.Errorf("Driver = %v, want sysfs", fc.Driver)
	}
	if fc.DriverPath != "/sys/class/pwm/pwmchip0/pwm1" {
		t.Errorf("DriverPath = %v", fc.DriverPath)
	}
	if fc.BaseClockPath != "/etc/pwmguard/base_clock" {
		t.Errorf("BaseClockPath = %v", fc.BaseClockPath)
	}
	if fc.ConfirmTimeout != "30s" {
		t.Errorf("ConfirmTimeout = %v, want 30s", fc.ConfirmTimeout)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/settings.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
driver = "sysfs"
this is not valid toml
`

	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultSettingsPath(t *testing.T) {
	path := DefaultSettingsPath()

	if path != "" && !strings.HasSuffix(path, filepath.Join("pwmguard", "settings.toml")) {
		t.Errorf("DefaultSettingsPath() = %v, should end in pwmguard/settings.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")

	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Error("FileExists() = false, want true for existing file")
	}

	if FileExists(filepath.Join(tmpDir, "nonexistent.txt")) {
		t.Error("FileExists() = true, want false for nonexistent file")
	}
}
