package fs

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// ConfigFileName is the name of the JSON store in both locations.
const ConfigFileName = "config.json"

// ConfigFileStore implements ports.ConfigStore with a JSON file. The per-user
// file wins when it exists; otherwise a portable file next to the binary is
// used if present. Saves go to whichever file is active, the per-user one
// when neither exists.
type ConfigFileStore struct {
	userPath     string
	portablePath string
	logger       ports.Logger
}

var _ ports.ConfigStore = (*ConfigFileStore)(nil)

// NewConfigFileStore creates a store. portablePath may be empty.
func NewConfigFileStore(userPath, portablePath string, logger ports.Logger) *ConfigFileStore {
	return &ConfigFileStore{userPath: userPath, portablePath: portablePath, logger: logger}
}

// Path returns the file Load and Save currently use.
func (s *ConfigFileStore) Path() string {
	if fileExists(s.userPath) {
		return s.userPath
	}
	if s.portablePath != "" && fileExists(s.portablePath) {
		return s.portablePath
	}
	return s.userPath
}

// Load reads the configuration. A missing, unreadable or corrupt file yields
// the default configuration.
func (s *ConfigFileStore) Load(ctx context.Context) domain.Configuration {
	path := s.Path()
	cfg := domain.DefaultConfiguration()

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("config unreadable, using defaults", ports.Tag("config"), ports.String("path", path), ports.Err(err))
		}
		return cfg
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("config corrupt, using defaults", ports.Tag("config"), ports.String("path", path), ports.Err(err))
		return domain.DefaultConfiguration()
	}
	return cfg
}

// Save persists f atomically.
func (s *ConfigFileStore) Save(ctx context.Context, f domain.Frequency) error {
	path := s.Path()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(domain.Configuration{LastFrequency: f}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+ConfigFileName+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	s.logger.Debug("config saved", ports.Tag("config"), ports.String("path", path), ports.Int("hz", int(f)))
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
