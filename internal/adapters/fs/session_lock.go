package fs

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// SessionLock keeps two interactive applies from racing on the same panel.
// The boot watchdog never takes it.
type SessionLock struct {
	path string
	lock *flock.Flock
}

// NewSessionLock creates a lock backed by path.
func NewSessionLock(path string) *SessionLock {
	return &SessionLock{path: path, lock: flock.New(path)}
}

// Acquire takes the lock without waiting. It returns domain.ErrSessionActive
// when another process holds it.
func (l *SessionLock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o700); err != nil {
		return fmt.Errorf("create lock dir: %w", err)
	}
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w (lock %s)", domain.ErrSessionActive, l.path)
	}
	return nil
}

// Release drops the lock.
func (l *SessionLock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file path.
func (l *SessionLock) Path() string { return l.path }
