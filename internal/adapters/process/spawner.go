// Package process launches the watchdog's successor.
package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/invocation"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// Spawner starts a detached copy of an executable with the respawn
// arguments. It does not wait for the child.
type Spawner struct {
	exe string
}

var _ ports.Spawner = (*Spawner)(nil)

// NewSpawner creates a spawner for exe.
func NewSpawner(exe string) *Spawner {
	return &Spawner{exe: exe}
}

// Spawn launches "<exe> -silent -retry:<attempt>" without a shell. The child
// gets no stdio and its own session so it outlives this process.
func (s *Spawner) Spawn(ctx context.Context, attempt int) error {
	if strings.TrimSpace(s.exe) == "" {
		return fmt.Errorf("%w: executable path is empty", domain.ErrRespawn)
	}

	proc := exec.Command(s.exe, invocation.RespawnArgs(attempt)...)
	detach(proc)
	if err := proc.Start(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrRespawn, err)
	}
	return proc.Process.Release()
}
