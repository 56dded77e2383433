package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bft-labs/pwmguard/internal/ports"
)

// Autostart manages the login entry for the boot watchdog.
type Autostart struct {
	registrar  ports.AutostartRegistrar
	canonical  string
	installDir string
	logger     ports.Logger
}

// NewAutostart creates the service. canonical is the expected binary file
// name; installDir is where Enable copies the binary when asked to install.
func NewAutostart(registrar ports.AutostartRegistrar, canonical, installDir string, logger ports.Logger) *Autostart {
	return &Autostart{
		registrar:  registrar,
		canonical:  canonical,
		installDir: installDir,
		logger:     logger,
	}
}

// IsEnabled reports whether a login entry exists.
func (a *Autostart) IsEnabled(ctx context.Context) bool {
	return a.registrar.IsEnabled(ctx)
}

// Enable registers exe. With install set, exe is first copied to the install
// directory under the canonical name and the copy is registered instead. A
// failed copy falls back to registering exe. It returns the registered path.
func (a *Autostart) Enable(ctx context.Context, exe string, install bool) (string, error) {
	target := exe
	if install && a.installDir != "" {
		dst := filepath.Join(a.installDir, a.canonical)
		if err := installBinary(exe, dst); err != nil {
			a.logger.Warn("install failed, registering current location",
				ports.Tag("autostart"),
				ports.String("dst", dst),
				ports.Err(err),
			)
		} else {
			target = dst
		}
	}
	if err := a.registrar.Enable(ctx, target); err != nil {
		return "", fmt.Errorf("enable autostart: %w", err)
	}
	a.logger.Info("autostart enabled", ports.Tag("autostart"), ports.String("exe", target))
	return target, nil
}

// Disable removes the login entry.
func (a *Autostart) Disable(ctx context.Context) error {
	if err := a.registrar.Disable(ctx); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	a.logger.Info("autostart disabled", ports.Tag("autostart"))
	return nil
}

// SelfHeal re-registers exe when autostart is on and exe carries the
// canonical name, so a moved binary keeps starting at login. Renamed copies
// are left alone. It reports whether the entry was rewritten.
func (a *Autostart) SelfHeal(ctx context.Context, exe string) bool {
	if !a.registrar.IsEnabled(ctx) || filepath.Base(exe) != a.canonical {
		return false
	}
	if err := a.registrar.Enable(ctx, exe); err != nil {
		a.logger.Warn("autostart self-heal failed", ports.Tag("autostart"), ports.Err(err))
		return false
	}
	a.logger.Debug("autostart entry refreshed", ports.Tag("autostart"), ports.String("exe", exe))
	return true
}

// installBinary copies src to dst through a temp file in dst's directory.
func installBinary(src, dst string) error {
	same, err := samePath(src, dst)
	if err != nil {
		return err
	}
	if same {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}

func samePath(a, b string) (bool, error) {
	ai, err := os.Stat(a)
	if err != nil {
		return false, err
	}
	bi, err := os.Stat(b)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return os.SameFile(ai, bi), nil
}
