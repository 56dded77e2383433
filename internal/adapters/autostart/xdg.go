// Package autostart registers the boot watchdog as an XDG autostart entry.
package autostart

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bft-labs/pwmguard/internal/invocation"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// XDG manages "<dir>/<canonical>.desktop". The entry runs the binary with
// the watchdog arguments on every login.
type XDG struct {
	dir       string
	canonical string
	current   string
	logger    ports.Logger
}

var _ ports.AutostartRegistrar = (*XDG)(nil)

// NewXDG creates a registrar. current is the running executable; an entry
// pointing at either current's file name or canonical counts as enabled.
func NewXDG(dir, canonical, current string, logger ports.Logger) *XDG {
	return &XDG{dir: dir, canonical: canonical, current: current, logger: logger}
}

// Path returns the entry file.
func (x *XDG) Path() string {
	return filepath.Join(x.dir, x.canonical+".desktop")
}

// IsEnabled reports whether an entry for this program exists. Any read
// problem counts as disabled.
func (x *XDG) IsEnabled(ctx context.Context) bool {
	data, err := os.ReadFile(x.Path())
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			x.logger.Debug("autostart entry unreadable", ports.Tag("autostart"), ports.Err(err))
		}
		return false
	}
	exe, ok := execTarget(data)
	if !ok {
		return false
	}
	name := filepath.Base(exe)
	return name == x.canonical || (x.current != "" && name == filepath.Base(x.current))
}

// Enable writes the entry for exe, replacing any previous one.
func (x *XDG) Enable(ctx context.Context, exe string) error {
	if err := os.MkdirAll(x.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(x.dir, ".pwmguard-desktop-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(desktopEntry(exe)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), x.Path())
}

// Disable removes the entry. A missing entry is not an error.
func (x *XDG) Disable(ctx context.Context) error {
	err := os.Remove(x.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func desktopEntry(exe string) []byte {
	args := append([]string{quoteExec(exe)}, invocation.AutostartArgs()...)
	var b bytes.Buffer
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=pwmguard\n")
	b.WriteString("Comment=Restore the panel PWM frequency at login\n")
	fmt.Fprintf(&b, "Exec=%s\n", strings.Join(args, " "))
	b.WriteString("Terminal=false\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.Bytes()
}

// quoteExec quotes a path for an Exec key: double quotes, with ", `, $ and
// \ backslash-escaped, and % doubled.
func quoteExec(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"', '`', '$', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '%':
			b.WriteString("%%")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// execTarget returns the program of the entry's Exec key.
func execTarget(data []byte) (string, bool) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		value, ok := strings.CutPrefix(line, "Exec=")
		if !ok {
			continue
		}
		return firstArg(value)
	}
	return "", false
}

func firstArg(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if value[0] != '"' {
		return strings.Fields(value)[0], true
	}
	var b strings.Builder
	escaped := false
	for _, r := range value[1:] {
		switch {
		case escaped:
			b.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			return strings.ReplaceAll(b.String(), "%%", "%"), true
		default:
			b.WriteRune(r)
		}
	}
	return "", false
}
