package prompt

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/bft-labs/pwmguard/internal/confirm"
)

// Responder kinds accepted by New.
const (
	KindAuto     = "auto"
	KindTerminal = "terminal"
	KindDialog   = "dialog"
)

// New picks a responder. KindAuto uses the terminal when in is one and the
// desktop dialog otherwise.
func New(kind string, in *os.File, out io.Writer) (confirm.Responder, error) {
	switch kind {
	case KindTerminal:
		return NewTerminal(in, out), nil
	case KindDialog:
		return NewDialog("pwmguard"), nil
	case KindAuto, "":
		if IsTerminal(in) {
			return NewTerminal(in, out), nil
		}
		return NewDialog("pwmguard"), nil
	default:
		return nil, fmt.Errorf("unknown prompt kind %q", kind)
	}
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
