package driver

import (
	"context"
	"fmt"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// Backend kinds.
const (
	KindSysfs   = "sysfs"
	KindCommand = "command"
)

// Options selects and configures a backend.
type Options struct {
	Kind string
	// Path is the PWM channel directory for the sysfs backend.
	Path string
	// BaseClockPath optionally names a file holding the base clock in Hz.
	BaseClockPath string
	// Command is the gateway executable for the command backend.
	Command string
}

// Factory returns a DriverFactory that opens a fresh, range-guarded backend
// on every call.
func Factory(opts Options, logger ports.Logger) ports.DriverFactory {
	return func(ctx context.Context) (ports.Driver, error) {
		var (
			inner ports.Driver
			err   error
		)
		switch opts.Kind {
		case KindSysfs:
			inner, err = openSysfs(opts.Path, opts.BaseClockPath)
		case KindCommand:
			inner, err = newCommand(opts.Command)
		default:
			return nil, &domain.DriverError{Op: "open", Err: fmt.Errorf("unknown driver kind %q", opts.Kind)}
		}
		if err != nil {
			return nil, err
		}
		logger.Debug("driver opened", ports.Tag("init"), ports.String("kind", opts.Kind))
		return NewGuard(inner), nil
	}
}
