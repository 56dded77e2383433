//go:build !linux

package driver

import (
	"errors"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

func openSysfs(dir, baseClockPath string) (ports.Driver, error) {
	return nil, &domain.DriverError{Op: "open", Err: errors.New("sysfs backend is only available on linux")}
}
