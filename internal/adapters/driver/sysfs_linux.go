//go:build linux

package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/bft-labs/pwmguard/internal/domain"
)

const nsPerSecond = 1_000_000_000

// Sysfs drives a Linux PWM channel directory (period and duty_cycle in ns).
type Sysfs struct {
	dir           string
	baseClockPath string
}

func openSysfs(dir, baseClockPath string) (*Sysfs, error) {
	if dir == "" {
		return nil, &domain.DriverError{Op: "open", Err: errors.New("no PWM channel configured")}
	}
	for _, name := range []string{"period", "duty_cycle"} {
		if err := unix.Access(filepath.Join(dir, name), unix.R_OK|unix.W_OK); err != nil {
			return nil, driverError("open", err)
		}
	}
	return &Sysfs{dir: dir, baseClockPath: baseClockPath}, nil
}

// Read reports the current frequency and the base clock, 0 if unknown.
func (s *Sysfs) Read(ctx context.Context) (domain.Reading, error) {
	period, err := s.readInt("period")
	if err != nil {
		return domain.Reading{}, driverError("read", err)
	}
	var reading domain.Reading
	if period > 0 {
		reading.Current = domain.Frequency(nsPerSecond / period)
	}
	if s.baseClockPath != "" {
		if base, err := readIntFile(s.baseClockPath); err == nil {
			reading.BaseClock = domain.Frequency(base)
		}
	}
	return reading, nil
}

// Write sets the period for f and scales duty_cycle to keep brightness.
// The kernel rejects duty_cycle > period, so the order of the two writes
// depends on whether the period grows or shrinks.
func (s *Sysfs) Write(ctx context.Context, f domain.Frequency) error {
	if f <= 0 {
		return domain.ErrOutOfRange
	}
	oldPeriod, err := s.readInt("period")
	if err != nil {
		return driverError("write", err)
	}
	duty, err := s.readInt("duty_cycle")
	if err != nil {
		return driverError("write", err)
	}

	newPeriod := int64(nsPerSecond / int64(f))
	newDuty := int64(0)
	if oldPeriod > 0 {
		newDuty = duty * newPeriod / oldPeriod
	}

	steps := []struct {
		name  string
		value int64
	}{{"duty_cycle", newDuty}, {"period", newPeriod}}
	if newPeriod > oldPeriod {
		steps[0], steps[1] = steps[1], steps[0]
	}
	for _, st := range steps {
		if err := s.writeInt(st.name, st.value); err != nil {
			return driverError("write", err)
		}
	}
	return nil
}

func (s *Sysfs) readInt(name string) (int64, error) {
	return readIntFile(filepath.Join(s.dir, name))
}

func (s *Sysfs) writeInt(name string, v int64) error {
	return os.WriteFile(filepath.Join(s.dir, name), []byte(strconv.FormatInt(v, 10)), 0o644)
}

func readIntFile(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}

// driverError wraps err, using its errno as the code when there is one.
func driverError(op string, err error) *domain.DriverError {
	de := &domain.DriverError{Op: op, Err: err}
	var errno unix.Errno
	if errors.As(err, &errno) {
		de.Code = uint32(errno)
	}
	return de
}
