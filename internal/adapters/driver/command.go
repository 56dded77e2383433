package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/bft-labs/pwmguard/internal/domain"
)

// Command talks to an external gateway executable:
//
//	<cmd> get        prints "<current_hz> <base_clock_hz>"
//	<cmd> set <hz>   exits 0 on success
//
// A non-zero exit status becomes the DriverError code.
type Command struct {
	path string
}

func newCommand(path string) (*Command, error) {
	if path == "" {
		return nil, &domain.DriverError{Op: "open", Err: errors.New("no gateway command configured")}
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, &domain.DriverError{Op: "open", Err: err}
	}
	return &Command{path: resolved}, nil
}

// Read runs "get".
func (c *Command) Read(ctx context.Context) (domain.Reading, error) {
	out, err := c.run(ctx, "get")
	if err != nil {
		return domain.Reading{}, err
	}
	fields := strings.Fields(out)
	if len(fields) != 2 {
		return domain.Reading{}, &domain.DriverError{Op: "get", Err: fmt.Errorf("unexpected output %q", out)}
	}
	current, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.Reading{}, &domain.DriverError{Op: "get", Err: err}
	}
	base, err := strconv.Atoi(fields[1])
	if err != nil {
		return domain.Reading{}, &domain.DriverError{Op: "get", Err: err}
	}
	return domain.Reading{Current: domain.Frequency(current), BaseClock: domain.Frequency(base)}, nil
}

// Write runs "set <hz>".
func (c *Command) Write(ctx context.Context, f domain.Frequency) error {
	_, err := c.run(ctx, "set", strconv.Itoa(int(f)))
	return err
}

func (c *Command) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		de := &domain.DriverError{Op: args[0], Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
			de.Code = uint32(exitErr.ExitCode())
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				de.Err = errors.New(msg)
			}
		}
		return "", de
	}
	return strings.TrimSpace(stdout.String()), nil
}
