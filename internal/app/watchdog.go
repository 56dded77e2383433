package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// WatchdogState is a state of the boot watchdog supervisor.
type WatchdogState int

const (
	WatchdogStarting WatchdogState = iota
	WatchdogWaiting
	WatchdogProbing
	WatchdogApplying
	WatchdogSucceeded
	WatchdogGaveUp
	WatchdogRespawning
)

// String returns a human-readable representation of the state.
func (s WatchdogState) String() string {
	switch s {
	case WatchdogStarting:
		return "Starting"
	case WatchdogWaiting:
		return "Waiting"
	case WatchdogProbing:
		return "Probing"
	case WatchdogApplying:
		return "Applying"
	case WatchdogSucceeded:
		return "Succeeded"
	case WatchdogGaveUp:
		return "GaveUp"
	case WatchdogRespawning:
		return "Respawning"
	default:
		return "Unknown"
	}
}

// Terminal reports whether the process should exit in s.
func (s WatchdogState) Terminal() bool {
	return s == WatchdogSucceeded || s == WatchdogGaveUp || s == WatchdogRespawning
}

var watchdogEdges = map[WatchdogState][]WatchdogState{
	WatchdogStarting: {WatchdogWaiting},
	WatchdogWaiting:  {WatchdogProbing, WatchdogGaveUp},
	WatchdogProbing:  {WatchdogApplying, WatchdogRespawning, WatchdogGaveUp},
	WatchdogApplying: {WatchdogSucceeded, WatchdogRespawning, WatchdogGaveUp},
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WatchdogConfig contains what one watchdog process knows at start.
type WatchdogConfig struct {
	// Attempt is the index parsed from -retry:N.
	Attempt int
}

// WatchdogOption configures optional behavior of a Watchdog.
type WatchdogOption func(*Watchdog)

// WithSleep replaces the wait implementation.
func WithSleep(fn SleepFunc) WatchdogOption {
	return func(w *Watchdog) { w.sleep = fn }
}

// WithWatchdogEvents registers an emitter for state changes.
func WithWatchdogEvents(e EventEmitter) WatchdogOption {
	return func(w *Watchdog) { w.emitter = e }
}

// Watchdog applies the stored frequency once per process. On failure it
// hands the next attempt index to a fresh process instead of looping, so no
// driver state survives between attempts.
type Watchdog struct {
	cfg        WatchdogConfig
	openDriver ports.DriverFactory
	store      ports.ConfigStore
	spawner    ports.Spawner
	logger     ports.Logger
	sleep      SleepFunc
	emitter    EventEmitter
	machine    *machine[WatchdogState]
}

// NewWatchdog creates a watchdog for a single attempt.
func NewWatchdog(
	cfg WatchdogConfig,
	openDriver ports.DriverFactory,
	store ports.ConfigStore,
	spawner ports.Spawner,
	logger ports.Logger,
	opts ...WatchdogOption,
) *Watchdog {
	w := &Watchdog{
		cfg:        cfg,
		openDriver: openDriver,
		store:      store,
		spawner:    spawner,
		logger:     logger,
		sleep:      Sleep,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.machine = newMachine("watchdog", WatchdogStarting, watchdogEdges, logger, w.emitter)
	return w
}

// State returns the current supervisor state.
func (w *Watchdog) State() WatchdogState {
	return w.machine.State()
}

// Run performs the attempt: wait, probe, apply, and on failure either
// launch the successor or give up. It never returns an error; every failure
// becomes a retry or give-up decision recorded in the log.
func (w *Watchdog) Run(ctx context.Context) domain.Attempt {
	attempt := domain.NewAttempt(w.cfg.Attempt, DelayFor(w.cfg.Attempt))
	target := w.store.Load(ctx).BootTarget()

	w.logger.Info("watchdog started",
		ports.Tag("start"),
		ports.Int("attempt", attempt.Index),
		ports.Int("pid", os.Getpid()),
		ports.Int("target_hz", int(target)),
	)

	// The driver is not guaranteed ready right after login, so even the
	// first attempt waits.
	w.to(WatchdogWaiting, "boot settling")
	w.logger.Info("waiting before probe", ports.Tag("backoff"), ports.Duration("delay", attempt.Wait))
	if err := w.sleep(ctx, attempt.Wait); err != nil {
		w.to(WatchdogGaveUp, "interrupted")
		w.logger.Warn("wait interrupted, stopping", ports.Tag("giveup"), ports.Err(err))
		return attempt.WithOutcome(domain.OutcomeFailed)
	}

	if err := w.apply(ctx, target); err != nil {
		w.logger.Error("attempt failed", ports.Tag("failure"), ports.Int("attempt", attempt.Index), ports.Err(err))
		w.fail(ctx, attempt.Index, err)
		return attempt.WithOutcome(domain.OutcomeFailed)
	}

	w.to(WatchdogSucceeded, "frequency applied")
	w.logger.Info("frequency applied, done", ports.Tag("success"), ports.Int("hz", int(target)))
	return attempt.WithOutcome(domain.OutcomeSuccess)
}

// apply probes the driver and writes target. Panics raised by the driver
// are converted to errors so they reach the retry decision.
func (w *Watchdog) apply(ctx context.Context, target domain.Frequency) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: driver panic: %v", domain.ErrDriverUnavailable, r)
		}
	}()

	w.to(WatchdogProbing, "driver probe")
	w.logger.Info("connecting to driver", ports.Tag("init"))
	drv, err := w.openDriver(ctx)
	if err != nil {
		return fmt.Errorf("open driver: %w", err)
	}

	reading, err := drv.Read(ctx)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	w.logger.Info("driver responded",
		ports.Tag("probe"),
		ports.Int("current_hz", int(reading.Current)),
		ports.Int("base_clock_hz", int(reading.BaseClock)),
	)

	w.to(WatchdogApplying, "driver ready")
	w.logger.Info("writing frequency", ports.Tag("write"), ports.Int("hz", int(target)))
	if err := drv.Write(ctx, target); err != nil {
		return fmt.Errorf("apply %d Hz: %w", int(target), err)
	}
	return nil
}

// fail decides between respawning and giving up.
func (w *Watchdog) fail(ctx context.Context, index int, cause error) {
	switch {
	case errors.Is(cause, domain.ErrOutOfRange):
		// Retrying cannot make a rejected target valid.
		w.to(WatchdogGaveUp, "target rejected")
		w.logger.Error("stored target rejected, not retrying", ports.Tag("giveup"))
		return
	case ctx.Err() != nil:
		w.to(WatchdogGaveUp, "interrupted")
		w.logger.Warn("interrupted, not retrying", ports.Tag("giveup"), ports.Err(ctx.Err()))
		return
	case !ShouldRespawn(index):
		w.to(WatchdogGaveUp, "attempts exhausted")
		w.logger.Warn("max attempts reached, driver may be down",
			ports.Tag("giveup"),
			ports.Int("max_attempts", MaxAttempts),
		)
		return
	}

	next := index + 1
	w.to(WatchdogRespawning, "retry")
	w.logger.Info("launching successor", ports.Tag("retry"), ports.Int("next_attempt", next))
	if err := w.spawner.Spawn(ctx, next); err != nil {
		w.logger.Error("cannot launch successor, retry chain broken",
			ports.Tag("fatal"),
			ports.Int("next_attempt", next),
			ports.Err(err),
		)
		return
	}
	w.logger.Info("successor launched, exiting", ports.Tag("respawn"), ports.Int("next_attempt", next))
}

func (w *Watchdog) to(s WatchdogState, reason string) {
	if err := w.machine.TransitionTo(s, reason); err != nil {
		w.logger.Error("state machine", ports.Tag("watchdog"), ports.Err(err))
	}
}
