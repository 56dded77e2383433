package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// DefaultConfirmTimeout is how long the user has to keep a new frequency.
const DefaultConfirmTimeout = 11 * time.Second

// ProtocolState is a state of the apply/confirm/rollback protocol.
type ProtocolState int

const (
	ProtocolIdle ProtocolState = iota
	ProtocolValidating
	ProtocolApplying
	ProtocolAwaitingConfirmation
	ProtocolCommitted
	ProtocolRolledBack
	ProtocolFailed
)

// String returns a human-readable representation of the state.
func (s ProtocolState) String() string {
	switch s {
	case ProtocolIdle:
		return "Idle"
	case ProtocolValidating:
		return "Validating"
	case ProtocolApplying:
		return "Applying"
	case ProtocolAwaitingConfirmation:
		return "AwaitingConfirmation"
	case ProtocolCommitted:
		return "Committed"
	case ProtocolRolledBack:
		return "RolledBack"
	case ProtocolFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

var protocolEdges = map[ProtocolState][]ProtocolState{
	ProtocolIdle:                 {ProtocolValidating},
	ProtocolValidating:           {ProtocolApplying, ProtocolIdle},
	ProtocolApplying:             {ProtocolAwaitingConfirmation, ProtocolFailed, ProtocolIdle},
	ProtocolAwaitingConfirmation: {ProtocolCommitted, ProtocolRolledBack},
	ProtocolCommitted:            {ProtocolIdle},
	ProtocolRolledBack:           {ProtocolIdle},
	ProtocolFailed:               {ProtocolIdle},
}

// ApplyResult describes how one apply call ended.
type ApplyResult struct {
	// State is the terminal state reached. Unchanged and rejected input
	// report ProtocolIdle.
	State ProtocolState
	// Old is the frequency read right before the write. Zero if the read
	// never succeeded.
	Old domain.Frequency
	New domain.Frequency
	// Unchanged is set when New equalled Old and nothing was written.
	Unchanged    bool
	Confirmation domain.ConfirmationResult
	// Current is the last known hardware frequency.
	Current domain.Frequency
	// RollbackErr is set when restoring Old failed. It wraps domain.ErrRollback.
	RollbackErr error
	// SaveErr is set when a confirmed frequency could not be persisted.
	SaveErr error
}

// ProtocolOption configures optional behavior of a Protocol.
type ProtocolOption func(*Protocol)

// WithConfirmTimeout overrides DefaultConfirmTimeout.
func WithConfirmTimeout(d time.Duration) ProtocolOption {
	return func(p *Protocol) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProtocolEvents registers an emitter for state changes.
func WithProtocolEvents(e EventEmitter) ProtocolOption {
	return func(p *Protocol) { p.emitter = e }
}

// Protocol applies a frequency and keeps it only if the user confirms it in
// time. Every path that wrote to the driver ends with the driver at the new
// value (Committed) or with one attempt to restore the old value.
type Protocol struct {
	openDriver ports.DriverFactory
	store      ports.ConfigStore
	prompt     ports.ConfirmationPrompt
	logger     ports.Logger
	timeout    time.Duration
	emitter    EventEmitter
	machine    *machine[ProtocolState]
	busy       atomic.Bool
}

// NewProtocol creates an idle protocol.
func NewProtocol(
	openDriver ports.DriverFactory,
	store ports.ConfigStore,
	prompt ports.ConfirmationPrompt,
	logger ports.Logger,
	opts ...ProtocolOption,
) *Protocol {
	p := &Protocol{
		openDriver: openDriver,
		store:      store,
		prompt:     prompt,
		logger:     logger,
		timeout:    DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.machine = newMachine("protocol", ProtocolIdle, protocolEdges, logger, p.emitter)
	return p
}

// State returns the current protocol state.
func (p *Protocol) State() ProtocolState {
	return p.machine.State()
}

// Apply parses raw as a frequency and runs the protocol with it. Input that
// does not parse or is out of range returns an error before the driver is
// touched.
func (p *Protocol) Apply(ctx context.Context, raw string) (ApplyResult, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return ApplyResult{State: p.State()}, domain.ErrApplyInProgress
	}
	defer p.busy.Store(false)

	p.to(ProtocolValidating, "apply requested")
	f, err := domain.ParseFrequency(raw)
	if err == nil {
		err = f.Validate()
	}
	if err != nil {
		p.to(ProtocolIdle, "input rejected")
		p.logger.Warn("input rejected", ports.Tag("validate"), ports.String("input", raw), ports.Err(err))
		return ApplyResult{State: ProtocolIdle}, err
	}
	return p.run(ctx, f)
}

// ApplyFrequency runs the protocol with an already parsed frequency.
func (p *Protocol) ApplyFrequency(ctx context.Context, f domain.Frequency) (ApplyResult, error) {
	return p.Apply(ctx, fmt.Sprint(int(f)))
}

func (p *Protocol) run(ctx context.Context, f domain.Frequency) (ApplyResult, error) {
	res := ApplyResult{New: f}

	p.to(ProtocolApplying, "input valid")
	var drv ports.Driver
	err := guarded(func() (err error) {
		drv, err = p.openDriver(ctx)
		return err
	})
	if err != nil {
		return p.fail(ctx, res, nil, fmt.Errorf("open driver: %w", err))
	}

	// The rollback target must be what the hardware runs right now, never
	// the stored configuration.
	var reading domain.Reading
	err = guarded(func() (err error) {
		reading, err = drv.Read(ctx)
		return err
	})
	if err != nil {
		return p.fail(ctx, res, nil, fmt.Errorf("read current: %w", err))
	}
	res.Old = reading.Current
	res.Current = reading.Current

	if f == reading.Current {
		p.to(ProtocolIdle, "unchanged")
		p.logger.Info("frequency unchanged", ports.Tag("apply"), ports.Int("hz", int(f)))
		res.State = ProtocolIdle
		res.Unchanged = true
		return res, nil
	}

	p.logger.Info("writing frequency",
		ports.Tag("apply"),
		ports.Int("old_hz", int(res.Old)),
		ports.Int("new_hz", int(f)),
	)
	if err := guarded(func() error { return drv.Write(ctx, f) }); err != nil {
		return p.fail(ctx, res, drv, fmt.Errorf("apply %d Hz: %w", int(f), err))
	}
	res.Current = f

	p.to(ProtocolAwaitingConfirmation, "written")
	answer, err := p.prompt.Show(ctx, p.timeout)
	if err != nil {
		p.logger.Warn("confirmation failed, reverting", ports.Tag("confirm"), ports.Err(err))
		answer = domain.ResultRejected
	}
	if !answer.Terminal() {
		answer = domain.ResultRejected
	}
	res.Confirmation = answer

	if answer == domain.ResultConfirmed {
		return p.commit(ctx, res, drv), nil
	}
	return p.rollback(ctx, res, drv), nil
}

func (p *Protocol) commit(ctx context.Context, res ApplyResult, drv ports.Driver) ApplyResult {
	p.to(ProtocolCommitted, "confirmed")
	res.State = ProtocolCommitted
	if err := p.store.Save(ctx, res.New); err != nil {
		res.SaveErr = err
		p.logger.Warn("frequency kept but not saved", ports.Tag("config"), ports.Err(err))
	}

	var reading domain.Reading
	err := guarded(func() (err error) {
		reading, err = drv.Read(ctx)
		return err
	})
	if err == nil {
		res.Current = reading.Current
	}
	p.logger.Info("frequency confirmed", ports.Tag("commit"), ports.Int("hz", int(res.New)))
	p.to(ProtocolIdle, "done")
	return res
}

func (p *Protocol) rollback(ctx context.Context, res ApplyResult, drv ports.Driver) ApplyResult {
	p.to(ProtocolRolledBack, res.Confirmation.String())
	res.State = ProtocolRolledBack
	p.logger.Info("not confirmed, restoring",
		ports.Tag("rollback"),
		ports.String("result", res.Confirmation.String()),
		ports.Int("hz", int(res.Old)),
	)
	if err := p.restore(ctx, drv, res.Old); err != nil {
		res.RollbackErr = err
	} else {
		res.Current = res.Old
	}
	p.to(ProtocolIdle, "done")
	return res
}

// fail ends the apply in Failed. drv is non-nil only when the old value was
// captured, in which case one restore is attempted.
func (p *Protocol) fail(ctx context.Context, res ApplyResult, drv ports.Driver, cause error) (ApplyResult, error) {
	p.to(ProtocolFailed, "driver error")
	res.State = ProtocolFailed
	p.logger.Error("apply failed", ports.Tag("apply"), ports.Err(cause))
	if drv != nil {
		if err := p.restore(ctx, drv, res.Old); err != nil {
			res.RollbackErr = err
		} else {
			res.Current = res.Old
		}
	}
	p.to(ProtocolIdle, "done")
	return res, cause
}

// restore writes old once. It runs even when ctx was cancelled while the
// prompt was open.
func (p *Protocol) restore(ctx context.Context, drv ports.Driver, old domain.Frequency) error {
	ctx = context.WithoutCancel(ctx)
	err := guarded(func() error { return drv.Write(ctx, old) })
	if err != nil {
		p.logger.Error("restore failed, set the frequency manually",
			ports.Tag("rollback"),
			ports.Int("hz", int(old)),
			ports.Err(err),
		)
		return fmt.Errorf("%w: restore %d Hz: %w", domain.ErrRollback, int(old), err)
	}
	return nil
}

func (p *Protocol) to(s ProtocolState, reason string) {
	if err := p.machine.TransitionTo(s, reason); err != nil {
		p.logger.Error("state machine", ports.Tag("protocol"), ports.Err(err))
	}
}

// guarded turns a panic inside a driver call into an error.
func guarded(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: driver panic: %v", domain.ErrDriverUnavailable, r)
		}
	}()
	return fn()
}
