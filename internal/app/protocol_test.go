package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

func newTestProtocol(drv *fakeDriver, store *fakeStore, prompt *fakePrompt, opts ...ProtocolOption) (*Protocol, *mockEmitter) {
	emitter := &mockEmitter{}
	opts = append([]ProtocolOption{WithProtocolEvents(emitter)}, opts...)
	return NewProtocol(drv.factory(), store, prompt, &mockLogger{}, opts...), emitter
}

func TestProtocol_Confirmed(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240, BaseClock: 3000}}
	store := newFakeStore(1250)
	prompt := &fakePrompt{result: domain.ResultConfirmed}
	p, emitter := newTestProtocol(drv, store, prompt)

	res, err := p.Apply(context.Background(), "2000")
	require.NoError(t, err)

	assert.Equal(t, ProtocolCommitted, res.State)
	assert.Equal(t, domain.Frequency(240), res.Old)
	assert.Equal(t, domain.Frequency(2000), res.New)
	assert.Equal(t, domain.Frequency(2000), res.Current)
	assert.Equal(t, domain.ResultConfirmed, res.Confirmation)
	assert.Equal(t, []domain.Frequency{2000}, drv.Writes(), "no rollback write")
	assert.Equal(t, []domain.Frequency{2000}, store.Saves())
	assert.Equal(t, ProtocolIdle, p.State())
	assert.Equal(t,
		[]string{"Idle", "Validating", "Applying", "AwaitingConfirmation", "Committed", "Idle"},
		emitter.Path())
}

func TestProtocol_NotConfirmedRollsBack(t *testing.T) {
	tests := []struct {
		name   string
		result domain.ConfirmationResult
		err    error
	}{
		{"timed out", domain.ResultTimedOut, nil},
		{"rejected", domain.ResultRejected, nil},
		{"prompt error", domain.ResultPending, errors.New("no display")},
		{"pending answer", domain.ResultPending, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := &fakeDriver{reading: domain.Reading{Current: 240}}
			store := newFakeStore(1250)
			p, _ := newTestProtocol(drv, store, &fakePrompt{result: tt.result, err: tt.err})

			res, err := p.Apply(context.Background(), "2000")
			require.NoError(t, err)

			assert.Equal(t, ProtocolRolledBack, res.State)
			assert.Equal(t, []domain.Frequency{2000, 240}, drv.Writes(), "exactly one rollback write to the old value")
			assert.Empty(t, store.Saves())
			assert.Equal(t, domain.Frequency(240), res.Current)
			assert.NoError(t, res.RollbackErr)
			assert.Equal(t, ProtocolIdle, p.State())
		})
	}
}

func TestProtocol_UnchangedSkipsWriteAndPrompt(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 1250}}
	store := newFakeStore(1250)
	prompt := &fakePrompt{result: domain.ResultConfirmed}
	p, emitter := newTestProtocol(drv, store, prompt)

	res, err := p.Apply(context.Background(), "1250 Hz")
	require.NoError(t, err)

	assert.Equal(t, ProtocolIdle, res.State)
	assert.True(t, res.Unchanged)
	assert.Empty(t, drv.Writes())
	assert.Zero(t, prompt.Calls(), "no confirmation session")
	assert.Empty(t, store.Saves())
	assert.Equal(t, []string{"Idle", "Validating", "Applying", "Idle"}, emitter.Path())
}

func TestProtocol_InvalidInputNeverTouchesDriver(t *testing.T) {
	tests := []struct {
		input   string
		wantErr error
	}{
		{"abc", domain.ErrInvalidFrequency},
		{"", domain.ErrInvalidFrequency},
		{"12.5", domain.ErrInvalidFrequency},
		{"199", domain.ErrOutOfRange},
		{"4001", domain.ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			opened := false
			open := func(ctx context.Context) (ports.Driver, error) {
				opened = true
				return &fakeDriver{}, nil
			}
			prompt := &fakePrompt{}
			p := NewProtocol(open, newFakeStore(1250), prompt, &mockLogger{})

			res, err := p.Apply(context.Background(), tt.input)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, ProtocolIdle, res.State)
			assert.False(t, opened, "driver opened for rejected input")
			assert.Zero(t, prompt.Calls())
			assert.Equal(t, ProtocolIdle, p.State())
		})
	}
}

func TestProtocol_WriteFailureRestoresOld(t *testing.T) {
	cause := &domain.DriverError{Op: "set", Code: 0x2}
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	drv.failWrite = func(f domain.Frequency) error {
		if f == 2000 {
			return cause
		}
		return nil
	}
	prompt := &fakePrompt{}
	p, emitter := newTestProtocol(drv, newFakeStore(1250), prompt)

	res, err := p.Apply(context.Background(), "2000")

	require.ErrorIs(t, err, domain.ErrDriverUnavailable)
	assert.Equal(t, ProtocolFailed, res.State)
	assert.Equal(t, []domain.Frequency{240}, drv.Writes(), "best-effort restore of the captured value")
	assert.Zero(t, prompt.Calls())
	assert.Contains(t, emitter.Path(), "Failed")
	assert.Equal(t, ProtocolIdle, p.State())
}

func TestProtocol_ReadFailureWritesNothing(t *testing.T) {
	drv := &fakeDriver{readErr: errDriverDown}
	p, _ := newTestProtocol(drv, newFakeStore(1250), &fakePrompt{})

	res, err := p.Apply(context.Background(), "2000")

	require.ErrorIs(t, err, errDriverDown)
	assert.Equal(t, ProtocolFailed, res.State)
	assert.Empty(t, drv.Writes())
	assert.NoError(t, res.RollbackErr)
}

func TestProtocol_OpenFailure(t *testing.T) {
	open := func(ctx context.Context) (ports.Driver, error) { return nil, domain.ErrDriverUnavailable }
	p := NewProtocol(open, newFakeStore(1250), &fakePrompt{}, &mockLogger{})

	res, err := p.Apply(context.Background(), "2000")

	require.ErrorIs(t, err, domain.ErrDriverUnavailable)
	assert.Equal(t, ProtocolFailed, res.State)
}

func TestProtocol_RollbackFailureIsAWarning(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	drv.failWrite = func(f domain.Frequency) error {
		if f == 240 {
			return errDriverDown
		}
		return nil
	}
	p, _ := newTestProtocol(drv, newFakeStore(1250), &fakePrompt{result: domain.ResultTimedOut})

	res, err := p.Apply(context.Background(), "2000")

	require.NoError(t, err)
	assert.Equal(t, ProtocolRolledBack, res.State)
	assert.ErrorIs(t, res.RollbackErr, domain.ErrRollback)
	assert.ErrorIs(t, res.RollbackErr, errDriverDown)
	assert.Equal(t, domain.Frequency(2000), res.Current, "hardware still at the new value")
}

func TestProtocol_SaveFailureKeepsCommit(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	store := newFakeStore(1250)
	store.saveErr = errors.New("read-only file system")
	p, _ := newTestProtocol(drv, store, &fakePrompt{result: domain.ResultConfirmed})

	res, err := p.Apply(context.Background(), "2000")

	require.NoError(t, err)
	assert.Equal(t, ProtocolCommitted, res.State)
	assert.Error(t, res.SaveErr)
	assert.Equal(t, []domain.Frequency{2000}, drv.Writes())
}

func TestProtocol_CancelledPromptStillRestores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	prompt := &fakePrompt{result: domain.ResultRejected, err: context.Canceled, onShow: cancel}
	p, _ := newTestProtocol(drv, newFakeStore(1250), prompt)

	res, err := p.Apply(ctx, "2000")

	require.NoError(t, err)
	assert.Equal(t, ProtocolRolledBack, res.State)
	assert.Equal(t, []domain.Frequency{2000, 240}, drv.Writes())
}

func TestProtocol_PassesTimeoutToPrompt(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	prompt := &fakePrompt{result: domain.ResultConfirmed}
	p, _ := newTestProtocol(drv, newFakeStore(1250), prompt, WithConfirmTimeout(30*time.Second))

	_, err := p.ApplyFrequency(context.Background(), 2000)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{30 * time.Second}, prompt.timeouts)
}

func TestProtocol_DefaultTimeout(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	prompt := &fakePrompt{result: domain.ResultConfirmed}
	p, _ := newTestProtocol(drv, newFakeStore(1250), prompt, WithConfirmTimeout(0))

	_, err := p.Apply(context.Background(), "2000")
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{DefaultConfirmTimeout}, prompt.timeouts)
}

func TestProtocol_RejectsConcurrentApply(t *testing.T) {
	drv := &fakeDriver{reading: domain.Reading{Current: 240}}
	entered := make(chan struct{})
	release := make(chan struct{})
	prompt := &fakePrompt{result: domain.ResultConfirmed, onShow: func() {
		close(entered)
		<-release
	}}
	p, _ := newTestProtocol(drv, newFakeStore(1250), prompt)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = p.Apply(context.Background(), "2000")
	}()

	<-entered
	res, err := p.Apply(context.Background(), "3000")
	assert.ErrorIs(t, err, domain.ErrApplyInProgress)
	assert.Equal(t, ProtocolAwaitingConfirmation, res.State)

	close(release)
	wg.Wait()
	assert.Equal(t, []domain.Frequency{2000}, drv.Writes())
}
