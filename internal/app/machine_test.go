package app

import (
	"errors"
	"sync"
	"testing"

	"github.com/bft-labs/pwmguard/internal/domain"
)

func TestWatchdogState_String(t *testing.T) {
	tests := []struct {
		state WatchdogState
		want  string
	}{
		{WatchdogStarting, "Starting"},
		{WatchdogWaiting, "Waiting"},
		{WatchdogProbing, "Probing"},
		{WatchdogApplying, "Applying"},
		{WatchdogSucceeded, "Succeeded"},
		{WatchdogGaveUp, "GaveUp"},
		{WatchdogRespawning, "Respawning"},
		{WatchdogState(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("WatchdogState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestProtocolState_String(t *testing.T) {
	tests := []struct {
		state ProtocolState
		want  string
	}{
		{ProtocolIdle, "Idle"},
		{ProtocolValidating, "Validating"},
		{ProtocolApplying, "Applying"},
		{ProtocolAwaitingConfirmation, "AwaitingConfirmation"},
		{ProtocolCommitted, "Committed"},
		{ProtocolRolledBack, "RolledBack"},
		{ProtocolFailed, "Failed"},
		{ProtocolState(99), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("ProtocolState(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

func TestMachine_TransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from WatchdogState
		to   WatchdogState
	}{
		{"starting to waiting", WatchdogStarting, WatchdogWaiting},
		{"waiting to probing", WatchdogWaiting, WatchdogProbing},
		{"waiting interrupted", WatchdogWaiting, WatchdogGaveUp},
		{"probe failed", WatchdogProbing, WatchdogRespawning},
		{"probing to applying", WatchdogProbing, WatchdogApplying},
		{"applied", WatchdogApplying, WatchdogSucceeded},
		{"write failed", WatchdogApplying, WatchdogRespawning},
		{"exhausted", WatchdogApplying, WatchdogGaveUp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine("watchdog", WatchdogStarting, watchdogEdges, &mockLogger{}, nil)
			m.state = tt.from

			if err := m.TransitionTo(tt.to, "test"); err != nil {
				t.Fatalf("TransitionTo() error = %v", err)
			}
			if m.State() != tt.to {
				t.Errorf("state = %v after transition, want %v", m.State(), tt.to)
			}
		})
	}
}

func TestMachine_TransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		from ProtocolState
		to   ProtocolState
	}{
		{"idle to applying", ProtocolIdle, ProtocolApplying},
		{"validating to committed", ProtocolValidating, ProtocolCommitted},
		{"applying to committed", ProtocolApplying, ProtocolCommitted},
		{"awaiting to idle", ProtocolAwaitingConfirmation, ProtocolIdle},
		{"awaiting to failed", ProtocolAwaitingConfirmation, ProtocolFailed},
		{"committed to rolled back", ProtocolCommitted, ProtocolRolledBack},
		{"rolled back to committed", ProtocolRolledBack, ProtocolCommitted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine("protocol", ProtocolIdle, protocolEdges, &mockLogger{}, nil)
			m.state = tt.from

			err := m.TransitionTo(tt.to, "test")
			if !errors.Is(err, domain.ErrInvalidTransition) {
				t.Errorf("TransitionTo() error = %v, want ErrInvalidTransition", err)
			}
			// State should not change on invalid transition
			if m.State() != tt.from {
				t.Errorf("state changed to %v on invalid transition, want %v", m.State(), tt.from)
			}
		})
	}
}

func TestMachine_TerminalWatchdogStatesHaveNoEdges(t *testing.T) {
	for _, s := range []WatchdogState{WatchdogSucceeded, WatchdogGaveUp, WatchdogRespawning} {
		if !s.Terminal() {
			t.Errorf("%v.Terminal() = false", s)
		}
		if len(watchdogEdges[s]) != 0 {
			t.Errorf("terminal state %v has outgoing edges %v", s, watchdogEdges[s])
		}
	}
}

func TestMachine_TransitionTo_EmitsEvents(t *testing.T) {
	emitter := &mockEmitter{}
	m := newMachine("protocol", ProtocolIdle, protocolEdges, &mockLogger{}, emitter)

	_ = m.TransitionTo(ProtocolValidating, "apply")
	_ = m.TransitionTo(ProtocolApplying, "valid")
	_ = m.TransitionTo(ProtocolCommitted, "invalid")

	events := emitter.Events()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].machine != "protocol" || events[0].previous != "Idle" || events[0].current != "Validating" {
		t.Errorf("event 0 = %+v, want protocol Idle->Validating", events[0])
	}
	if events[1].previous != "Validating" || events[1].current != "Applying" || events[1].reason != "valid" {
		t.Errorf("event 1 = %+v, want Validating->Applying (valid)", events[1])
	}
}

func TestMachine_Concurrency(t *testing.T) {
	m := newMachine("protocol", ProtocolIdle, protocolEdges, &mockLogger{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.State()
			}
		}()
	}

	// Only one goroutine can win Idle -> Validating.
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.TransitionTo(ProtocolValidating, "test") == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	if wins != 1 {
		t.Errorf("%d goroutines moved Idle -> Validating, want 1", wins)
	}
}
