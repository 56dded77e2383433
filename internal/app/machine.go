package app

import (
	"fmt"
	"sync"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// state is implemented by the watchdog and protocol state enums.
type state interface {
	comparable
	String() string
}

// EventEmitter is called when a state machine changes state.
type EventEmitter interface {
	OnStateChange(machine, previous, current, reason string)
}

// machine is a state machine that only moves along declared edges.
type machine[S state] struct {
	mu      sync.RWMutex
	name    string
	state   S
	edges   map[S][]S
	logger  ports.Logger
	emitter EventEmitter
}

func newMachine[S state](name string, initial S, edges map[S][]S, logger ports.Logger, emitter EventEmitter) *machine[S] {
	return &machine[S]{
		name:    name,
		state:   initial,
		edges:   edges,
		logger:  logger,
		emitter: emitter,
	}
}

// State returns the current state.
func (m *machine[S]) State() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// TransitionTo moves to next if the current state has that edge.
// The state is left unchanged on error.
func (m *machine[S]) TransitionTo(next S, reason string) error {
	m.mu.Lock()
	prev := m.state
	if !m.allowed(prev, next) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s %s -> %s", domain.ErrInvalidTransition, m.name, prev, next)
	}
	m.state = next
	m.mu.Unlock()

	// Emit event outside of lock
	if m.emitter != nil {
		m.emitter.OnStateChange(m.name, prev.String(), next.String(), reason)
	}

	m.logger.Debug("state transition",
		ports.Tag(m.name),
		ports.String("from", prev.String()),
		ports.String("to", next.String()),
		ports.String("reason", reason),
	)
	return nil
}

func (m *machine[S]) allowed(from, to S) bool {
	for _, s := range m.edges[from] {
		if s == to {
			return true
		}
	}
	return false
}
