package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bft-labs/pwmguard/internal/domain"
	"github.com/bft-labs/pwmguard/internal/ports"
)

// mockLogger implements ports.Logger and keeps the tags it saw.
type mockLogger struct {
	mu   sync.Mutex
	tags []string
}

func (m *mockLogger) record(fields []ports.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range fields {
		if f.Key == "tag" {
			m.tags = append(m.tags, f.Value.(string))
		}
	}
}

func (m *mockLogger) Debug(msg string, fields ...ports.Field) { m.record(fields) }
func (m *mockLogger) Info(msg string, fields ...ports.Field)  { m.record(fields) }
func (m *mockLogger) Warn(msg string, fields ...ports.Field)  { m.record(fields) }
func (m *mockLogger) Error(msg string, fields ...ports.Field) { m.record(fields) }

func (m *mockLogger) Tags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.tags...)
}

func (m *mockLogger) Saw(tag string) bool {
	for _, t := range m.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

// mockEmitter tracks state change events for testing.
type mockEmitter struct {
	mu     sync.Mutex
	events []stateChangeEvent
}

type stateChangeEvent struct {
	machine  string
	previous string
	current  string
	reason   string
}

func (m *mockEmitter) OnStateChange(machine, previous, current, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, stateChangeEvent{machine, previous, current, reason})
}

func (m *mockEmitter) Events() []stateChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]stateChangeEvent{}, m.events...)
}

// Path returns the visited states, starting with the first previous state.
func (m *mockEmitter) Path() []string {
	events := m.Events()
	if len(events) == 0 {
		return nil
	}
	path := []string{events[0].previous}
	for _, e := range events {
		path = append(path, e.current)
	}
	return path
}

var errDriverDown = errors.New("driver not loaded")

// fakeDriver records every write and can fail reads or writes.
type fakeDriver struct {
	mu        sync.Mutex
	reading   domain.Reading
	readErr   error
	writeErr  error
	failWrite func(f domain.Frequency) error
	panicRead bool
	reads     int
	writes    []domain.Frequency
}

func (d *fakeDriver) Read(ctx context.Context) (domain.Reading, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reads++
	if d.panicRead {
		panic("nil device handle")
	}
	if d.readErr != nil {
		return domain.Reading{}, d.readErr
	}
	return d.reading, nil
}

func (d *fakeDriver) Write(ctx context.Context, f domain.Frequency) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failWrite != nil {
		if err := d.failWrite(f); err != nil {
			return err
		}
	}
	if d.writeErr != nil {
		return d.writeErr
	}
	d.writes = append(d.writes, f)
	d.reading.Current = f
	return nil
}

func (d *fakeDriver) Writes() []domain.Frequency {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.Frequency{}, d.writes...)
}

func (d *fakeDriver) Reads() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.reads
}

func (d *fakeDriver) factory() ports.DriverFactory {
	return func(ctx context.Context) (ports.Driver, error) { return d, nil }
}

// fakeStore is an in-memory ConfigStore.
type fakeStore struct {
	mu      sync.Mutex
	cfg     domain.Configuration
	saveErr error
	saves   []domain.Frequency
}

func newFakeStore(f domain.Frequency) *fakeStore {
	return &fakeStore{cfg: domain.Configuration{LastFrequency: f}}
}

func (s *fakeStore) Load(ctx context.Context) domain.Configuration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *fakeStore) Save(ctx context.Context, f domain.Frequency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saves = append(s.saves, f)
	s.cfg.LastFrequency = f
	return nil
}

func (s *fakeStore) Saves() []domain.Frequency {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Frequency{}, s.saves...)
}

// fakeSpawner records requested successor indices.
type fakeSpawner struct {
	mu    sync.Mutex
	err   error
	calls []int
}

func (s *fakeSpawner) Spawn(ctx context.Context, attempt int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, attempt)
	return s.err
}

func (s *fakeSpawner) Calls() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int{}, s.calls...)
}

// fakePrompt answers with a fixed result.
type fakePrompt struct {
	mu       sync.Mutex
	result   domain.ConfirmationResult
	err      error
	onShow   func()
	timeouts []time.Duration
}

func (p *fakePrompt) Show(ctx context.Context, timeout time.Duration) (domain.ConfirmationResult, error) {
	p.mu.Lock()
	p.timeouts = append(p.timeouts, timeout)
	onShow := p.onShow
	p.mu.Unlock()
	if onShow != nil {
		onShow()
	}
	return p.result, p.err
}

func (p *fakePrompt) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timeouts)
}

// recordingSleep returns immediately and remembers requested durations.
type recordingSleep struct {
	mu        sync.Mutex
	durations []time.Duration
	err       error
}

func (r *recordingSleep) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.durations = append(r.durations, d)
	return r.err
}
