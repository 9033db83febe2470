package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// stubObserver returns a canned result
type stubObserver struct {
	id     string
	name   string
	unit   string
	result Result
	err    error
	panics bool
	calls  atomic.Int32

	mu       sync.Mutex
	settings map[string]string
}

func newStub(id string, result Result) *stubObserver {
	return &stubObserver{id: id, name: "Stub " + id, result: result}
}

func (s *stubObserver) Name() string { return s.name }
func (s *stubObserver) ID() string   { return s.id }
func (s *stubObserver) Unit() string { return s.unit }

func (s *stubObserver) HandleConfiguration(key, value string) (bool, error) {
	if key != s.id+".OPT" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settings == nil {
		s.settings = make(map[string]string)
	}
	s.settings[key] = value
	return true, nil
}

func (s *stubObserver) Check(ctx context.Context) (Result, error) {
	s.calls.Add(1)
	if s.panics {
		panic("probe exploded")
	}
	return s.result, s.err
}
