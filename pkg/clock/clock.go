package clock

import (
	"sync"
	"time"
)

// TimeSource is sampled once at the top of every tick
type TimeSource interface {
	Now() time.Time
}

// System provides the real time including the monotonic clock reading
type System struct{}

func NewSystem() *System {
	return &System{}
}

func (s *System) Now() time.Time {
	return time.Now()
}

// Mock provides a controllable time source, used by tests and the headless simulation
type Mock struct {
	mu      sync.RWMutex
	current time.Time
}

func NewMock(start time.Time) *Mock {
	return &Mock{current: start}
}

func (m *Mock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Mock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
}

// Advance moves the mocked time forward by d
func (m *Mock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
}
