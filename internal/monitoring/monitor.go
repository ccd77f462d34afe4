package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps the lightweight in-process counters behind the ops status
// endpoint: how many orders, closes and expiries this process has handled
// since start. Prometheus metrics are served separately; this snapshot is
// what the staff dashboard polls.
type Monitor struct {
	mu        sync.RWMutex
	counters  map[string]int64
	startTime time.Time
}

// NewMonitor creates a new monitoring instance.
func NewMonitor() *Monitor {
	return &Monitor{
		counters:  make(map[string]int64),
		startTime: time.Now(),
	}
}

// Incr adds one to a named counter.
func (m *Monitor) Incr(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

// Count returns a specific counter value.
func (m *Monitor) Count(name string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[name]
}

// Snapshot returns all counters plus process uptime.
func (m *Monitor) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make(map[string]interface{}, len(m.counters)+1)
	for k, v := range m.counters {
		snapshot[k] = v
	}
	snapshot["uptime_seconds"] = time.Since(m.startTime).Seconds()
	return snapshot
}

// Reset clears all counters.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters = make(map[string]int64)
}
