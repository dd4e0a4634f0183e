package observability

import (
	"sync"
	"time"
)

// SweepMetrics provides basic in-memory counters for the escalation sweep.
type SweepMetrics struct {
	mu               sync.Mutex
	sweeps           int64
	escalations      int64
	unassignedAlerts int64
	failures         int64
	lastSweep        time.Duration
}

// NewSweepMetrics initializes metrics storage.
func NewSweepMetrics() *SweepMetrics {
	return &SweepMetrics{}
}

// RecordSweep counts one completed sweep and its duration.
func (m *SweepMetrics) RecordSweep(duration time.Duration) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweeps++
	m.lastSweep = duration
}

// RecordEscalation counts one tier advance.
func (m *SweepMetrics) RecordEscalation() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.escalations++
}

// RecordUnassignedAlert counts one watchdog alert.
func (m *SweepMetrics) RecordUnassignedAlert() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unassignedAlerts++
}

// RecordFailure counts one per-ticket processing failure.
func (m *SweepMetrics) RecordFailure() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
}

// Snapshot returns current counter values.
func (m *SweepMetrics) Snapshot() (sweeps, escalations, alerts, failures int64) {
	if m == nil {
		return 0, 0, 0, 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweeps, m.escalations, m.unassignedAlerts, m.failures
}
