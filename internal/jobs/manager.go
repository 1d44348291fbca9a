package jobs

import (
	"errors"
	"sync"

	"dnx-transcoder/internal/domain"
)

// ErrBatchAlreadyRunning is returned when starting a second active batch.
var ErrBatchAlreadyRunning = errors.New("batch already running")

// Manager tracks the single allowed active batch and its counters.
type Manager struct {
	mu      sync.RWMutex
	current domain.Batch
}

// NewManager creates a manager in idle state.
func NewManager() *Manager {
	return &Manager{
		current: domain.Batch{
			Status: domain.BatchStatusIdle,
		},
	}
}

// Begin registers a new active batch of total jobs.
func (m *Manager) Begin(batchID string, total int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status == domain.BatchStatusRunning {
		return ErrBatchAlreadyRunning
	}

	m.current = domain.Batch{
		ID:     batchID,
		Status: domain.BatchStatusRunning,
		Total:  total,
	}
	return nil
}

// RecordOutcome counts one terminal job of the active batch.
func (m *Manager) RecordOutcome(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status != domain.BatchStatusRunning {
		return
	}
	if failed {
		m.current.Failed++
		return
	}
	m.current.Completed++
}

// Finish marks the active batch done.
func (m *Manager) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current.Status == domain.BatchStatusRunning {
		m.current.Status = domain.BatchStatusDone
	}
}

// Current returns a snapshot of the current batch.
func (m *Manager) Current() domain.Batch {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// IsRunning reports whether a batch is active.
func (m *Manager) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.Status == domain.BatchStatusRunning
}
