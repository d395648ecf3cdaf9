package repository

import (
	"context"
	"sync"

	"SigTrail/internal/domain/models"
	"SigTrail/internal/domain/repository"
)

// MemorySignalStore is an in-memory Storage used by tests and the dev
// profile. Reads return copies so callers own their snapshots.
type MemorySignalStore struct {
	mu      sync.RWMutex
	signals map[string][]models.OriginSignal
	execs   map[string][]models.ExecutionRecord
}

func NewMemorySignalStore() *MemorySignalStore {
	return &MemorySignalStore{
		signals: make(map[string][]models.OriginSignal),
		execs:   make(map[string][]models.ExecutionRecord),
	}
}

func (m *MemorySignalStore) StoreSignal(_ context.Context, botID string, s *models.OriginSignal) error {
	m.mu.Lock()
	m.signals[botID] = append(m.signals[botID], *s)
	m.mu.Unlock()
	return nil
}

func (m *MemorySignalStore) StoreExecution(_ context.Context, botID string, e *models.ExecutionRecord) error {
	m.mu.Lock()
	m.execs[botID] = append(m.execs[botID], *e)
	m.mu.Unlock()
	return nil
}

func (m *MemorySignalStore) OriginSignals(_ context.Context, botID string) ([]models.OriginSignal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.OriginSignal, len(m.signals[botID]))
	copy(out, m.signals[botID])
	return out, nil
}

func (m *MemorySignalStore) ExecutionRecords(_ context.Context, botID string) ([]models.ExecutionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.ExecutionRecord, len(m.execs[botID]))
	copy(out, m.execs[botID])
	return out, nil
}

func (m *MemorySignalStore) Health(context.Context) error { return nil }

func (m *MemorySignalStore) Close() error { return nil }

var _ repository.Storage = (*MemorySignalStore)(nil)
