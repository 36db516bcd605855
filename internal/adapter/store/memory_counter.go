package store

import (
	"context"
	"sync"
)

// MemoryCounter is the in-process UsageCounter used when no Redis is configured.
type MemoryCounter struct {
	mu      sync.RWMutex
	devices map[string]int64
	total   int64
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{devices: make(map[string]int64)}
}

func (m *MemoryCounter) Increment(_ context.Context, deviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.devices[deviceID]++
	m.total++
	return nil
}

func (m *MemoryCounter) Count(_ context.Context, deviceID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.devices[deviceID], nil
}

func (m *MemoryCounter) Total(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total, nil
}
