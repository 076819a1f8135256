package store

import (
	"context"
	"encoding/json"
	"sync"
)

// Memory is an in-process Repository. It is the default driver and the one
// the test suite runs against.
type Memory struct {
	mu          sync.RWMutex
	collections map[string][]json.RawMessage
}

func NewMemory() *Memory {
	return &Memory{collections: make(map[string][]json.RawMessage)}
}

func (m *Memory) LoadAll(_ context.Context, collection string) ([]json.RawMessage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := m.collections[collection]
	out := make([]json.RawMessage, len(records))
	copy(out, records)
	return out, nil
}

func (m *Memory) SaveAll(_ context.Context, collection string, records []json.RawMessage) error {
	stored := make([]json.RawMessage, len(records))
	copy(stored, records)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[collection] = stored
	return nil
}
