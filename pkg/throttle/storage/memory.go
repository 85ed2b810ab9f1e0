package storage

import (
	"context"
	"sync"
)

// MemoryBackend implements Backend using in-memory storage.
// This is the default backend and provides fast access with no persistence.
// All data is lost when the process exits.
type MemoryBackend struct {
	records map[string]*NodeRecord
	mu      sync.RWMutex
}

// NewMemoryBackend creates a new in-memory storage backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		records: make(map[string]*NodeRecord),
	}
}

// Save persists the record for a node, replacing any existing record.
func (m *MemoryBackend) Save(ctx context.Context, record *NodeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *record
	m.records[record.NodeID] = &cp
	return nil
}

// Load retrieves the record for a node, or nil if none exists.
func (m *MemoryBackend) Load(ctx context.Context, nodeID string) (*NodeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[nodeID]
	if !ok {
		return nil, nil
	}
	cp := *record
	return &cp, nil
}

// List returns all stored node records.
func (m *MemoryBackend) List(ctx context.Context) ([]*NodeRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*NodeRecord, 0, len(m.records))
	for _, record := range m.records {
		cp := *record
		records = append(records, &cp)
	}
	return records, nil
}

// Delete removes the record for a node.
func (m *MemoryBackend) Delete(ctx context.Context, nodeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, nodeID)
	return nil
}

// Close releases resources. No-op for the memory backend.
func (m *MemoryBackend) Close() error {
	return nil
}
