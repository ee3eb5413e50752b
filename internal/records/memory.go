package records

import (
	"sync"

	"listify/internal/listify"
)

// MemoryRecordStore is an in-memory implementation of listify.RecordStore.
// Records live only as long as the process, which makes it useful for tests
// and throwaway sessions. Safe for concurrent use.
type MemoryRecordStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewMemoryRecordStore creates an empty in-memory record store.
func NewMemoryRecordStore() *MemoryRecordStore {
	return &MemoryRecordStore{records: make(map[string][]byte)}
}

func (m *MemoryRecordStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.records[key]
	if !ok {
		return nil, listify.ErrRecordNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryRecordStore) Put(key string, data []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[key] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryRecordStore) Close() error {
	return nil
}

var _ listify.RecordStore = (*MemoryRecordStore)(nil)
