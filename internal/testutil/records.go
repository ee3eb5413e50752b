package testutil

import (
	"errors"
	"sync"

	"listify/internal/listify"
	"listify/internal/records"
)

// ErrInjected is returned by FaultyRecordStore when a fault is enabled.
var ErrInjected = errors.New("injected storage failure")

// NewTestRecordStore creates a new in-memory record store for testing.
func NewTestRecordStore() listify.RecordStore {
	return records.NewMemoryRecordStore()
}

// FaultyRecordStore wraps a RecordStore and fails reads or writes on demand.
type FaultyRecordStore struct {
	listify.RecordStore

	mu        sync.Mutex
	failGet   bool
	failPut   bool
	putCounts map[string]int
}

func NewFaultyRecordStore(inner listify.RecordStore) *FaultyRecordStore {
	return &FaultyRecordStore{RecordStore: inner, putCounts: make(map[string]int)}
}

// FailReads makes Get fail until called again with false.
func (f *FaultyRecordStore) FailReads(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = fail
}

// FailWrites makes Put fail until called again with false.
func (f *FaultyRecordStore) FailWrites(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = fail
}

// Puts returns the number of successful writes under key.
func (f *FaultyRecordStore) Puts(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putCounts[key]
}

func (f *FaultyRecordStore) Get(key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.RecordStore.Get(key)
}

func (f *FaultyRecordStore) Put(key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPut {
		return ErrInjected
	}
	if err := f.RecordStore.Put(key, data); err != nil {
		return err
	}
	f.putCounts[key]++
	return nil
}
