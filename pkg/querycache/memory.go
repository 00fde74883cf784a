package querycache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps entries in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*Entry),
		now:     time.Now,
	}
}

// WithClock overrides the store clock
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

// Get returns the live entry for sql
func (m *MemoryStore) Get(_ context.Context, sql string) (*Entry, error) {
	m.mu.RLock()
	entry, ok := m.entries[sql]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if entry.Expired(m.now()) {
		m.mu.Lock()
		// re-check, a concurrent miss may have refreshed it
		if current, exists := m.entries[sql]; exists && current == entry {
			delete(m.entries, sql)
		}
		m.mu.Unlock()

		return nil, nil
	}

	return entry, nil
}

// Set stores entry, stamping it with the store clock
func (m *MemoryStore) Set(_ context.Context, entry *Entry) error {
	entry.StoredAt = m.now()

	m.mu.Lock()
	m.entries[entry.SQL] = entry
	m.mu.Unlock()

	return nil
}

// Delete removes the entry for sql
func (m *MemoryStore) Delete(_ context.Context, sql string) error {
	m.mu.Lock()
	delete(m.entries, sql)
	m.mu.Unlock()

	return nil
}

// Purge removes every entry
func (m *MemoryStore) Purge(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := len(m.entries)
	m.entries = make(map[string]*Entry)

	return count, nil
}

// Len returns the number of stored entries, expired ones included
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}
