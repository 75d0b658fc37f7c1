package store

import (
	"context"
	"sort"
	"sync"

	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// Memory is an in-process cache store used in tests and as a fallback when no
// backend is configured. Safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]cache.Entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]cache.Entry)}
}

func (m *Memory) Get(_ context.Context, key string) (cache.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[key]
	if !ok {
		return cache.Entry{}, models.ErrCacheMiss
	}
	return entry, nil
}

func (m *Memory) Upsert(_ context.Context, entry cache.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.QueryKey] = entry
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *Memory) ScanOldest(_ context.Context, afterCompletedAt int64, limit int) ([]cache.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var entries []cache.Entry
	for _, entry := range m.entries {
		if entry.CompletedAt > afterCompletedAt {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CompletedAt < entries[j].CompletedAt })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Len reports the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
