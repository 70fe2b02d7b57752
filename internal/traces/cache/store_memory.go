package cache

import (
	"context"
	"sync"
	"time"

	"eudrgate/internal/domain"
	"eudrgate/internal/traces"
)

type memoryEntry struct {
	result    traces.LookupResult
	expiresAt time.Time
}

// InMemoryStore is a process-local lookup cache. Entries are evicted lazily
// on read.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.StatementKey]memoryEntry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[domain.StatementKey]memoryEntry)}
}

func (s *InMemoryStore) Get(_ context.Context, key domain.StatementKey) (traces.LookupResult, bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return traces.LookupResult{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return traces.LookupResult{}, false, nil
	}
	return entry.result, true, nil
}

func (s *InMemoryStore) Set(_ context.Context, key domain.StatementKey, result traces.LookupResult, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memoryEntry{result: result, expiresAt: time.Now().Add(ttl)}
	return nil
}
