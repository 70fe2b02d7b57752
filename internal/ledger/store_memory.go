package ledger

import (
	"context"
	"sync"

	"eudrgate/internal/domain"
	"eudrgate/pkg/platform/sentinel"
)

// InMemoryStore keeps the ledger in process memory. Used by tests and as the
// reference implementation of the Store contract.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []domain.IngestionRecord
	index   map[string]int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{index: make(map[string]int)}
}

func (s *InMemoryStore) Append(_ context.Context, record domain.IngestionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.index[record.InternalReferenceNumber]; exists {
		return sentinel.ErrConflict
	}
	s.index[record.InternalReferenceNumber] = len(s.records)
	s.records = append(s.records, cloneRecord(record))
	return nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]domain.IngestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.IngestionRecord, len(s.records))
	for i, r := range s.records {
		out[i] = cloneRecord(r)
	}
	return out, nil
}

func (s *InMemoryStore) GetByKey(_ context.Context, internalReferenceNumber string) (domain.IngestionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[internalReferenceNumber]
	if !ok {
		return domain.IngestionRecord{}, sentinel.ErrNotFound
	}
	return cloneRecord(s.records[i]), nil
}

func (s *InMemoryStore) UpdateTraderStatement(_ context.Context, internalReferenceNumber string, patch domain.TraderStatementPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[internalReferenceNumber]
	if !ok {
		return sentinel.ErrNotFound
	}
	applyPatch(&s.records[i], patch)
	return nil
}

func (s *InMemoryStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	s.index = make(map[string]int)
	return nil
}
