package memory

import (
	"context"
	"sort"
	"sync"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// PairRecordStore is an in-memory implementation of storage.PairRecordStore.
type PairRecordStore struct {
	mu   sync.RWMutex
	data map[domain.Network]map[string]domain.PairRecord
}

// NewPairRecordStore creates a new in-memory pair record store.
func NewPairRecordStore() *PairRecordStore {
	return &PairRecordStore{
		data: make(map[domain.Network]map[string]domain.PairRecord),
	}
}

// Compile-time interface check.
var _ storage.PairRecordStore = (*PairRecordStore)(nil)

// Upsert writes records, replacing existing rows with the same address.
func (s *PairRecordStore) Upsert(_ context.Context, network domain.Network, records []domain.PairRecord) error {
	if !network.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byAddr := s.data[network]
	if byAddr == nil {
		byAddr = make(map[string]domain.PairRecord, len(records))
		s.data[network] = byAddr
	}
	for _, rec := range records {
		if rec.Address == "" {
			return storage.ErrInvalidInput
		}
		byAddr[rec.Address] = rec
	}
	return nil
}

// GetByNetwork retrieves all records, ordered by tracked reserve descending.
func (s *PairRecordStore) GetByNetwork(_ context.Context, network domain.Network) ([]domain.PairRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.PairRecord
	for _, rec := range s.data[network] {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].TrackedReserveQuote > result[j].TrackedReserveQuote
	})
	return result, nil
}

// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
func (s *PairRecordStore) GetByAddress(_ context.Context, network domain.Network, address string) (*domain.PairRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[network][address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := rec
	return &out, nil
}
