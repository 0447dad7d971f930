package memory

import (
	"context"
	"sort"
	"sync"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// TokenRecordStore is an in-memory implementation of storage.TokenRecordStore.
type TokenRecordStore struct {
	mu   sync.RWMutex
	data map[domain.Network]map[string]domain.TokenRecord
}

// NewTokenRecordStore creates a new in-memory token record store.
func NewTokenRecordStore() *TokenRecordStore {
	return &TokenRecordStore{
		data: make(map[domain.Network]map[string]domain.TokenRecord),
	}
}

// Compile-time interface check.
var _ storage.TokenRecordStore = (*TokenRecordStore)(nil)

// Upsert writes records, replacing existing rows with the same address.
func (s *TokenRecordStore) Upsert(_ context.Context, network domain.Network, records []domain.TokenRecord) error {
	if !network.Valid() {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	byAddr := s.data[network]
	if byAddr == nil {
		byAddr = make(map[string]domain.TokenRecord, len(records))
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

// GetByNetwork retrieves all records, ordered by liquidity descending.
func (s *TokenRecordStore) GetByNetwork(_ context.Context, network domain.Network) ([]domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.TokenRecord
	for _, rec := range s.data[network] {
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].LiquidityQuote > result[j].LiquidityQuote
	})
	return result, nil
}

// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
func (s *TokenRecordStore) GetByAddress(_ context.Context, network domain.Network, address string) (*domain.TokenRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.data[network][address]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := rec
	return &out, nil
}
