package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
type CandleStore struct {
	mu   sync.RWMutex
	data map[string]map[int64]domain.CandlePoint // series key -> timestamp -> candle
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{
		data: make(map[string]map[int64]domain.CandlePoint),
	}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// candleKey generates a unique key for one candle series.
func candleKey(network domain.Network, pairID string, window domain.Window, side int) string {
	return fmt.Sprintf("%s|%s|%s|%d", network, pairID, window, side)
}

// InsertBulk adds candles for one pair side and window. Candles with an
// already-stored timestamp replace the previous value.
func (s *CandleStore) InsertBulk(_ context.Context, network domain.Network, pairID string, window domain.Window, side int, candles []domain.CandlePoint) error {
	if pairID == "" || side < 0 || side > 1 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := candleKey(network, pairID, window, side)
	series := s.data[key]
	if series == nil {
		series = make(map[int64]domain.CandlePoint, len(candles))
		s.data[key] = series
	}
	for _, c := range candles {
		series[c.Timestamp] = c
	}
	return nil
}

// GetByPair retrieves candles for a pair side, ordered by timestamp ASC.
func (s *CandleStore) GetByPair(_ context.Context, network domain.Network, pairID string, window domain.Window, side int) ([]domain.CandlePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.CandlePoint
	for _, c := range s.data[candleKey(network, pairID, window, side)] {
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Timestamp < result[j].Timestamp
	})
	return result, nil
}
