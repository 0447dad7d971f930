package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// DailySeriesStore is an in-memory implementation of storage.DailySeriesStore.
type DailySeriesStore struct {
	mu   sync.RWMutex
	data map[string]domain.DailyPoint // keyed by (network, entity, date)
}

// NewDailySeriesStore creates a new in-memory daily series store.
func NewDailySeriesStore() *DailySeriesStore {
	return &DailySeriesStore{
		data: make(map[string]domain.DailyPoint),
	}
}

// Compile-time interface check.
var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)

// dailyKey generates a unique key for a daily point.
func dailyKey(network domain.Network, entityID string, date int64) string {
	return fmt.Sprintf("%s|%s|%d", network, entityID, date)
}

// InsertBulk adds points for one entity. Points with an already-stored date
// replace the previous value, matching the dedupe the durable backends do.
func (s *DailySeriesStore) InsertBulk(_ context.Context, network domain.Network, entityID string, points []domain.DailyPoint) error {
	if entityID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		s.data[dailyKey(network, entityID, p.Date)] = p
	}
	return nil
}

// GetByEntity retrieves all points for an entity, ordered by date ASC.
func (s *DailySeriesStore) GetByEntity(ctx context.Context, network domain.Network, entityID string) ([]domain.DailyPoint, error) {
	return s.GetByDateRange(ctx, network, entityID, 0, 1<<62)
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *DailySeriesStore) GetByDateRange(_ context.Context, network domain.Network, entityID string, start, end int64) ([]domain.DailyPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := fmt.Sprintf("%s|%s|", network, entityID)
	var result []domain.DailyPoint
	for key, p := range s.data {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix && p.Date >= start && p.Date <= end {
			result = append(result, p)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Date < result[j].Date
	})
	return result, nil
}
