package storage

import (
	"context"

	"dexboard/internal/domain"
)

// PairRecordStore persists derived pair records. Records are snapshots of the
// latest refresh per network and are replaced wholesale on each upsert, so the
// store can seed the in-memory cache after a restart.
type PairRecordStore interface {
	// Upsert writes records, replacing any existing rows with the same
	// (network, address) key.
	Upsert(ctx context.Context, network domain.Network, records []domain.PairRecord) error

	// GetByNetwork retrieves all records for a network, ordered by
	// tracked reserve descending.
	GetByNetwork(ctx context.Context, network domain.Network) ([]domain.PairRecord, error)

	// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, network domain.Network, address string) (*domain.PairRecord, error)
}

// TokenRecordStore persists derived token records, mirroring PairRecordStore.
type TokenRecordStore interface {
	// Upsert writes records, replacing any existing rows with the same
	// (network, address) key.
	Upsert(ctx context.Context, network domain.Network, records []domain.TokenRecord) error

	// GetByNetwork retrieves all records for a network, ordered by
	// liquidity descending.
	GetByNetwork(ctx context.Context, network domain.Network) ([]domain.TokenRecord, error)

	// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
	GetByAddress(ctx context.Context, network domain.Network, address string) (*domain.TokenRecord, error)
}

// DailySeriesStore archives gap-filled daily history per entity. Writes are
// append-style; the backend deduplicates on (network, entity, date).
type DailySeriesStore interface {
	// InsertBulk adds points for one entity.
	InsertBulk(ctx context.Context, network domain.Network, entityID string, points []domain.DailyPoint) error

	// GetByEntity retrieves all points for an entity, ordered by date ASC.
	GetByEntity(ctx context.Context, network domain.Network, entityID string) ([]domain.DailyPoint, error)

	// GetByDateRange retrieves points within [start, end] (inclusive).
	GetByDateRange(ctx context.Context, network domain.Network, entityID string, start, end int64) ([]domain.DailyPoint, error)
}

// CandleStore archives hourly price candles per pair and token side.
// Side is 0 or 1, matching the pair's token ordering.
type CandleStore interface {
	// InsertBulk adds candles for one pair side and window.
	InsertBulk(ctx context.Context, network domain.Network, pairID string, window domain.Window, side int, candles []domain.CandlePoint) error

	// GetByPair retrieves candles for a pair side, ordered by timestamp ASC.
	GetByPair(ctx context.Context, network domain.Network, pairID string, window domain.Window, side int) ([]domain.CandlePoint, error)
}
