package storage

import (
	"context"

	"dexboard/internal/domain"
)

// Archive bundles the individual stores behind the board's persistence hooks.
// Any component may be nil, in which case the corresponding writes are
// silently skipped. This lets the server run with only Postgres, only
// ClickHouse, or neither.
type Archive struct {
	Pairs   PairRecordStore
	Tokens  TokenRecordStore
	Daily   DailySeriesStore
	Candles CandleStore
}

// PersistPairs upserts the latest pair records for a network.
func (a *Archive) PersistPairs(ctx context.Context, network domain.Network, records []domain.PairRecord) error {
	if a.Pairs == nil || len(records) == 0 {
		return nil
	}
	return a.Pairs.Upsert(ctx, network, records)
}

// PersistTokens upserts the latest token records for a network.
func (a *Archive) PersistTokens(ctx context.Context, network domain.Network, records []domain.TokenRecord) error {
	if a.Tokens == nil || len(records) == 0 {
		return nil
	}
	return a.Tokens.Upsert(ctx, network, records)
}

// PersistDaily archives a gap-filled daily series for an entity.
func (a *Archive) PersistDaily(ctx context.Context, network domain.Network, id string, points []domain.DailyPoint) error {
	if a.Daily == nil || len(points) == 0 {
		return nil
	}
	return a.Daily.InsertBulk(ctx, network, id, points)
}

// PersistCandles archives both candle series of a pair.
func (a *Archive) PersistCandles(ctx context.Context, network domain.Network, id string, window domain.Window, series [2][]domain.CandlePoint) error {
	if a.Candles == nil {
		return nil
	}
	for side, candles := range series {
		if len(candles) == 0 {
			continue
		}
		if err := a.Candles.InsertBulk(ctx, network, id, window, side, candles); err != nil {
			return err
		}
	}
	return nil
}
