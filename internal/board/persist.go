package board

import (
	"context"

	"dexboard/internal/domain"
)

// Persister archives refresh results to durable storage. All methods are
// best-effort from the board's point of view: failures are logged and never
// block serving from the cache.
type Persister interface {
	PersistPairs(ctx context.Context, network domain.Network, records []domain.PairRecord) error
	PersistTokens(ctx context.Context, network domain.Network, records []domain.TokenRecord) error
	PersistDaily(ctx context.Context, network domain.Network, id string, points []domain.DailyPoint) error
	PersistCandles(ctx context.Context, network domain.Network, id string, window domain.Window, series [2][]domain.CandlePoint) error
}

func (b *Board) persistPairs(ctx context.Context, network domain.Network, records map[string]domain.PairRecord) {
	if b.persist == nil {
		return
	}
	list := make([]domain.PairRecord, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	if err := b.persist.PersistPairs(ctx, network, list); err != nil {
		b.logger.Printf("board[%s]: persist pairs: %v", network, err)
	}
}

func (b *Board) persistTokens(ctx context.Context, network domain.Network, records map[string]domain.TokenRecord) {
	if b.persist == nil {
		return
	}
	list := make([]domain.TokenRecord, 0, len(records))
	for _, rec := range records {
		list = append(list, rec)
	}
	if err := b.persist.PersistTokens(ctx, network, list); err != nil {
		b.logger.Printf("board[%s]: persist tokens: %v", network, err)
	}
}

func (b *Board) persistDaily(ctx context.Context, network domain.Network, id string, points []domain.DailyPoint) {
	if b.persist == nil {
		return
	}
	if err := b.persist.PersistDaily(ctx, network, id, points); err != nil {
		b.logger.Printf("board[%s]: persist daily %s: %v", network, id, err)
	}
}

func (b *Board) persistCandles(ctx context.Context, network domain.Network, id string, window domain.Window, series [2][]domain.CandlePoint) {
	if b.persist == nil {
		return
	}
	if err := b.persist.PersistCandles(ctx, network, id, window, series); err != nil {
		b.logger.Printf("board[%s]: persist candles %s: %v", network, id, err)
	}
}
