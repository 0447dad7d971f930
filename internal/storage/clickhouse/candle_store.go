package clickhouse

import (
	"context"
	"fmt"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// CandleStore implements storage.CandleStore using ClickHouse.
type CandleStore struct {
	conn *Conn
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(conn *Conn) *CandleStore {
	return &CandleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// InsertBulk adds candles for one pair side and window.
func (s *CandleStore) InsertBulk(ctx context.Context, network domain.Network, pairID string, window domain.Window, side int, candles []domain.CandlePoint) error {
	if pairID == "" || side < 0 || side > 1 {
		return storage.ErrInvalidInput
	}
	if len(candles) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO pair_candles (
			network, pair_id, window_span, side, timestamp, open, close
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, c := range candles {
		err = batch.Append(
			string(network), pairID, string(window), uint8(side),
			uint64(c.Timestamp), c.Open, c.Close,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByPair retrieves candles for a pair side, ordered by timestamp ASC.
func (s *CandleStore) GetByPair(ctx context.Context, network domain.Network, pairID string, window domain.Window, side int) ([]domain.CandlePoint, error) {
	query := `
		SELECT timestamp, open, close
		FROM pair_candles FINAL
		WHERE network = ? AND pair_id = ? AND window_span = ? AND side = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, string(network), pairID, string(window), uint8(side))
	if err != nil {
		return nil, fmt.Errorf("query by pair: %w", err)
	}
	defer rows.Close()

	var candles []domain.CandlePoint
	for rows.Next() {
		var c domain.CandlePoint
		var ts uint64

		if err := rows.Scan(&ts, &c.Open, &c.Close); err != nil {
			return nil, fmt.Errorf("scan candle row: %w", err)
		}

		c.Timestamp = int64(ts)
		candles = append(candles, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candle rows: %w", err)
	}

	return candles, nil
}
