package clickhouse

import (
	"context"
	"fmt"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// DailySeriesStore implements storage.DailySeriesStore using ClickHouse.
// Duplicate days are collapsed by the ReplacingMergeTree engine, so the
// final SELECTs deduplicate with FINAL instead of checking before insert.
type DailySeriesStore struct {
	conn *Conn
}

// NewDailySeriesStore creates a new DailySeriesStore.
func NewDailySeriesStore(conn *Conn) *DailySeriesStore {
	return &DailySeriesStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DailySeriesStore = (*DailySeriesStore)(nil)

// InsertBulk adds points for one entity.
func (s *DailySeriesStore) InsertBulk(ctx context.Context, network domain.Network, entityID string, points []domain.DailyPoint) error {
	if entityID == "" {
		return storage.ErrInvalidInput
	}
	if len(points) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO daily_series (
			network, entity_id, date, volume, reserve, utilization
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		err = batch.Append(
			string(network), entityID, uint64(p.Date),
			p.Volume, p.Reserve, p.Utilization,
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

// GetByEntity retrieves all points for an entity, ordered by date ASC.
func (s *DailySeriesStore) GetByEntity(ctx context.Context, network domain.Network, entityID string) ([]domain.DailyPoint, error) {
	query := `
		SELECT date, volume, reserve, utilization
		FROM daily_series FINAL
		WHERE network = ? AND entity_id = ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, string(network), entityID)
	if err != nil {
		return nil, fmt.Errorf("query by entity: %w", err)
	}
	defer rows.Close()

	return scanDailyPoints(rows)
}

// GetByDateRange retrieves points within [start, end] (inclusive).
func (s *DailySeriesStore) GetByDateRange(ctx context.Context, network domain.Network, entityID string, start, end int64) ([]domain.DailyPoint, error) {
	query := `
		SELECT date, volume, reserve, utilization
		FROM daily_series FINAL
		WHERE network = ? AND entity_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`

	rows, err := s.conn.Query(ctx, query, string(network), entityID, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by date range: %w", err)
	}
	defer rows.Close()

	return scanDailyPoints(rows)
}

// scanDailyPoints scans multiple rows.
func scanDailyPoints(rows chRows) ([]domain.DailyPoint, error) {
	var points []domain.DailyPoint

	for rows.Next() {
		var p domain.DailyPoint
		var date uint64

		if err := rows.Scan(&date, &p.Volume, &p.Reserve, &p.Utilization); err != nil {
			return nil, fmt.Errorf("scan daily series row: %w", err)
		}

		p.Date = int64(date)
		points = append(points, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily series rows: %w", err)
	}

	return points, nil
}
