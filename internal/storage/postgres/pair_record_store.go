package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// PairRecordStore implements storage.PairRecordStore using PostgreSQL.
type PairRecordStore struct {
	pool *Pool
}

// NewPairRecordStore creates a new PairRecordStore.
func NewPairRecordStore(pool *Pool) *PairRecordStore {
	return &PairRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PairRecordStore = (*PairRecordStore)(nil)

const pairRecordColumns = `
	network, address,
	token0_address, token0_symbol, token0_name, token0_decimals,
	token1_address, token1_symbol, token1_name, token1_decimals,
	reserve0, reserve1, reserve_quote, tracked_reserve_native,
	volume_quote, untracked_volume_quote, total_supply_lp, tx_count,
	token0_price_native, token1_price_native,
	created_at_block, created_at_timestamp,
	one_day_volume, one_week_volume, volume_change, one_day_txns,
	liquidity_change, tracked_reserve_quote, swap_fee_bps
`

// Upsert writes records inside one transaction, replacing rows with the
// same (network, address) key.
func (s *PairRecordStore) Upsert(ctx context.Context, network domain.Network, records []domain.PairRecord) error {
	if !network.Valid() {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO pair_records (` + pairRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
		ON CONFLICT (network, address) DO UPDATE SET
			token0_symbol = EXCLUDED.token0_symbol,
			token1_symbol = EXCLUDED.token1_symbol,
			reserve0 = EXCLUDED.reserve0,
			reserve1 = EXCLUDED.reserve1,
			reserve_quote = EXCLUDED.reserve_quote,
			tracked_reserve_native = EXCLUDED.tracked_reserve_native,
			volume_quote = EXCLUDED.volume_quote,
			untracked_volume_quote = EXCLUDED.untracked_volume_quote,
			total_supply_lp = EXCLUDED.total_supply_lp,
			tx_count = EXCLUDED.tx_count,
			token0_price_native = EXCLUDED.token0_price_native,
			token1_price_native = EXCLUDED.token1_price_native,
			one_day_volume = EXCLUDED.one_day_volume,
			one_week_volume = EXCLUDED.one_week_volume,
			volume_change = EXCLUDED.volume_change,
			one_day_txns = EXCLUDED.one_day_txns,
			liquidity_change = EXCLUDED.liquidity_change,
			tracked_reserve_quote = EXCLUDED.tracked_reserve_quote,
			swap_fee_bps = EXCLUDED.swap_fee_bps,
			updated_at = now()
	`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert pairs: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r.Address == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			string(network), r.Address,
			r.Token0.Address, r.Token0.Symbol, r.Token0.Name, r.Token0.Decimals,
			r.Token1.Address, r.Token1.Symbol, r.Token1.Name, r.Token1.Decimals,
			r.Reserve0, r.Reserve1, r.ReserveQuote, r.TrackedReserveNative,
			r.VolumeQuote, r.UntrackedVolumeQuote, r.TotalSupplyLP, r.TxCount,
			r.Token0PriceNative, r.Token1PriceNative,
			int64(r.CreatedAtBlock), r.CreatedAtTimestamp,
			r.OneDayVolume, r.OneWeekVolume, r.VolumeChange, r.OneDayTxns,
			r.LiquidityChange, r.TrackedReserveQuote, r.SwapFeeBps,
		)
		if err != nil {
			return fmt.Errorf("upsert pair %s: %w", r.Address, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert pairs: %w", err)
	}
	return nil
}

// GetByNetwork retrieves all records for a network, largest reserve first.
func (s *PairRecordStore) GetByNetwork(ctx context.Context, network domain.Network) ([]domain.PairRecord, error) {
	query := `
		SELECT ` + pairRecordColumns + `
		FROM pair_records
		WHERE network = $1
		ORDER BY tracked_reserve_quote DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, string(network))
	if err != nil {
		return nil, fmt.Errorf("get pairs by network: %w", err)
	}
	defer rows.Close()

	return scanPairRecords(rows)
}

// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
func (s *PairRecordStore) GetByAddress(ctx context.Context, network domain.Network, address string) (*domain.PairRecord, error) {
	query := `
		SELECT ` + pairRecordColumns + `
		FROM pair_records
		WHERE network = $1 AND address = $2
	`

	row := s.pool.QueryRow(ctx, query, string(network), address)
	rec, err := scanPairRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pair by address: %w", err)
	}
	return rec, nil
}

// scanPairRecord scans a single row into a PairRecord.
func scanPairRecord(row pgx.Row) (*domain.PairRecord, error) {
	var r domain.PairRecord
	var network string
	var createdAtBlock int64

	err := row.Scan(
		&network, &r.Address,
		&r.Token0.Address, &r.Token0.Symbol, &r.Token0.Name, &r.Token0.Decimals,
		&r.Token1.Address, &r.Token1.Symbol, &r.Token1.Name, &r.Token1.Decimals,
		&r.Reserve0, &r.Reserve1, &r.ReserveQuote, &r.TrackedReserveNative,
		&r.VolumeQuote, &r.UntrackedVolumeQuote, &r.TotalSupplyLP, &r.TxCount,
		&r.Token0PriceNative, &r.Token1PriceNative,
		&createdAtBlock, &r.CreatedAtTimestamp,
		&r.OneDayVolume, &r.OneWeekVolume, &r.VolumeChange, &r.OneDayTxns,
		&r.LiquidityChange, &r.TrackedReserveQuote, &r.SwapFeeBps,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAtBlock = uint64(createdAtBlock)
	return &r, nil
}

// scanPairRecords scans multiple rows into a slice of PairRecord.
func scanPairRecords(rows pgx.Rows) ([]domain.PairRecord, error) {
	var records []domain.PairRecord

	for rows.Next() {
		rec, err := scanPairRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pair record row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pair record rows: %w", err)
	}

	return records, nil
}
