package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// TokenRecordStore implements storage.TokenRecordStore using PostgreSQL.
type TokenRecordStore struct {
	pool *Pool
}

// NewTokenRecordStore creates a new TokenRecordStore.
func NewTokenRecordStore(pool *Pool) *TokenRecordStore {
	return &TokenRecordStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenRecordStore = (*TokenRecordStore)(nil)

const tokenRecordColumns = `
	network, address, symbol, name, decimals,
	trade_volume_quote, untracked_volume_quote, tx_count,
	total_liquidity_tokens, derived_native, created_at_block,
	one_day_volume, one_week_volume, volume_change, one_day_txns,
	liquidity_quote, liquidity_change, price_quote, price_change
`

// Upsert writes records inside one transaction, replacing rows with the
// same (network, address) key.
func (s *TokenRecordStore) Upsert(ctx context.Context, network domain.Network, records []domain.TokenRecord) error {
	if !network.Valid() {
		return storage.ErrInvalidInput
	}
	if len(records) == 0 {
		return nil
	}

	query := `
		INSERT INTO token_records (` + tokenRecordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18, $19)
		ON CONFLICT (network, address) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			trade_volume_quote = EXCLUDED.trade_volume_quote,
			untracked_volume_quote = EXCLUDED.untracked_volume_quote,
			tx_count = EXCLUDED.tx_count,
			total_liquidity_tokens = EXCLUDED.total_liquidity_tokens,
			derived_native = EXCLUDED.derived_native,
			one_day_volume = EXCLUDED.one_day_volume,
			one_week_volume = EXCLUDED.one_week_volume,
			volume_change = EXCLUDED.volume_change,
			one_day_txns = EXCLUDED.one_day_txns,
			liquidity_quote = EXCLUDED.liquidity_quote,
			liquidity_change = EXCLUDED.liquidity_change,
			price_quote = EXCLUDED.price_quote,
			price_change = EXCLUDED.price_change,
			updated_at = now()
	`

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin upsert tokens: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r.Address == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			string(network), r.Address, r.Symbol, r.Name, r.Decimals,
			r.TradeVolumeQuote, r.UntrackedVolumeQuote, r.TxCount,
			r.TotalLiquidityTokens, r.DerivedNative, int64(r.CreatedAtBlock),
			r.OneDayVolume, r.OneWeekVolume, r.VolumeChange, r.OneDayTxns,
			r.LiquidityQuote, r.LiquidityChange, r.PriceQuote, r.PriceChange,
		)
		if err != nil {
			return fmt.Errorf("upsert token %s: %w", r.Address, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit upsert tokens: %w", err)
	}
	return nil
}

// GetByNetwork retrieves all records for a network, largest liquidity first.
func (s *TokenRecordStore) GetByNetwork(ctx context.Context, network domain.Network) ([]domain.TokenRecord, error) {
	query := `
		SELECT ` + tokenRecordColumns + `
		FROM token_records
		WHERE network = $1
		ORDER BY liquidity_quote DESC, address ASC
	`

	rows, err := s.pool.Query(ctx, query, string(network))
	if err != nil {
		return nil, fmt.Errorf("get tokens by network: %w", err)
	}
	defer rows.Close()

	return scanTokenRecords(rows)
}

// GetByAddress retrieves one record. Returns ErrNotFound if not exists.
func (s *TokenRecordStore) GetByAddress(ctx context.Context, network domain.Network, address string) (*domain.TokenRecord, error) {
	query := `
		SELECT ` + tokenRecordColumns + `
		FROM token_records
		WHERE network = $1 AND address = $2
	`

	row := s.pool.QueryRow(ctx, query, string(network), address)
	rec, err := scanTokenRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token by address: %w", err)
	}
	return rec, nil
}

// scanTokenRecord scans a single row into a TokenRecord.
func scanTokenRecord(row pgx.Row) (*domain.TokenRecord, error) {
	var r domain.TokenRecord
	var network string
	var createdAtBlock int64

	err := row.Scan(
		&network, &r.Address, &r.Symbol, &r.Name, &r.Decimals,
		&r.TradeVolumeQuote, &r.UntrackedVolumeQuote, &r.TxCount,
		&r.TotalLiquidityTokens, &r.DerivedNative, &createdAtBlock,
		&r.OneDayVolume, &r.OneWeekVolume, &r.VolumeChange, &r.OneDayTxns,
		&r.LiquidityQuote, &r.LiquidityChange, &r.PriceQuote, &r.PriceChange,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAtBlock = uint64(createdAtBlock)
	return &r, nil
}

// scanTokenRecords scans multiple rows into a slice of TokenRecord.
func scanTokenRecords(rows pgx.Rows) ([]domain.TokenRecord, error) {
	var records []domain.TokenRecord

	for rows.Next() {
		rec, err := scanTokenRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token record row: %w", err)
		}
		records = append(records, *rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token record rows: %w", err)
	}

	return records, nil
}
