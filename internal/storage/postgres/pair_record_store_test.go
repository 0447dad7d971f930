package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

func testPairRecord(addr string, reserve float64) domain.PairRecord {
	return domain.PairRecord{
		PairSnapshot: domain.PairSnapshot{
			Address:            addr,
			Token0:             domain.TokenIdentity{Address: "0xaaa", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
			Token1:             domain.TokenIdentity{Address: "0xbbb", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
			Reserve0:           12.5,
			Reserve1:           31000,
			ReserveQuote:       62000,
			VolumeQuote:        1_500_000,
			TotalSupplyLP:      400,
			TxCount:            920,
			CreatedAtBlock:     17_000_000,
			CreatedAtTimestamp: 1_700_000_000,
		},
		OneDayVolume:        4200,
		OneWeekVolume:       31000,
		VolumeChange:        3.5,
		OneDayTxns:          17,
		TrackedReserveQuote: reserve,
		SwapFeeBps:          domain.DefaultSwapFeeBps,
	}
}

func TestPairRecordStore_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPairRecordStore(pool)
	ctx := context.Background()

	records := []domain.PairRecord{
		testPairRecord("0x111", 100),
		testPairRecord("0x222", 300),
	}
	require.NoError(t, store.Upsert(ctx, domain.NetworkMainnet, records))

	got, err := store.GetByNetwork(ctx, domain.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "0x222", got[0].Address, "largest reserve first")

	rec, err := store.GetByAddress(ctx, domain.NetworkMainnet, "0x111")
	require.NoError(t, err)
	require.Equal(t, "WETH", rec.Token0.Symbol)
	require.Equal(t, uint64(17_000_000), rec.CreatedAtBlock)
	require.Equal(t, 4200.0, rec.OneDayVolume)
}

func TestPairRecordStore_UpsertReplaces(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPairRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, domain.NetworkMainnet, []domain.PairRecord{testPairRecord("0x111", 100)}))

	updated := testPairRecord("0x111", 250)
	updated.OneDayVolume = 9000
	require.NoError(t, store.Upsert(ctx, domain.NetworkMainnet, []domain.PairRecord{updated}))

	rec, err := store.GetByAddress(ctx, domain.NetworkMainnet, "0x111")
	require.NoError(t, err)
	require.Equal(t, 250.0, rec.TrackedReserveQuote)
	require.Equal(t, 9000.0, rec.OneDayVolume)

	all, err := store.GetByNetwork(ctx, domain.NetworkMainnet)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestPairRecordStore_NetworkIsolation(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPairRecordStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, domain.NetworkMainnet, []domain.PairRecord{testPairRecord("0x111", 100)}))

	_, err := store.GetByAddress(ctx, domain.NetworkGnosis, "0x111")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestPairRecordStore_InvalidInput(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewPairRecordStore(pool)
	ctx := context.Background()

	err := store.Upsert(ctx, domain.Network("bogus"), []domain.PairRecord{testPairRecord("0x111", 1)})
	require.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Upsert(ctx, domain.NetworkMainnet, []domain.PairRecord{{}})
	require.ErrorIs(t, err, storage.ErrInvalidInput)
}
