package memory

import (
	"context"
	"errors"
	"testing"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

func TestDailySeriesStore_InsertBulkAndGet(t *testing.T) {
	store := NewDailySeriesStore()
	ctx := context.Background()

	points := []domain.DailyPoint{
		{Date: 172800, Volume: 20, Reserve: 1000},
		{Date: 86400, Volume: 10, Reserve: 900},
	}
	if err := store.InsertBulk(ctx, domain.NetworkMainnet, "0xpair", points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByEntity(ctx, domain.NetworkMainnet, "0xpair")
	if err != nil {
		t.Fatalf("GetByEntity failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(got))
	}
	if got[0].Date != 86400 || got[1].Date != 172800 {
		t.Errorf("Expected ascending dates, got %d, %d", got[0].Date, got[1].Date)
	}
}

func TestDailySeriesStore_ReinsertDeduplicates(t *testing.T) {
	store := NewDailySeriesStore()
	ctx := context.Background()

	first := []domain.DailyPoint{{Date: 86400, Volume: 10, Reserve: 900}}
	second := []domain.DailyPoint{{Date: 86400, Volume: 15, Reserve: 950}}

	if err := store.InsertBulk(ctx, domain.NetworkMainnet, "0xpair", first); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}
	if err := store.InsertBulk(ctx, domain.NetworkMainnet, "0xpair", second); err != nil {
		t.Fatalf("Second insert failed: %v", err)
	}

	got, err := store.GetByEntity(ctx, domain.NetworkMainnet, "0xpair")
	if err != nil {
		t.Fatalf("GetByEntity failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 point after dedupe, got %d", len(got))
	}
	if got[0].Volume != 15 {
		t.Errorf("Expected latest write to win, got volume %f", got[0].Volume)
	}
}

func TestDailySeriesStore_GetByDateRange(t *testing.T) {
	store := NewDailySeriesStore()
	ctx := context.Background()

	points := []domain.DailyPoint{
		{Date: 86400, Volume: 1},
		{Date: 172800, Volume: 2},
		{Date: 259200, Volume: 3},
	}
	if err := store.InsertBulk(ctx, domain.NetworkMainnet, "0xpair", points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByDateRange(ctx, domain.NetworkMainnet, "0xpair", 86400, 172800)
	if err != nil {
		t.Fatalf("GetByDateRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Expected 2 points in range, got %d", len(got))
	}
}

func TestDailySeriesStore_EntityIsolation(t *testing.T) {
	store := NewDailySeriesStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, domain.NetworkMainnet, "0xpair", []domain.DailyPoint{{Date: 86400}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByEntity(ctx, domain.NetworkMainnet, "0xother")
	if err != nil {
		t.Fatalf("GetByEntity failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected 0 points for other entity, got %d", len(got))
	}
}

func TestDailySeriesStore_InvalidInput(t *testing.T) {
	store := NewDailySeriesStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, domain.NetworkMainnet, "", []domain.DailyPoint{{Date: 86400}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for empty entity, got %v", err)
	}
}
