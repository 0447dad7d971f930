package fetcher

import (
	"context"
	"strings"

	"dexboard/internal/domain"
	"dexboard/internal/series"
)

// dailyLookback bounds how far back daily series walks start.
const dailyLookback = 365 * 24 * 3600

// PairDaily fetches and normalizes a pair's daily series, or nil on failure.
func (f *Fetcher) PairDaily(ctx context.Context, id string) []domain.DailyPoint {
	now := f.now()
	points, err := f.graph.PairDayDatas(ctx, strings.ToLower(id), now.Unix()-dailyLookback)
	f.countFetch("pair_daily", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: pair day datas %s: %v", f.network, id, err)
		return nil
	}
	return series.NormalizeDaily(points, now)
}

// TokenDaily fetches and normalizes a token's daily series, or nil on failure.
func (f *Fetcher) TokenDaily(ctx context.Context, id string) []domain.DailyPoint {
	now := f.now()
	points, err := f.graph.TokenDayDatas(ctx, strings.ToLower(id), now.Unix()-dailyLookback)
	f.countFetch("token_daily", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: token day datas %s: %v", f.network, id, err)
		return nil
	}
	return series.NormalizeDaily(points, now)
}
