package series

import (
	"context"
	"time"

	"dexboard/internal/domain"
	"dexboard/internal/subgraph"
)

// BlockResolver maps timestamps to blocks. *blocks.Resolver implements it.
type BlockResolver interface {
	ForTimestamps(ctx context.Context, timestamps []int64) ([]uint64, error)
}

// RateSource answers per-block pair rate queries. *subgraph.Client
// implements it.
type RateSource interface {
	PairRatesAtBlocks(ctx context.Context, id string, blockNums []uint64) ([]subgraph.RatePair, error)
}

// HourlyBuilder constructs hourly open/close candle series for a pair.
type HourlyBuilder struct {
	resolver BlockResolver
	rates    RateSource
}

// NewHourlyBuilder creates a builder over the given resolver and rate source.
func NewHourlyBuilder(resolver BlockResolver, rates RateSource) *HourlyBuilder {
	return &HourlyBuilder{resolver: resolver, rates: rates}
}

// Build enumerates hour boundaries across the window, resolves each to a
// block, queries the pair's rate at every resolved block, and pairs
// consecutive samples into candles for both rate directions. Boundaries that
// fail to resolve are skipped; resolved blocks beyond a non-zero syncedHead
// are filtered out so no speculative data enters the series. A window with
// no resolvable boundaries yields empty series, not an error.
func (b *HourlyBuilder) Build(ctx context.Context, pairID string, window domain.Window, now time.Time, syncedHead uint64) ([2][]domain.CandlePoint, error) {
	var out [2][]domain.CandlePoint

	end := now.UTC().Unix()
	boundaries := Boundaries(end-window.Seconds(), end, domain.CandleInterval)
	if len(boundaries) == 0 {
		return out, nil
	}

	blockNums, err := b.resolver.ForTimestamps(ctx, boundaries)
	if err != nil {
		return out, err
	}

	// Keep resolved boundaries; drop anything past the synced head.
	var (
		keptTimes  []int64
		keptBlocks []uint64
	)
	for i, num := range blockNums {
		if num == 0 {
			continue
		}
		if syncedHead != 0 && num > syncedHead {
			continue
		}
		keptTimes = append(keptTimes, boundaries[i])
		keptBlocks = append(keptBlocks, num)
	}
	if len(keptBlocks) == 0 {
		return out, nil
	}

	rates, err := b.rates.PairRatesAtBlocks(ctx, pairID, keptBlocks)
	if err != nil {
		return out, err
	}
	byBlock := make(map[uint64]subgraph.RatePair, len(rates))
	for _, r := range rates {
		byBlock[r.Block] = r
	}

	var (
		sampleTimes []int64
		rate0s      []float64
		rate1s      []float64
	)
	for i, num := range keptBlocks {
		r, ok := byBlock[num]
		if !ok {
			// Pair did not exist at this block.
			continue
		}
		sampleTimes = append(sampleTimes, keptTimes[i])
		rate0s = append(rate0s, r.Rate0)
		rate1s = append(rate1s, r.Rate1)
	}

	out[0] = BuildCandles(sampleTimes, rate0s)
	out[1] = BuildCandles(sampleTimes, rate1s)
	return out, nil
}

// Boundaries enumerates bucket boundaries from start to end inclusive,
// stepping by interval seconds.
func Boundaries(start, end, interval int64) []int64 {
	if interval <= 0 || end < start {
		return nil
	}
	out := make([]int64, 0, (end-start)/interval+1)
	for t := start; t <= end; t += interval {
		out = append(out, t)
	}
	return out
}

// BuildCandles pairs consecutive samples into open/close candles. N samples
// produce exactly N-1 candles; there is no trailing open-only candle.
func BuildCandles(timestamps []int64, rates []float64) []domain.CandlePoint {
	if len(timestamps) < 2 {
		return nil
	}
	out := make([]domain.CandlePoint, 0, len(timestamps)-1)
	for i := 0; i+1 < len(timestamps); i++ {
		out = append(out, domain.CandlePoint{
			Timestamp: timestamps[i],
			Open:      rates[i],
			Close:     rates[i+1],
		})
	}
	return out
}
