package fetcher

import (
	"context"
	"strings"
	"sync"

	"dexboard/internal/derive"
	"dexboard/internal/domain"
)

// BulkPairs returns one derived record per pair address. On any stage
// failure the whole batch is logged and dropped (nil result). refs may be
// a pre-resolved set; pass the zero set to treat all history as absent.
func (f *Fetcher) BulkPairs(ctx context.Context, ids []string, nativePrice float64, refs domain.BlockRefSet) map[string]domain.PairRecord {
	records, err := f.bulkPairs(ctx, ids, nativePrice, refs)
	f.countFetch("pairs", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: bulk pairs: %v", f.network, err)
		return nil
	}
	return records
}

func (f *Fetcher) bulkPairs(ctx context.Context, ids []string, nativePrice float64, refs domain.BlockRefSet) (map[string]domain.PairRecord, error) {
	if len(ids) == 0 {
		return map[string]domain.PairRecord{}, nil
	}
	ids = lowercase(ids)

	current, err := f.graph.PairsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	windows, err := f.pairWindows(ctx, ids, refs)
	if err != nil {
		return nil, err
	}

	f.pairFallbacks(ctx, ids, refs, windows)

	fees := f.pairFees(ctx, ids)

	records := make(map[string]domain.PairRecord, len(current))
	for _, snap := range current {
		rec := derive.PairMetrics(
			snap,
			windows[0][snap.Address],
			windows[1][snap.Address],
			windows[2][snap.Address],
			nativePrice,
			refs,
		)
		if fee, ok := fees[snap.Address]; ok {
			rec.SwapFeeBps = fee
		}
		records[snap.Address] = rec
	}
	return records, nil
}

// pairWindows fetches the three historical windows concurrently; they are
// independent of each other. Index 0 is one day, 1 two days, 2 one week.
func (f *Fetcher) pairWindows(ctx context.Context, ids []string, refs domain.BlockRefSet) ([3]map[string]*domain.PairSnapshot, error) {
	var windows [3]map[string]*domain.PairSnapshot
	blockNums := [3]uint64{refs.OneDay, refs.TwoDay, refs.OneWeek}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs [3]error
	)
	for i, block := range blockNums {
		windows[i] = map[string]*domain.PairSnapshot{}
		if block == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, block uint64) {
			defer wg.Done()
			snaps, err := f.graph.PairsByIDsAtBlock(ctx, ids, block)
			if err != nil {
				errs[i] = err
				return
			}
			mu.Lock()
			for k := range snaps {
				windows[i][snaps[k].Address] = &snaps[k]
			}
			mu.Unlock()
		}(i, block)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return windows, err
		}
	}
	return windows, nil
}

// pairFallbacks issues single-entity queries for IDs missing from a
// window's bulk result. Entities are processed in a bounded parallel map;
// each entity's own lookups run sequentially. A fallback that fails or
// returns nothing leaves the window absent, which downstream derivation
// reads as "did not exist at that block".
func (f *Fetcher) pairFallbacks(ctx context.Context, ids []string, refs domain.BlockRefSet, windows [3]map[string]*domain.PairSnapshot) {
	blockNums := [3]uint64{refs.OneDay, refs.TwoDay, refs.OneWeek}

	// Compute each id's missing windows before any worker starts so the
	// window maps are never read while workers write them.
	type gap struct {
		window int
		block  uint64
	}
	missing := make(map[string][]gap)
	for _, id := range ids {
		for i, block := range blockNums {
			if block != 0 && windows[i][id] == nil {
				missing[id] = append(missing[id], gap{window: i, block: block})
			}
		}
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		sem = make(chan struct{}, maxFallbackWorkers)
	)
	for id, gaps := range missing {
		wg.Add(1)
		sem <- struct{}{}
		go func(id string, gaps []gap) {
			defer wg.Done()
			defer func() { <-sem }()
			for _, g := range gaps {
				if f.metrics != nil {
					f.metrics.FallbackQueries.Inc()
				}
				snap, err := f.graph.PairAtBlock(ctx, id, g.block)
				if err != nil {
					f.logger.Printf("fetcher[%s]: pair %s at block %d: %v", f.network, id, g.block, err)
					continue
				}
				if snap == nil {
					continue
				}
				mu.Lock()
				windows[g.window][id] = snap
				mu.Unlock()
			}
		}(id, gaps)
	}
	wg.Wait()
}

// pairFees reads on-chain swap fees for all pairs in one batched call. Any
// failure degrades every pair to the default fee.
func (f *Fetcher) pairFees(ctx context.Context, ids []string) map[string]float64 {
	if f.fees == nil {
		return nil
	}
	fees, err := f.fees.SwapFees(ctx, ids)
	if err != nil {
		if f.metrics != nil {
			f.metrics.FeeLookupFailures.Inc()
		}
		f.logger.Printf("fetcher[%s]: swap fees: %v", f.network, err)
		return nil
	}
	return fees
}

// TopPairs fetches the n largest pairs by tracked reserve and derives their
// records.
func (f *Fetcher) TopPairs(ctx context.Context, n int, nativePrice float64, refs domain.BlockRefSet) map[string]domain.PairRecord {
	ids, err := f.graph.TopPairIDs(ctx, n)
	f.countFetch("top_pairs", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: top pair ids: %v", f.network, err)
		return nil
	}
	return f.BulkPairs(ctx, ids, nativePrice, refs)
}

// Txns fetches a pair's recent transaction sub-series, or nil on failure.
func (f *Fetcher) Txns(ctx context.Context, id string) []domain.Transaction {
	txns, err := f.graph.PairTxns(ctx, strings.ToLower(id))
	f.countFetch("txns", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: txns %s: %v", f.network, id, err)
		return nil
	}
	return txns
}

func lowercase(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = strings.ToLower(id)
	}
	return out
}
