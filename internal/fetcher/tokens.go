package fetcher

import (
	"context"
	"sync"

	"dexboard/internal/derive"
	"dexboard/internal/domain"
)

// BulkTokens returns one derived record per token address. Same failure
// policy as BulkPairs: any stage failure drops the whole batch.
func (f *Fetcher) BulkTokens(ctx context.Context, ids []string, nativePrice float64, refs domain.BlockRefSet) map[string]domain.TokenRecord {
	records, err := f.bulkTokens(ctx, ids, nativePrice, refs)
	f.countFetch("tokens", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: bulk tokens: %v", f.network, err)
		return nil
	}
	return records
}

func (f *Fetcher) bulkTokens(ctx context.Context, ids []string, nativePrice float64, refs domain.BlockRefSet) (map[string]domain.TokenRecord, error) {
	if len(ids) == 0 {
		return map[string]domain.TokenRecord{}, nil
	}
	ids = lowercase(ids)

	current, err := f.graph.TokensByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	windows, err := f.tokenWindows(ctx, ids, refs)
	if err != nil {
		return nil, err
	}

	f.tokenFallbacks(ctx, ids, refs, windows)

	records := make(map[string]domain.TokenRecord, len(current))
	for _, snap := range current {
		records[snap.Address] = derive.TokenMetrics(
			snap,
			windows[0][snap.Address],
			windows[1][snap.Address],
			windows[2][snap.Address],
			nativePrice,
			refs,
		)
	}
	return records, nil
}

func (f *Fetcher) tokenWindows(ctx context.Context, ids []string, refs domain.BlockRefSet) ([3]map[string]*domain.TokenSnapshot, error) {
	var windows [3]map[string]*domain.TokenSnapshot
	blockNums := [3]uint64{refs.OneDay, refs.TwoDay, refs.OneWeek}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs [3]error
	)
	for i, block := range blockNums {
		windows[i] = map[string]*domain.TokenSnapshot{}
		if block == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, block uint64) {
			defer wg.Done()
			snaps, err := f.graph.TokensByIDsAtBlock(ctx, ids, block)
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

func (f *Fetcher) tokenFallbacks(ctx context.Context, ids []string, refs domain.BlockRefSet, windows [3]map[string]*domain.TokenSnapshot) {
	blockNums := [3]uint64{refs.OneDay, refs.TwoDay, refs.OneWeek}

	// Missing windows are computed before any worker starts so the window
	// maps are never read while workers write them.
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
				snap, err := f.graph.TokenAtBlock(ctx, id, g.block)
				if err != nil {
					f.logger.Printf("fetcher[%s]: token %s at block %d: %v", f.network, id, g.block, err)
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

// TopTokens fetches the n highest-volume tokens and derives their records.
func (f *Fetcher) TopTokens(ctx context.Context, n int, nativePrice float64, refs domain.BlockRefSet) map[string]domain.TokenRecord {
	ids, err := f.graph.TopTokenIDs(ctx, n)
	f.countFetch("top_tokens", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: top token ids: %v", f.network, err)
		return nil
	}
	return f.BulkTokens(ctx, ids, nativePrice, refs)
}
