package board

import (
	"context"
	"time"

	"dexboard/internal/domain"
)

// key identifies one cacheable unit of work for the refresher.
type key struct {
	kind    keyKind
	id      string
	window  domain.Window
	network domain.Network
}

type keyKind uint8

const (
	kindPair keyKind = iota + 1
	kindToken
	kindPairChart
	kindTokenChart
	kindPairHourly
	kindPairTxns
	kindCampaigns
	kindTopPairs
	kindTopTokens
)

// enqueue registers a stale key. Duplicate keys within one tick collapse
// into a single unit of work.
func (b *Board) enqueue(k key) {
	b.mu.Lock()
	b.pending[k] = struct{}{}
	b.mu.Unlock()
}

// Run drives the refresher until ctx is cancelled: every tick it drains the
// pending key set into batched fetches, and every refresh interval it
// re-schedules the active network's top sets and campaigns.
func (b *Board) Run(ctx context.Context) {
	tick := time.NewTicker(b.tick)
	refresh := time.NewTicker(b.refreshInterval)
	defer tick.Stop()
	defer refresh.Stop()

	// Populate top sets immediately on startup.
	b.scheduleFullRefresh()

	for {
		select {
		case <-ctx.Done():
			return
		case <-refresh.C:
			b.scheduleFullRefresh()
		case <-tick.C:
			b.drain(ctx)
		}
	}
}

func (b *Board) scheduleFullRefresh() {
	network := b.Network()
	b.enqueue(key{kind: kindTopPairs, network: network})
	b.enqueue(key{kind: kindTopTokens, network: network})
	b.enqueue(key{kind: kindCampaigns, network: network})
}

// drain takes the current pending set and services it with one batched
// fetch per kind. Fetch failures leave keys unserved; a later read will
// re-enqueue them. Last write wins in the cache.
func (b *Board) drain(ctx context.Context) {
	b.mu.Lock()
	if len(b.pending) == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.pending
	b.pending = make(map[key]struct{})
	b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.CoalescedKeys.Add(float64(len(batch)))
	}
	start := time.Now()

	byNetwork := make(map[domain.Network][]key)
	for k := range batch {
		byNetwork[k.network] = append(byNetwork[k.network], k)
	}
	for network, keys := range byNetwork {
		b.drainNetwork(ctx, network, keys)
	}

	if b.metrics != nil {
		b.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	}

	if b.metrics != nil {
		for ns, n := range b.store.Counts() {
			b.metrics.CachedEntities.WithLabelValues(ns).Set(float64(n))
		}
	}
}

func (b *Board) drainNetwork(ctx context.Context, network domain.Network, keys []key) {
	deps, ok := b.deps[network]
	if !ok {
		b.logger.Printf("board: no deps for network %s, dropping %d keys", network, len(keys))
		return
	}
	f := deps.Fetcher

	// One price and one block reference set per drain, not per entity.
	price := f.NativePrice(ctx)
	if price == 0 {
		// Derivation must not run without a price; put the keys back.
		b.logger.Printf("board[%s]: native price unavailable, deferring %d keys", network, len(keys))
		for _, k := range keys {
			b.enqueue(k)
		}
		return
	}
	refs := f.RefSet(ctx, nil)
	syncedHead := uint64(0)
	if deps.Head != nil {
		syncedHead = deps.Head.Head()
		refs.SyncedHead = syncedHead
		if b.metrics != nil && syncedHead > 0 {
			b.metrics.SyncedHeadBlock.Set(float64(syncedHead))
		}
	}

	var pairIDs, tokenIDs []string
	for _, k := range keys {
		switch k.kind {
		case kindPair:
			pairIDs = append(pairIDs, k.id)
		case kindToken:
			tokenIDs = append(tokenIDs, k.id)
		}
	}

	if len(pairIDs) > 0 {
		for id, rec := range f.BulkPairs(ctx, pairIDs, price, refs) {
			b.store.PutPair(id, rec)
		}
	}
	if len(tokenIDs) > 0 {
		for id, rec := range f.BulkTokens(ctx, tokenIDs, price, refs) {
			b.store.PutToken(id, rec)
		}
	}

	for _, k := range keys {
		switch k.kind {
		case kindPairChart:
			if chart := f.PairDaily(ctx, k.id); chart != nil {
				b.store.PutPairChart(k.id, chart)
				b.persistDaily(ctx, network, k.id, chart)
			}
		case kindTokenChart:
			if chart := f.TokenDaily(ctx, k.id); chart != nil {
				b.store.PutTokenChart(k.id, chart)
				b.persistDaily(ctx, network, k.id, chart)
			}
		case kindPairHourly:
			hourly, err := deps.Hourly.Build(ctx, k.id, k.window, b.now(), syncedHead)
			if err != nil {
				b.logger.Printf("board[%s]: hourly %s %s: %v", network, k.id, k.window, err)
				continue
			}
			b.store.PutPairHourly(k.id, k.window, hourly)
			b.persistCandles(ctx, network, k.id, k.window, hourly)
		case kindPairTxns:
			if txns := f.Txns(ctx, k.id); txns != nil {
				b.store.PutPairTxns(k.id, txns)
			}
		case kindTopPairs:
			records := f.TopPairs(ctx, b.topN, price, refs)
			if records == nil {
				continue
			}
			b.store.PutTopPairs(network, records)
			for id, rec := range records {
				b.store.PutPair(id, rec)
			}
			b.persistPairs(ctx, network, records)
		case kindTopTokens:
			records := f.TopTokens(ctx, b.topN, price, refs)
			if records == nil {
				continue
			}
			b.store.PutTopTokens(network, records)
			for id, rec := range records {
				b.store.PutToken(id, rec)
			}
			b.persistTokens(ctx, network, records)
		case kindCampaigns:
			records := f.Campaigns(ctx, price, refs)
			if records == nil {
				continue
			}
			now := b.now().Unix()
			parts := map[domain.CampaignStatus][]domain.CampaignRecord{
				domain.CampaignActive:  {},
				domain.CampaignExpired: {},
			}
			for _, c := range records {
				status := c.Status(now)
				parts[status] = append(parts[status], c)
			}
			for status, part := range parts {
				b.store.PutCampaigns(status, part)
			}
		}
	}

	if b.metrics != nil {
		b.metrics.RefreshCycles.WithLabelValues("ok").Inc()
		b.metrics.LastRefresh.SetToCurrentTime()
	}
}
