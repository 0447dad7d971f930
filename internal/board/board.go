// Package board is the consumer-facing read surface. Every read returns
// whatever the cache currently holds and, on a miss, enqueues the key with
// the coalescing refresher: stale-while-revalidate, with one batched fetch
// per tick instead of one fetch per caller.
package board

import (
	"log"
	"strings"
	"sync"
	"time"

	"dexboard/internal/cache"
	"dexboard/internal/domain"
	"dexboard/internal/fetcher"
	"dexboard/internal/observability"
	"dexboard/internal/series"
)

// Defaults for the refresh loops.
const (
	DefaultTick            = 2 * time.Second
	DefaultRefreshInterval = 10 * time.Minute
	DefaultTopN            = 200
)

// HeadSource reports the latest chain head block. *chain.HeadWatcher
// implements it.
type HeadSource interface {
	Head() uint64
}

// NetworkDeps bundles the per-network collaborators.
type NetworkDeps struct {
	Fetcher *fetcher.Fetcher
	Hourly  *series.HourlyBuilder
	Head    HeadSource // optional
}

// Board serves cached analytics and coordinates staleness-driven refresh.
type Board struct {
	store   *cache.Store
	deps    map[domain.Network]NetworkDeps
	logger  *log.Logger
	metrics *observability.Metrics
	persist Persister
	now     func() time.Time

	tick            time.Duration
	refreshInterval time.Duration
	topN            int

	mu      sync.Mutex
	network domain.Network
	pending map[key]struct{}
}

// Options configures a Board.
type Options struct {
	Store   *cache.Store
	Deps    map[domain.Network]NetworkDeps
	Network domain.Network
	Logger  *log.Logger
	Metrics *observability.Metrics
	Persist Persister // optional

	Tick            time.Duration
	RefreshInterval time.Duration
	TopN            int

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New creates a Board. The store must be non-nil and Deps must contain the
// starting network.
func New(opts Options) *Board {
	b := &Board{
		store:           opts.Store,
		deps:            opts.Deps,
		network:         opts.Network,
		logger:          opts.Logger,
		metrics:         opts.Metrics,
		persist:         opts.Persist,
		now:             opts.Now,
		tick:            opts.Tick,
		refreshInterval: opts.RefreshInterval,
		topN:            opts.TopN,
		pending:         make(map[key]struct{}),
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	if b.now == nil {
		b.now = time.Now
	}
	if b.tick <= 0 {
		b.tick = DefaultTick
	}
	if b.refreshInterval <= 0 {
		b.refreshInterval = DefaultRefreshInterval
	}
	if b.topN <= 0 {
		b.topN = DefaultTopN
	}
	return b
}

// Network returns the active network.
func (b *Board) Network() domain.Network {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.network
}

// SetNetwork switches the active network. The cache is cleared except for
// the per-network top-entity partitions, and the new network's top sets are
// scheduled for refresh.
func (b *Board) SetNetwork(network domain.Network) {
	b.mu.Lock()
	b.network = network
	b.mu.Unlock()

	b.ResetCache(true)
	b.enqueue(key{kind: kindTopPairs, network: network})
	b.enqueue(key{kind: kindTopTokens, network: network})
}

// ResetCache empties the cache, optionally preserving the top-entity
// partitions.
func (b *Board) ResetCache(preserveTopSets bool) {
	b.store.Clear(preserveTopSets)
	if b.metrics != nil {
		b.metrics.CacheResets.Inc()
	}
}

// GetPair returns the pair's cached record, scheduling a fetch when absent.
func (b *Board) GetPair(id string) (domain.PairRecord, bool) {
	id = strings.ToLower(id)
	rec, ok := b.store.Pair(id)
	b.countRead("pair", ok)
	if !ok {
		b.enqueue(key{kind: kindPair, id: id, network: b.Network()})
	}
	return rec, ok
}

// GetBulkPairs returns cached records for the given ids; missing ids are
// scheduled as one future batch.
func (b *Board) GetBulkPairs(ids []string) map[string]domain.PairRecord {
	network := b.Network()
	lower := make([]string, len(ids))
	for i, id := range ids {
		lower[i] = strings.ToLower(id)
	}
	found := b.store.Pairs(lower)
	for _, id := range lower {
		if _, ok := found[id]; !ok {
			b.countRead("pair", false)
			b.enqueue(key{kind: kindPair, id: id, network: network})
		} else {
			b.countRead("pair", true)
		}
	}
	return found
}

// GetToken returns the token's cached record, scheduling a fetch when absent.
func (b *Board) GetToken(id string) (domain.TokenRecord, bool) {
	id = strings.ToLower(id)
	rec, ok := b.store.Token(id)
	b.countRead("token", ok)
	if !ok {
		b.enqueue(key{kind: kindToken, id: id, network: b.Network()})
	}
	return rec, ok
}

// GetDailySeries returns the pair's cached daily chart series.
func (b *Board) GetDailySeries(id string) []domain.DailyPoint {
	id = strings.ToLower(id)
	chart := b.store.PairChart(id)
	b.countRead("pair_chart", chart != nil)
	if chart == nil {
		b.enqueue(key{kind: kindPairChart, id: id, network: b.Network()})
	}
	return chart
}

// GetTokenDailySeries returns the token's cached daily chart series.
func (b *Board) GetTokenDailySeries(id string) []domain.DailyPoint {
	id = strings.ToLower(id)
	chart := b.store.TokenChart(id)
	b.countRead("token_chart", chart != nil)
	if chart == nil {
		b.enqueue(key{kind: kindTokenChart, id: id, network: b.Network()})
	}
	return chart
}

// GetHourlySeries returns both rate directions of the pair's hourly candle
// series for one window.
func (b *Board) GetHourlySeries(id string, window domain.Window) ([2][]domain.CandlePoint, bool) {
	id = strings.ToLower(id)
	hourly, ok := b.store.PairHourly(id, window)
	b.countRead("pair_hourly", ok)
	if !ok {
		b.enqueue(key{kind: kindPairHourly, id: id, window: window, network: b.Network()})
	}
	return hourly, ok
}

// GetTxns returns the pair's cached transaction sub-series.
func (b *Board) GetTxns(id string) []domain.Transaction {
	id = strings.ToLower(id)
	txns := b.store.PairTxns(id)
	b.countRead("pair_txns", txns != nil)
	if txns == nil {
		b.enqueue(key{kind: kindPairTxns, id: id, network: b.Network()})
	}
	return txns
}

// GetTopPairs returns the network's top-pairs partition.
func (b *Board) GetTopPairs(network domain.Network) map[string]domain.PairRecord {
	part := b.store.TopPairs(network)
	b.countRead("top_pairs", part != nil)
	if part == nil {
		b.enqueue(key{kind: kindTopPairs, network: network})
	}
	return part
}

// GetTopTokens returns the network's top-tokens partition.
func (b *Board) GetTopTokens(network domain.Network) map[string]domain.TokenRecord {
	part := b.store.TopTokens(network)
	b.countRead("top_tokens", part != nil)
	if part == nil {
		b.enqueue(key{kind: kindTopTokens, network: network})
	}
	return part
}

// GetCampaigns returns cached campaigns with the given status.
func (b *Board) GetCampaigns(status domain.CampaignStatus) []domain.CampaignRecord {
	records := b.store.Campaigns(status)
	populated := b.store.HasCampaigns(status)
	b.countRead("campaigns", populated)
	if !populated {
		b.enqueue(key{kind: kindCampaigns, network: b.Network()})
	}
	return records
}

func (b *Board) countRead(namespace string, hit bool) {
	if b.metrics == nil {
		return
	}
	if hit {
		b.metrics.CacheHits.WithLabelValues(namespace).Inc()
	} else {
		b.metrics.CacheMisses.WithLabelValues(namespace).Inc()
	}
}
