// Package fetcher orchestrates bulk entity retrieval: current snapshots,
// historical window snapshots, per-entity fallbacks, on-chain fee reads, and
// the fold into derived records.
//
// Failure policy: any stage that fails is caught at the exported call
// boundary and logged; the call returns nothing for that batch rather than
// partially-written state. Callers treat "no result" as "retry later", never
// as "entity has zero activity".
package fetcher

import (
	"context"
	"log"
	"time"

	"dexboard/internal/domain"
	"dexboard/internal/observability"
	"dexboard/internal/subgraph"
)

// maxFallbackWorkers bounds the parallel map over entities during
// per-entity historical fallbacks.
const maxFallbackWorkers = 8

// GraphSource is the subgraph surface the fetcher consumes.
// *subgraph.Client implements it.
type GraphSource interface {
	NativePrice(ctx context.Context) (float64, error)
	PairsByIDs(ctx context.Context, ids []string) ([]domain.PairSnapshot, error)
	PairsByIDsAtBlock(ctx context.Context, ids []string, block uint64) ([]domain.PairSnapshot, error)
	PairAtBlock(ctx context.Context, id string, block uint64) (*domain.PairSnapshot, error)
	TopPairIDs(ctx context.Context, n int) ([]string, error)
	TokensByIDs(ctx context.Context, ids []string) ([]domain.TokenSnapshot, error)
	TokensByIDsAtBlock(ctx context.Context, ids []string, block uint64) ([]domain.TokenSnapshot, error)
	TokenAtBlock(ctx context.Context, id string, block uint64) (*domain.TokenSnapshot, error)
	TopTokenIDs(ctx context.Context, n int) ([]string, error)
	PairDayDatas(ctx context.Context, id string, startTime int64) ([]domain.DailyPoint, error)
	TokenDayDatas(ctx context.Context, id string, startTime int64) ([]domain.DailyPoint, error)
	PairTxns(ctx context.Context, id string) ([]domain.Transaction, error)
	Campaigns(ctx context.Context, n int) ([]subgraph.Campaign, error)
}

// FeeSource reads per-pair swap fees in one batched contract call.
// *chain.Multicall implements it.
type FeeSource interface {
	SwapFees(ctx context.Context, pairAddrs []string) (map[string]float64, error)
}

// RefSource resolves the historical block reference set.
// *blocks.Resolver implements it.
type RefSource interface {
	RefSet(ctx context.Context, now time.Time, override *domain.BlockRefSet) (domain.BlockRefSet, error)
}

// Fetcher retrieves and derives entity records for one network.
type Fetcher struct {
	network domain.Network
	graph   GraphSource
	fees    FeeSource
	refs    RefSource
	logger  *log.Logger
	metrics *observability.Metrics
	now     func() time.Time
}

// Options configures a Fetcher.
type Options struct {
	Network domain.Network
	Graph   GraphSource
	Fees    FeeSource
	Refs    RefSource
	Logger  *log.Logger
	Metrics *observability.Metrics

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	f := &Fetcher{
		network: opts.Network,
		graph:   opts.Graph,
		fees:    opts.Fees,
		refs:    opts.Refs,
		logger:  opts.Logger,
		metrics: opts.Metrics,
		now:     opts.Now,
	}
	if f.logger == nil {
		f.logger = log.Default()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// Network returns the network this fetcher serves.
func (f *Fetcher) Network() domain.Network {
	return f.network
}

// NativePrice returns the native currency price in quote currency, or 0 on
// failure. Derivation is gated on a non-zero price.
func (f *Fetcher) NativePrice(ctx context.Context) float64 {
	price, err := f.graph.NativePrice(ctx)
	if err != nil {
		f.logger.Printf("fetcher[%s]: native price: %v", f.network, err)
		return 0
	}
	return price
}

// RefSet resolves the block reference set for this cycle, degrading to an
// empty set (all historical snapshots treated as absent) when the block
// index is unavailable.
func (f *Fetcher) RefSet(ctx context.Context, override *domain.BlockRefSet) domain.BlockRefSet {
	refs, err := f.refs.RefSet(ctx, f.now(), override)
	if err != nil {
		f.logger.Printf("fetcher[%s]: resolve block refs: %v", f.network, err)
		return domain.BlockRefSet{}
	}
	return refs
}

func (f *Fetcher) countFetch(kind string, err error) {
	if f.metrics == nil {
		return
	}
	f.metrics.FetchesTotal.WithLabelValues(kind).Inc()
	if err != nil {
		f.metrics.FetchErrors.WithLabelValues(kind).Inc()
	}
}
