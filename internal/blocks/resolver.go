// Package blocks maps UTC timestamps to chain block numbers through the
// block-index subgraph.
package blocks

import (
	"context"
	"time"

	"dexboard/internal/domain"
	"dexboard/internal/observability"
)

// BlockSource answers bulk timestamp-to-block queries.
// *subgraph.BlocksClient implements it.
type BlockSource interface {
	BlocksForTimestamps(ctx context.Context, timestamps []int64) (map[int64]uint64, error)
}

// Resolver resolves timestamps to the closest block at or before each.
// Resolution fails soft: a timestamp the source cannot answer yields block 0
// and callers treat the corresponding historical snapshot as absent.
type Resolver struct {
	source  BlockSource
	metrics *observability.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMetrics counts resolved and unresolved timestamps.
func WithMetrics(m *observability.Metrics) ResolverOption {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver over the given source.
func NewResolver(source BlockSource, opts ...ResolverOption) *Resolver {
	r := &Resolver{source: source}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ForTimestamps returns one block number per timestamp, in input order.
// Unresolvable timestamps are 0 in the result.
func (r *Resolver) ForTimestamps(ctx context.Context, timestamps []int64) ([]uint64, error) {
	if len(timestamps) == 0 {
		return nil, nil
	}

	resolved, err := r.source.BlocksForTimestamps(ctx, timestamps)
	if err != nil {
		return nil, err
	}

	out := make([]uint64, len(timestamps))
	for i, ts := range timestamps {
		out[i] = resolved[ts]
		if r.metrics != nil {
			if out[i] == 0 {
				r.metrics.UnresolvedTimestamp.Inc()
			} else {
				r.metrics.BlockResolutions.Inc()
			}
		}
	}
	return out, nil
}

// RefSet resolves the one-day, two-day and one-week reference blocks
// relative to now in a single round trip. When override is non-nil the
// caller already holds a more authoritative set (e.g. derived from the
// indexer's synced head) and resolution is skipped entirely.
func (r *Resolver) RefSet(ctx context.Context, now time.Time, override *domain.BlockRefSet) (domain.BlockRefSet, error) {
	if override != nil {
		return *override, nil
	}

	t := now.UTC().Unix()
	timestamps := []int64{
		t - 24*3600,
		t - 2*24*3600,
		t - 7*24*3600,
	}
	nums, err := r.ForTimestamps(ctx, timestamps)
	if err != nil {
		return domain.BlockRefSet{}, err
	}
	return domain.BlockRefSet{
		OneDay:  nums[0],
		TwoDay:  nums[1],
		OneWeek: nums[2],
	}, nil
}
