package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"dexboard/internal/domain"
	"dexboard/internal/subgraph"
)

// fakeGraph serves canned snapshots keyed by block; the zero block serves
// current snapshots.
type fakeGraph struct {
	price    float64
	priceErr error

	pairs        map[uint64]map[string]domain.PairSnapshot
	tokens       map[uint64]map[string]domain.TokenSnapshot
	topPairIDs   []string
	topTokenIDs  []string
	dayDatas     []domain.DailyPoint
	txns         []domain.Transaction
	campaignList []subgraph.Campaign

	pairsErr        error
	pairsAtBlockErr error

	// hiddenFromBulk ids are omitted from bulk at-block results but still
	// served by single-entity queries.
	hiddenFromBulk map[string]bool

	singlePairQueries atomic.Int64
}

func (g *fakeGraph) NativePrice(_ context.Context) (float64, error) {
	return g.price, g.priceErr
}

func (g *fakeGraph) PairsByIDs(_ context.Context, ids []string) ([]domain.PairSnapshot, error) {
	if g.pairsErr != nil {
		return nil, g.pairsErr
	}
	return g.pairsAt(0, ids), nil
}

func (g *fakeGraph) PairsByIDsAtBlock(_ context.Context, ids []string, block uint64) ([]domain.PairSnapshot, error) {
	if g.pairsAtBlockErr != nil {
		return nil, g.pairsAtBlockErr
	}
	var out []domain.PairSnapshot
	for _, snap := range g.pairsAt(block, ids) {
		if g.hiddenFromBulk[snap.Address] {
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

func (g *fakeGraph) PairAtBlock(_ context.Context, id string, block uint64) (*domain.PairSnapshot, error) {
	g.singlePairQueries.Add(1)
	if snap, ok := g.pairs[block][id]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (g *fakeGraph) TopPairIDs(_ context.Context, n int) ([]string, error) {
	if n < len(g.topPairIDs) {
		return g.topPairIDs[:n], nil
	}
	return g.topPairIDs, nil
}

func (g *fakeGraph) TokensByIDs(_ context.Context, ids []string) ([]domain.TokenSnapshot, error) {
	return g.tokensAt(0, ids), nil
}

func (g *fakeGraph) TokensByIDsAtBlock(_ context.Context, ids []string, block uint64) ([]domain.TokenSnapshot, error) {
	return g.tokensAt(block, ids), nil
}

func (g *fakeGraph) TokenAtBlock(_ context.Context, id string, block uint64) (*domain.TokenSnapshot, error) {
	if snap, ok := g.tokens[block][id]; ok {
		return &snap, nil
	}
	return nil, nil
}

func (g *fakeGraph) TopTokenIDs(_ context.Context, n int) ([]string, error) {
	if n < len(g.topTokenIDs) {
		return g.topTokenIDs[:n], nil
	}
	return g.topTokenIDs, nil
}

func (g *fakeGraph) PairDayDatas(_ context.Context, _ string, _ int64) ([]domain.DailyPoint, error) {
	return g.dayDatas, nil
}

func (g *fakeGraph) TokenDayDatas(_ context.Context, _ string, _ int64) ([]domain.DailyPoint, error) {
	return g.dayDatas, nil
}

func (g *fakeGraph) PairTxns(_ context.Context, _ string) ([]domain.Transaction, error) {
	return g.txns, nil
}

func (g *fakeGraph) Campaigns(_ context.Context, _ int) ([]subgraph.Campaign, error) {
	return g.campaignList, nil
}

func (g *fakeGraph) pairsAt(block uint64, ids []string) []domain.PairSnapshot {
	var out []domain.PairSnapshot
	for _, id := range ids {
		if snap, ok := g.pairs[block][id]; ok {
			out = append(out, snap)
		}
	}
	return out
}

func (g *fakeGraph) tokensAt(block uint64, ids []string) []domain.TokenSnapshot {
	var out []domain.TokenSnapshot
	for _, id := range ids {
		if snap, ok := g.tokens[block][id]; ok {
			out = append(out, snap)
		}
	}
	return out
}

type fakeFees struct {
	fees map[string]float64
	err  error
}

func (f *fakeFees) SwapFees(_ context.Context, _ []string) (map[string]float64, error) {
	return f.fees, f.err
}

type fakeRefs struct {
	refs domain.BlockRefSet
	err  error
}

func (f *fakeRefs) RefSet(_ context.Context, _ time.Time, _ *domain.BlockRefSet) (domain.BlockRefSet, error) {
	return f.refs, f.err
}

func newTestFetcher(graph *fakeGraph, fees FeeSource) *Fetcher {
	return New(Options{
		Network: domain.NetworkMainnet,
		Graph:   graph,
		Fees:    fees,
		Refs:    &fakeRefs{},
	})
}

func TestBulkPairs_DerivesRecords(t *testing.T) {
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {"0xa": {Address: "0xa", VolumeQuote: 1000, TxCount: 50, CreatedAtBlock: 10}},
			90: {"0xa": {Address: "0xa", VolumeQuote: 700, TxCount: 30}},
			80: {"0xa": {Address: "0xa", VolumeQuote: 500, TxCount: 20}},
			50: {"0xa": {Address: "0xa", VolumeQuote: 100}},
		},
	}
	f := newTestFetcher(graph, nil)
	refs := domain.BlockRefSet{OneDay: 90, TwoDay: 80, OneWeek: 50}

	records := f.BulkPairs(context.Background(), []string{"0xA"}, 2.0, refs)

	rec, ok := records["0xa"]
	if !ok {
		t.Fatalf("expected record under lowercased id, got %v", records)
	}
	if rec.OneDayVolume != 300 {
		t.Errorf("expected one-day volume 300, got %f", rec.OneDayVolume)
	}
	if rec.OneWeekVolume != 900 {
		t.Errorf("expected one-week volume 900, got %f", rec.OneWeekVolume)
	}
	if rec.SwapFeeBps != domain.DefaultSwapFeeBps {
		t.Errorf("expected default fee with no fee source, got %f", rec.SwapFeeBps)
	}
}

func TestBulkPairs_RealFeeOverridesDefault(t *testing.T) {
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {"0xa": {Address: "0xa", VolumeQuote: 100, CreatedAtBlock: 10}},
		},
	}
	fees := &fakeFees{fees: map[string]float64{"0xa": 30}}
	f := newTestFetcher(graph, fees)

	records := f.BulkPairs(context.Background(), []string{"0xa"}, 1.0, domain.BlockRefSet{})

	if records["0xa"].SwapFeeBps != 30 {
		t.Errorf("expected on-chain fee 30, got %f", records["0xa"].SwapFeeBps)
	}
}

func TestBulkPairs_FeeLookupFailureDegradesToDefault(t *testing.T) {
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {"0xa": {Address: "0xa", VolumeQuote: 100, CreatedAtBlock: 10}},
		},
	}
	fees := &fakeFees{err: errors.New("rpc down")}
	f := newTestFetcher(graph, fees)

	records := f.BulkPairs(context.Background(), []string{"0xa"}, 1.0, domain.BlockRefSet{})

	if len(records) != 1 {
		t.Fatalf("fee failure must not drop the batch, got %v", records)
	}
	if records["0xa"].SwapFeeBps != domain.DefaultSwapFeeBps {
		t.Errorf("expected default fee after lookup failure, got %f", records["0xa"].SwapFeeBps)
	}
}

func TestBulkPairs_FallbackServesMissingWindow(t *testing.T) {
	// 0xb is missing from the bulk result at block 90 but resolvable through
	// the single-entity path.
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {
				"0xa": {Address: "0xa", VolumeQuote: 1000, CreatedAtBlock: 10},
				"0xb": {Address: "0xb", VolumeQuote: 600, CreatedAtBlock: 10},
			},
			90: {
				"0xa": {Address: "0xa", VolumeQuote: 700},
				"0xb": {Address: "0xb", VolumeQuote: 400},
			},
		},
		hiddenFromBulk: map[string]bool{"0xb": true},
	}
	f := newTestFetcher(graph, nil)
	refs := domain.BlockRefSet{OneDay: 90}

	records := f.BulkPairs(context.Background(), []string{"0xa", "0xb"}, 1.0, refs)

	if records["0xb"].OneDayVolume != 200 {
		t.Errorf("expected fallback-served window, got volume %f", records["0xb"].OneDayVolume)
	}
	if graph.singlePairQueries.Load() == 0 {
		t.Error("expected at least one single-entity fallback query")
	}
}

func TestBulkPairs_ConcurrentFallbacks(t *testing.T) {
	// A large batch whose historical windows all miss the bulk result
	// drives every id through the parallel fallback path at once. Run
	// under the race detector, this checks the window maps are only
	// touched under the fallback lock.
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0:  {},
			90: {},
		},
		hiddenFromBulk: map[string]bool{},
	}
	var ids []string
	for i := 0; i < 64; i++ {
		id := fmt.Sprintf("0xp%02d", i)
		graph.pairs[0][id] = domain.PairSnapshot{Address: id, VolumeQuote: 500, CreatedAtBlock: 10}
		graph.pairs[90][id] = domain.PairSnapshot{Address: id, VolumeQuote: 300}
		graph.hiddenFromBulk[id] = true
		ids = append(ids, id)
	}
	f := newTestFetcher(graph, nil)
	refs := domain.BlockRefSet{OneDay: 90, TwoDay: 80, OneWeek: 50}

	records := f.BulkPairs(context.Background(), ids, 1.0, refs)

	if len(records) != 64 {
		t.Fatalf("expected 64 records, got %d", len(records))
	}
	for _, id := range ids {
		if records[id].OneDayVolume != 200 {
			t.Errorf("pair %s: expected fallback-served volume 200, got %f", id, records[id].OneDayVolume)
		}
	}
}

func TestBulkPairs_BulkFailureDropsBatch(t *testing.T) {
	graph := &fakeGraph{pairsErr: errors.New("subgraph down")}
	f := newTestFetcher(graph, nil)

	if records := f.BulkPairs(context.Background(), []string{"0xa"}, 1.0, domain.BlockRefSet{}); records != nil {
		t.Errorf("expected nil on stage failure, got %v", records)
	}
}

func TestBulkPairs_HistoricalWindowFailureDropsBatch(t *testing.T) {
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {"0xa": {Address: "0xa", VolumeQuote: 100}},
		},
		pairsAtBlockErr: errors.New("subgraph down"),
	}
	f := newTestFetcher(graph, nil)
	refs := domain.BlockRefSet{OneDay: 90}

	if records := f.BulkPairs(context.Background(), []string{"0xa"}, 1.0, refs); records != nil {
		t.Errorf("expected nil on window failure, got %v", records)
	}
}

func TestBulkPairs_Empty(t *testing.T) {
	f := newTestFetcher(&fakeGraph{}, nil)
	records := f.BulkPairs(context.Background(), nil, 1.0, domain.BlockRefSet{})
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil map, got %v", records)
	}
}

func TestNativePrice_FailureReturnsZero(t *testing.T) {
	f := newTestFetcher(&fakeGraph{priceErr: errors.New("down")}, nil)
	if price := f.NativePrice(context.Background()); price != 0 {
		t.Errorf("expected 0 on failure, got %f", price)
	}
}

func TestRefSet_DegradesToEmpty(t *testing.T) {
	f := New(Options{
		Network: domain.NetworkMainnet,
		Graph:   &fakeGraph{},
		Refs:    &fakeRefs{err: errors.New("block index down")},
	})
	refs := f.RefSet(context.Background(), nil)
	if refs.HasOneDay() || refs.HasTwoDay() || refs.HasOneWeek() {
		t.Errorf("expected empty ref set, got %+v", refs)
	}
}

func TestTopPairs(t *testing.T) {
	graph := &fakeGraph{
		topPairIDs: []string{"0xa"},
		pairs: map[uint64]map[string]domain.PairSnapshot{
			0: {"0xa": {Address: "0xa", VolumeQuote: 100, CreatedAtBlock: 10}},
		},
	}
	f := newTestFetcher(graph, nil)

	records := f.TopPairs(context.Background(), 10, 1.0, domain.BlockRefSet{})
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
}

func TestBulkTokens_DerivesRecords(t *testing.T) {
	graph := &fakeGraph{
		tokens: map[uint64]map[string]domain.TokenSnapshot{
			0: {"0xt": {
				Address:              "0xt",
				TradeVolumeQuote:     900,
				TotalLiquidityTokens: 100,
				DerivedNative:        0.5,
				CreatedAtBlock:       10,
			}},
			90: {"0xt": {TradeVolumeQuote: 600, DerivedNative: 0.4, TotalLiquidityTokens: 100}},
		},
	}
	f := newTestFetcher(graph, nil)
	refs := domain.BlockRefSet{OneDay: 90}

	records := f.BulkTokens(context.Background(), []string{"0xT"}, 2.0, refs)

	rec, ok := records["0xt"]
	if !ok {
		t.Fatalf("expected record, got %v", records)
	}
	if rec.OneDayVolume != 300 {
		t.Errorf("expected one-day volume 300, got %f", rec.OneDayVolume)
	}
	if rec.PriceQuote != 1.0 {
		t.Errorf("expected price 1.0, got %f", rec.PriceQuote)
	}
}

func TestPairDaily_Normalizes(t *testing.T) {
	now := time.Unix(6*24*3600+12*3600, 0).UTC()
	graph := &fakeGraph{
		dayDatas: []domain.DailyPoint{
			{Date: 0, Volume: 100, Reserve: 1000},
			{Date: 2 * 24 * 3600, Volume: 50, Reserve: 1200},
			{Date: 5 * 24 * 3600, Volume: 80, Reserve: 900},
		},
	}
	f := New(Options{
		Network: domain.NetworkMainnet,
		Graph:   graph,
		Refs:    &fakeRefs{},
		Now:     func() time.Time { return now },
	})

	out := f.PairDaily(context.Background(), "0xA")
	if len(out) != 6 {
		t.Fatalf("expected 6 gap-filled points, got %d", len(out))
	}
}

func TestCampaigns_DerivesThroughBulkPath(t *testing.T) {
	pair := domain.PairSnapshot{Address: "0xa", VolumeQuote: 100, TotalSupplyLP: 1000, ReserveQuote: 50000, CreatedAtBlock: 10}
	graph := &fakeGraph{
		pairs: map[uint64]map[string]domain.PairSnapshot{0: {"0xa": pair}},
		campaignList: []subgraph.Campaign{{
			ID:             "c1",
			Pair:           pair,
			StakedAmountLP: 100,
			StartsAt:       1000,
			EndsAt:         2000,
		}},
	}
	f := newTestFetcher(graph, nil)

	records := f.Campaigns(context.Background(), 1.0, domain.BlockRefSet{})
	if len(records) != 1 {
		t.Fatalf("expected 1 campaign, got %d", len(records))
	}
	c := records[0]
	if c.Pair.Address != "0xa" {
		t.Errorf("expected derived pair record, got %+v", c.Pair)
	}
	if c.StakedValueQuote != 5000 {
		t.Errorf("expected staked value 5000, got %f", c.StakedValueQuote)
	}
}
