package reporting

import (
	"context"
	"time"

	"dexboard/internal/domain"
	"dexboard/internal/storage"
)

// DefaultTopN caps the table length of generated reports.
const DefaultTopN = 25

// Generator produces reports from archived records.
type Generator struct {
	pairStore  storage.PairRecordStore
	tokenStore storage.TokenRecordStore
	topN       int
	now        func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator(pairStore storage.PairRecordStore, tokenStore storage.TokenRecordStore) *Generator {
	return &Generator{
		pairStore:  pairStore,
		tokenStore: tokenStore,
		topN:       DefaultTopN,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithTopN overrides the table length cap.
func (g *Generator) WithTopN(n int) *Generator {
	if n > 0 {
		g.topN = n
	}
	return g
}

// Generate produces a complete market report for one network.
func (g *Generator) Generate(ctx context.Context, network domain.Network) (*Report, error) {
	pairs, err := g.pairStore.GetByNetwork(ctx, network)
	if err != nil {
		return nil, err
	}
	tokens, err := g.tokenStore.GetByNetwork(ctx, network)
	if err != nil {
		return nil, err
	}

	report := &Report{
		GeneratedAt: g.now(),
		Network:     network,
		Summary:     g.summarize(pairs, tokens),
		TopPairs:    g.pairRows(pairs),
		TopTokens:   g.tokenRows(tokens),
	}
	return report, nil
}

func (g *Generator) summarize(pairs []domain.PairRecord, tokens []domain.TokenRecord) Summary {
	s := Summary{
		PairCount:  len(pairs),
		TokenCount: len(tokens),
	}
	for _, p := range pairs {
		s.TotalLiquidityQuote += p.TrackedReserveQuote
		s.TotalOneDayVolume += p.OneDayVolume
		s.TotalOneDayFees += oneDayFees(p)
	}
	return s
}

// pairRows converts the already reserve-sorted records into table rows.
func (g *Generator) pairRows(pairs []domain.PairRecord) []PairRow {
	n := len(pairs)
	if n > g.topN {
		n = g.topN
	}

	rows := make([]PairRow, 0, n)
	for _, p := range pairs[:n] {
		rows = append(rows, PairRow{
			Name:           pairName(p),
			Address:        p.Address,
			LiquidityQuote: p.TrackedReserveQuote,
			OneDayVolume:   p.OneDayVolume,
			OneWeekVolume:  p.OneWeekVolume,
			VolumeChange:   p.VolumeChange,
			OneDayFees:     oneDayFees(p),
			SwapFeeBps:     p.SwapFeeBps,
			OneDayTxns:     p.OneDayTxns,
		})
	}
	return rows
}

func (g *Generator) tokenRows(tokens []domain.TokenRecord) []TokenRow {
	n := len(tokens)
	if n > g.topN {
		n = g.topN
	}

	rows := make([]TokenRow, 0, n)
	for _, t := range tokens[:n] {
		rows = append(rows, TokenRow{
			Symbol:         t.Symbol,
			Address:        t.Address,
			PriceQuote:     t.PriceQuote,
			PriceChange:    t.PriceChange,
			LiquidityQuote: t.LiquidityQuote,
			OneDayVolume:   t.OneDayVolume,
			VolumeChange:   t.VolumeChange,
		})
	}
	return rows
}
