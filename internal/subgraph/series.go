package subgraph

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dexboard/internal/domain"
)

// PairDayDatas walks the pair's daily series from startTime forward, one
// 1000-row page at a time, until a short page ends the walk.
func (c *Client) PairDayDatas(ctx context.Context, id string, startTime int64) ([]domain.DailyPoint, error) {
	return c.dayDatas(ctx, pairDayDatasQuery, "pairDayDatas", id, startTime)
}

// TokenDayDatas walks the token's daily series from startTime forward.
func (c *Client) TokenDayDatas(ctx context.Context, id string, startTime int64) ([]domain.DailyPoint, error) {
	return c.dayDatas(ctx, tokenDayDatasQuery, "tokenDayDatas", id, startTime)
}

func (c *Client) dayDatas(ctx context.Context, query, field, id string, startTime int64) ([]domain.DailyPoint, error) {
	var points []domain.DailyPoint
	for skip := 0; ; skip += DayDataPageSize {
		vars := map[string]any{"id": id, "start": startTime, "skip": skip}
		out := map[string][]dayDataWire{}
		if err := c.query(ctx, query, vars, &out); err != nil {
			return nil, err
		}
		page, ok := out[field]
		if !ok {
			return nil, fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
		}
		for _, w := range page {
			pt, err := w.point()
			if err != nil {
				return nil, err
			}
			points = append(points, pt)
		}
		if len(page) < DayDataPageSize {
			break
		}
	}
	return points, nil
}

// RatePair is a pair's token prices at one resolved block.
type RatePair struct {
	Block uint64
	Rate0 float64 // token0 price in token1 units
	Rate1 float64 // token1 price in token0 units
}

// PairRatesAtBlocks queries the pair's token prices pinned to each block,
// chunked at BlockChunkSize aliased sub-queries per request. Blocks missing
// from the response (pair did not exist yet) are omitted from the result.
func (c *Client) PairRatesAtBlocks(ctx context.Context, id string, blockNums []uint64) ([]RatePair, error) {
	var rates []RatePair
	for start := 0; start < len(blockNums); start += BlockChunkSize {
		end := start + BlockChunkSize
		if end > len(blockNums) {
			end = len(blockNums)
		}
		chunk, err := c.pairRatesChunk(ctx, id, blockNums[start:end])
		if err != nil {
			return nil, err
		}
		rates = append(rates, chunk...)
	}
	sort.Slice(rates, func(i, j int) bool { return rates[i].Block < rates[j].Block })
	return rates, nil
}

func (c *Client) pairRatesChunk(ctx context.Context, id string, blockNums []uint64) ([]RatePair, error) {
	// Aliased sub-queries carry the block pin in the alias name; GraphQL
	// variables cannot parameterize a variable number of block pins.
	var sb strings.Builder
	sb.WriteString("query PairRates {")
	for _, b := range blockNums {
		fmt.Fprintf(&sb, `
			b%d: pair(id: %q, block: { number: %d }) {
				token0Price
				token1Price
			}`, b, id, b)
	}
	sb.WriteString("\n}")

	out := map[string]*struct {
		Token0Price string `json:"token0Price"`
		Token1Price string `json:"token1Price"`
	}{}
	if err := c.query(ctx, sb.String(), nil, &out); err != nil {
		return nil, err
	}

	rates := make([]RatePair, 0, len(blockNums))
	for _, b := range blockNums {
		w := out[fmt.Sprintf("b%d", b)]
		if w == nil {
			continue
		}
		var p decParser
		r := RatePair{
			Block: b,
			Rate0: p.float(w.Token0Price),
			Rate1: p.float(w.Token1Price),
		}
		if p.err != nil {
			return nil, p.err
		}
		rates = append(rates, r)
	}
	return rates, nil
}
