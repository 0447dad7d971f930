package subgraph

import (
	"context"
	"fmt"

	"dexboard/internal/domain"
)

// NativePrice returns the native currency price in quote currency.
func (c *Client) NativePrice(ctx context.Context) (float64, error) {
	var out struct {
		Bundle *struct {
			NativeCurrencyPrice string `json:"nativeCurrencyPrice"`
		} `json:"bundle"`
	}
	if err := c.query(ctx, nativePriceQuery, nil, &out); err != nil {
		return 0, err
	}
	if out.Bundle == nil {
		return 0, fmt.Errorf("%w: missing bundle", ErrMalformedResponse)
	}
	var p decParser
	price := p.float(out.Bundle.NativeCurrencyPrice)
	return price, p.err
}

// SyncedBlock returns the indexer's latest synced block number.
func (c *Client) SyncedBlock(ctx context.Context) (uint64, error) {
	var out struct {
		Meta *struct {
			Block struct {
				Number uint64 `json:"number"`
			} `json:"block"`
		} `json:"_meta"`
	}
	if err := c.query(ctx, syncedBlockQuery, nil, &out); err != nil {
		return 0, err
	}
	if out.Meta == nil {
		return 0, fmt.Errorf("%w: missing _meta", ErrMalformedResponse)
	}
	return out.Meta.Block.Number, nil
}

// PairsByIDs fetches current snapshots for all given pair addresses in one
// bulk query.
func (c *Client) PairsByIDs(ctx context.Context, ids []string) ([]domain.PairSnapshot, error) {
	return c.pairsBulk(ctx, pairsByIDsQuery, map[string]any{"ids": ids})
}

// PairsByIDsAtBlock fetches historical snapshots for all given pair
// addresses pinned to one block.
func (c *Client) PairsByIDsAtBlock(ctx context.Context, ids []string, block uint64) ([]domain.PairSnapshot, error) {
	return c.pairsBulk(ctx, pairsByIDsAtBlockQuery, map[string]any{"ids": ids, "block": block})
}

func (c *Client) pairsBulk(ctx context.Context, query string, vars map[string]any) ([]domain.PairSnapshot, error) {
	var out struct {
		Pairs []pairWire `json:"pairs"`
	}
	if err := c.query(ctx, query, vars, &out); err != nil {
		return nil, err
	}
	snaps := make([]domain.PairSnapshot, 0, len(out.Pairs))
	for _, w := range out.Pairs {
		s, err := w.snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// PairAtBlock fetches a single pair pinned to one block. Returns nil when
// the pair does not exist at that block.
func (c *Client) PairAtBlock(ctx context.Context, id string, block uint64) (*domain.PairSnapshot, error) {
	var out struct {
		Pair *pairWire `json:"pair"`
	}
	vars := map[string]any{"id": id, "block": block}
	if err := c.query(ctx, pairAtBlockQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Pair == nil {
		return nil, nil
	}
	s, err := out.Pair.snapshot()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TopPairIDs returns the addresses of the n pairs with the largest tracked
// reserve.
func (c *Client) TopPairIDs(ctx context.Context, n int) ([]string, error) {
	var out struct {
		Pairs []struct {
			ID string `json:"id"`
		} `json:"pairs"`
	}
	if err := c.query(ctx, topPairsQuery, map[string]any{"n": n}, &out); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Pairs))
	for _, p := range out.Pairs {
		ids = append(ids, p.ID)
	}
	return ids, nil
}
