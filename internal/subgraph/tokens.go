package subgraph

import (
	"context"

	"dexboard/internal/domain"
)

// TokensByIDs fetches current snapshots for all given token addresses.
func (c *Client) TokensByIDs(ctx context.Context, ids []string) ([]domain.TokenSnapshot, error) {
	return c.tokensBulk(ctx, tokensByIDsQuery, map[string]any{"ids": ids})
}

// TokensByIDsAtBlock fetches historical token snapshots pinned to one block.
func (c *Client) TokensByIDsAtBlock(ctx context.Context, ids []string, block uint64) ([]domain.TokenSnapshot, error) {
	return c.tokensBulk(ctx, tokensByIDsAtBlockQuery, map[string]any{"ids": ids, "block": block})
}

func (c *Client) tokensBulk(ctx context.Context, query string, vars map[string]any) ([]domain.TokenSnapshot, error) {
	var out struct {
		Tokens []tokenWire `json:"tokens"`
	}
	if err := c.query(ctx, query, vars, &out); err != nil {
		return nil, err
	}
	snaps := make([]domain.TokenSnapshot, 0, len(out.Tokens))
	for _, w := range out.Tokens {
		s, err := w.snapshot()
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, nil
}

// TokenAtBlock fetches a single token pinned to one block. Returns nil when
// the token does not exist at that block.
func (c *Client) TokenAtBlock(ctx context.Context, id string, block uint64) (*domain.TokenSnapshot, error) {
	var out struct {
		Token *tokenWire `json:"token"`
	}
	vars := map[string]any{"id": id, "block": block}
	if err := c.query(ctx, tokenAtBlockQuery, vars, &out); err != nil {
		return nil, err
	}
	if out.Token == nil {
		return nil, nil
	}
	s, err := out.Token.snapshot()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// TopTokenIDs returns the addresses of the n tokens with the largest
// cumulative trade volume.
func (c *Client) TopTokenIDs(ctx context.Context, n int) ([]string, error) {
	var out struct {
		Tokens []struct {
			ID string `json:"id"`
		} `json:"tokens"`
	}
	if err := c.query(ctx, topTokensQuery, map[string]any{"n": n}, &out); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(out.Tokens))
	for _, t := range out.Tokens {
		ids = append(ids, t.ID)
	}
	return ids, nil
}
