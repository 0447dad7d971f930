package subgraph

import (
	"context"

	"dexboard/internal/domain"
)

// Campaign is a raw liquidity-mining campaign: staking metadata plus the
// stakable pair's current snapshot. The pair's derived fields are filled in
// by the fetcher.
type Campaign struct {
	ID             string
	StartsAt       int64
	EndsAt         int64
	Locked         bool
	StakedAmountLP float64
	RewardTokens   []domain.TokenIdentity
	RewardAmounts  []float64
	Pair           domain.PairSnapshot
}

// Campaigns fetches the n most recently started liquidity-mining campaigns.
func (c *Client) Campaigns(ctx context.Context, n int) ([]Campaign, error) {
	var out struct {
		Campaigns []campaignWire `json:"liquidityMiningCampaigns"`
	}
	if err := c.query(ctx, campaignsQuery, map[string]any{"n": n}, &out); err != nil {
		return nil, err
	}

	campaigns := make([]Campaign, 0, len(out.Campaigns))
	for _, w := range out.Campaigns {
		var p decParser
		cmp := Campaign{
			ID:             w.ID,
			StartsAt:       p.int(w.StartsAt),
			EndsAt:         p.int(w.EndsAt),
			Locked:         w.Locked,
			StakedAmountLP: p.float(w.StakedAmount),
		}
		for _, r := range w.Rewards {
			cmp.RewardTokens = append(cmp.RewardTokens, r.Token.identity(&p))
			cmp.RewardAmounts = append(cmp.RewardAmounts, p.float(r.Amount))
		}
		if p.err != nil {
			return nil, p.err
		}
		pair, err := w.StakablePair.snapshot()
		if err != nil {
			return nil, err
		}
		cmp.Pair = pair
		campaigns = append(campaigns, cmp)
	}
	return campaigns, nil
}
