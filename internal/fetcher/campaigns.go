package fetcher

import (
	"context"

	"dexboard/internal/derive"
	"dexboard/internal/domain"
)

// campaignPageSize caps how many campaigns one refresh considers.
const campaignPageSize = 200

// Campaigns fetches liquidity-mining campaigns and derives the wrapped
// pair records through the same bulk path as any other pair batch.
func (f *Fetcher) Campaigns(ctx context.Context, nativePrice float64, refs domain.BlockRefSet) []domain.CampaignRecord {
	records, err := f.campaigns(ctx, nativePrice, refs)
	f.countFetch("campaigns", err)
	if err != nil {
		f.logger.Printf("fetcher[%s]: campaigns: %v", f.network, err)
		return nil
	}
	return records
}

func (f *Fetcher) campaigns(ctx context.Context, nativePrice float64, refs domain.BlockRefSet) ([]domain.CampaignRecord, error) {
	raw, err := f.graph.Campaigns(ctx, campaignPageSize)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []domain.CampaignRecord{}, nil
	}

	pairIDs := make([]string, 0, len(raw))
	for _, c := range raw {
		pairIDs = append(pairIDs, c.Pair.Address)
	}
	pairRecords, err := f.bulkPairs(ctx, pairIDs, nativePrice, refs)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CampaignRecord, 0, len(raw))
	for _, c := range raw {
		pair, ok := pairRecords[c.Pair.Address]
		if !ok {
			// Stakable pair missing from the bulk result; derive from the
			// campaign's own snapshot without history.
			pair = derive.PairMetrics(c.Pair, nil, nil, nil, nativePrice, domain.BlockRefSet{})
		}
		records = append(records, domain.CampaignRecord{
			ID:               c.ID,
			Pair:             pair,
			RewardTokens:     c.RewardTokens,
			RewardAmounts:    c.RewardAmounts,
			StakedAmountLP:   c.StakedAmountLP,
			StakedValueQuote: derive.CampaignStakedValue(c.StakedAmountLP, pair.PairSnapshot),
			StartsAt:         c.StartsAt,
			EndsAt:           c.EndsAt,
			Locked:           c.Locked,
		})
	}
	return records, nil
}
