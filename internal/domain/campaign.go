package domain

// CampaignStatus partitions liquidity-mining campaigns in the cache.
type CampaignStatus string

// Campaign statuses.
const (
	CampaignActive  CampaignStatus = "active"
	CampaignExpired CampaignStatus = "expired"
)

// CampaignRecord wraps a pair record with staking metadata for one
// liquidity-mining campaign.
type CampaignRecord struct {
	ID   string
	Pair PairRecord

	RewardTokens     []TokenIdentity
	RewardAmounts    []float64 // token units, aligned with RewardTokens
	StakedAmountLP   float64   // LP token units staked
	StakedValueQuote float64   // staked value in quote currency
	StartsAt         int64
	EndsAt           int64
	Locked           bool
}

// Status derives the campaign status at the given unix time.
func (c CampaignRecord) Status(now int64) CampaignStatus {
	if now >= c.EndsAt {
		return CampaignExpired
	}
	return CampaignActive
}
