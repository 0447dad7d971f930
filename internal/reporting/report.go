package reporting

import (
	"time"

	"dexboard/internal/domain"
)

// Report is a point-in-time market overview for one network, built from the
// archived derived records.
type Report struct {
	GeneratedAt time.Time
	Network     domain.Network

	Summary   Summary
	TopPairs  []PairRow
	TopTokens []TokenRow
}

// Summary aggregates network-wide totals across all archived records.
type Summary struct {
	PairCount           int
	TokenCount          int
	TotalLiquidityQuote float64 // sum of tracked pair reserves, quote currency
	TotalOneDayVolume   float64
	TotalOneDayFees     float64 // volume scaled by each pair's fee
}

// PairRow is one line of the top-pairs table.
type PairRow struct {
	Name    string // "WETH/USDC"
	Address string

	LiquidityQuote float64
	OneDayVolume   float64
	OneWeekVolume  float64
	VolumeChange   float64 // percent
	OneDayFees     float64
	SwapFeeBps     float64
	OneDayTxns     int64
}

// TokenRow is one line of the top-tokens table.
type TokenRow struct {
	Symbol  string
	Address string

	PriceQuote     float64
	PriceChange    float64 // percent
	LiquidityQuote float64
	OneDayVolume   float64
	VolumeChange   float64 // percent
}

// pairName renders the conventional "SYM0/SYM1" label.
func pairName(rec domain.PairRecord) string {
	return rec.Token0.Symbol + "/" + rec.Token1.Symbol
}

// oneDayFees is the fee revenue implied by one day of volume.
func oneDayFees(rec domain.PairRecord) float64 {
	return rec.OneDayVolume * rec.SwapFeeBps / 10000
}
