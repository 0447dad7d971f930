package domain

// DefaultSwapFeeBps is used when the on-chain fee lookup fails for a pair.
const DefaultSwapFeeBps = 25

// PairRecord is a pair snapshot augmented with derived trend fields.
// Derived fields are recomputed from the full snapshot set on every fetch
// cycle; they are never patched incrementally.
type PairRecord struct {
	PairSnapshot

	OneDayVolume        float64 // quote currency
	OneWeekVolume       float64 // quote currency
	VolumeChange        float64 // percent vs previous one-day window
	OneDayTxns          int64
	LiquidityChange     float64 // percent vs one day ago
	TrackedReserveQuote float64 // tracked native reserve valued in quote currency
	SwapFeeBps          float64 // defaults to DefaultSwapFeeBps
}

// TokenRecord is a token snapshot augmented with derived trend fields.
type TokenRecord struct {
	TokenSnapshot

	OneDayVolume    float64
	OneWeekVolume   float64
	VolumeChange    float64
	OneDayTxns      int64
	LiquidityQuote  float64 // total locked liquidity valued in quote currency
	LiquidityChange float64
	PriceQuote      float64 // derived native price valued in quote currency
	PriceChange     float64 // percent vs one day ago
}

// TxnKind classifies a pair transaction.
type TxnKind string

// Transaction kinds surfaced in the txns sub-series.
const (
	TxnSwap TxnKind = "swap"
	TxnMint TxnKind = "mint"
	TxnBurn TxnKind = "burn"
)

// Transaction is one row of a pair's transaction sub-series.
type Transaction struct {
	Hash        string
	Kind        TxnKind
	Timestamp   int64
	AmountQuote float64
	Account     string
}
