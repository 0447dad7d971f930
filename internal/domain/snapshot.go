package domain

// TokenIdentity is the minimal description of a token referenced by a pair.
type TokenIdentity struct {
	Address  string // checksummed 0x address, lowercased for cache keys
	Symbol   string
	Name     string
	Decimals int
}

// PairSnapshot holds raw subgraph fields for a trading pair as of one block.
// Snapshots are immutable once fetched; current and historical snapshots for
// the same pair are combined during derivation, never merged destructively.
type PairSnapshot struct {
	Address string
	Token0  TokenIdentity
	Token1  TokenIdentity

	Reserve0             float64 // token0 units in the pool
	Reserve1             float64 // token1 units in the pool
	ReserveQuote         float64 // pooled value in quote currency
	TrackedReserveNative float64 // whitelisted-token reserve in native currency

	VolumeQuote          float64 // cumulative tracked volume, quote currency
	UntrackedVolumeQuote float64 // cumulative volume ignoring the whitelist
	TotalSupplyLP        float64 // LP tokens outstanding
	TxCount              int64

	Token0PriceNative float64
	Token1PriceNative float64

	CreatedAtBlock     uint64
	CreatedAtTimestamp int64
}

// TokenSnapshot holds raw subgraph fields for a token as of one block.
type TokenSnapshot struct {
	Address  string
	Symbol   string
	Name     string
	Decimals int

	TradeVolumeQuote     float64 // cumulative tracked trade volume, quote currency
	UntrackedVolumeQuote float64
	TxCount              int64

	TotalLiquidityTokens float64 // token units locked across all pairs
	DerivedNative        float64 // token price in native currency

	// CreatedAtBlock is zero for subgraph-fetched tokens: the upstream
	// token entity carries no creation field, unlike pairs. Archived
	// records and callers that know the block may set it; zero disables
	// the created-after-reference check in derivation.
	CreatedAtBlock uint64
}
