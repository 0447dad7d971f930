package subgraph

import (
	"fmt"
	"strconv"
	"strings"

	"dexboard/internal/domain"
)

// The subgraph encodes decimals and big integers as strings. They are parsed
// into float64 here, at the boundary: these are display-grade analytics, and
// float64 matches the rest of the numeric model. A field that fails to parse
// marks the whole response malformed.

// decParser accumulates the first parse error across many fields.
type decParser struct {
	err error
}

func (p *decParser) float(s string) float64 {
	if p.err != nil {
		return 0
	}
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: bad decimal %q", ErrMalformedResponse, s)
		return 0
	}
	return v
}

func (p *decParser) int(s string) int64 {
	if p.err != nil || s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%w: bad integer %q", ErrMalformedResponse, s)
		return 0
	}
	return v
}

type tokenIdentityWire struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals string `json:"decimals"`
}

func (w tokenIdentityWire) identity(p *decParser) domain.TokenIdentity {
	return domain.TokenIdentity{
		Address:  strings.ToLower(w.ID),
		Symbol:   w.Symbol,
		Name:     w.Name,
		Decimals: int(p.int(w.Decimals)),
	}
}

type pairWire struct {
	ID                   string            `json:"id"`
	Token0               tokenIdentityWire `json:"token0"`
	Token1               tokenIdentityWire `json:"token1"`
	Reserve0             string            `json:"reserve0"`
	Reserve1             string            `json:"reserve1"`
	ReserveUSD           string            `json:"reserveUSD"`
	TrackedReserveNative string            `json:"trackedReserveNativeCurrency"`
	VolumeUSD            string            `json:"volumeUSD"`
	UntrackedVolumeUSD   string            `json:"untrackedVolumeUSD"`
	TotalSupply          string            `json:"totalSupply"`
	TxCount              string            `json:"txCount"`
	Token0Price          string            `json:"token0Price"`
	Token1Price          string            `json:"token1Price"`
	CreatedAtBlockNumber string            `json:"createdAtBlockNumber"`
	CreatedAtTimestamp   string            `json:"createdAtTimestamp"`
}

func (w pairWire) snapshot() (domain.PairSnapshot, error) {
	var p decParser
	s := domain.PairSnapshot{
		Address:              strings.ToLower(w.ID),
		Token0:               w.Token0.identity(&p),
		Token1:               w.Token1.identity(&p),
		Reserve0:             p.float(w.Reserve0),
		Reserve1:             p.float(w.Reserve1),
		ReserveQuote:         p.float(w.ReserveUSD),
		TrackedReserveNative: p.float(w.TrackedReserveNative),
		VolumeQuote:          p.float(w.VolumeUSD),
		UntrackedVolumeQuote: p.float(w.UntrackedVolumeUSD),
		TotalSupplyLP:        p.float(w.TotalSupply),
		TxCount:              p.int(w.TxCount),
		Token0PriceNative:    p.float(w.Token0Price),
		Token1PriceNative:    p.float(w.Token1Price),
		CreatedAtBlock:       uint64(p.int(w.CreatedAtBlockNumber)),
		CreatedAtTimestamp:   p.int(w.CreatedAtTimestamp),
	}
	return s, p.err
}

type tokenWire struct {
	ID                 string `json:"id"`
	Symbol             string `json:"symbol"`
	Name               string `json:"name"`
	Decimals           string `json:"decimals"`
	TradeVolumeUSD     string `json:"tradeVolumeUSD"`
	UntrackedVolumeUSD string `json:"untrackedVolumeUSD"`
	TxCount            string `json:"txCount"`
	TotalLiquidity     string `json:"totalLiquidity"`
	DerivedNative      string `json:"derivedNativeCurrency"`
}

func (w tokenWire) snapshot() (domain.TokenSnapshot, error) {
	var p decParser
	s := domain.TokenSnapshot{
		Address:              strings.ToLower(w.ID),
		Symbol:               w.Symbol,
		Name:                 w.Name,
		Decimals:             int(p.int(w.Decimals)),
		TradeVolumeQuote:     p.float(w.TradeVolumeUSD),
		UntrackedVolumeQuote: p.float(w.UntrackedVolumeUSD),
		TxCount:              p.int(w.TxCount),
		TotalLiquidityTokens: p.float(w.TotalLiquidity),
		DerivedNative:        p.float(w.DerivedNative),
	}
	return s, p.err
}

type dayDataWire struct {
	Date              int64  `json:"date"`
	DailyVolumeUSD    string `json:"dailyVolumeUSD"`
	ReserveUSD        string `json:"reserveUSD"`
	TotalLiquidityUSD string `json:"totalLiquidityUSD"`
}

func (w dayDataWire) point() (domain.DailyPoint, error) {
	var p decParser
	reserve := w.ReserveUSD
	if reserve == "" {
		reserve = w.TotalLiquidityUSD
	}
	pt := domain.DailyPoint{
		Date:    w.Date,
		Volume:  p.float(w.DailyVolumeUSD),
		Reserve: p.float(reserve),
	}
	if pt.Reserve > 0 {
		pt.Utilization = pt.Volume / pt.Reserve
	}
	return pt, p.err
}

type txnWire struct {
	Transaction struct {
		ID string `json:"id"`
	} `json:"transaction"`
	Timestamp string `json:"timestamp"`
	AmountUSD string `json:"amountUSD"`
	To        string `json:"to"`
	Sender    string `json:"sender"`
}

func (w txnWire) txn(kind domain.TxnKind) (domain.Transaction, error) {
	var p decParser
	account := w.To
	if account == "" {
		account = w.Sender
	}
	t := domain.Transaction{
		Hash:        w.Transaction.ID,
		Kind:        kind,
		Timestamp:   p.int(w.Timestamp),
		AmountQuote: p.float(w.AmountUSD),
		Account:     strings.ToLower(account),
	}
	return t, p.err
}

type campaignWire struct {
	ID           string `json:"id"`
	StartsAt     string `json:"startsAt"`
	EndsAt       string `json:"endsAt"`
	Locked       bool   `json:"locked"`
	StakedAmount string `json:"stakedAmount"`
	Rewards      []struct {
		Token  tokenIdentityWire `json:"token"`
		Amount string            `json:"amount"`
	} `json:"rewards"`
	StakablePair pairWire `json:"stakablePair"`
}
