// Package derive folds raw entity snapshots into records with computed
// trend fields. Everything here is a pure function: derived fields are
// recomputed from the full snapshot set on every fetch cycle, never patched
// incrementally.
package derive

import (
	"dexboard/internal/domain"
)

// TwoWindowChange computes the latest one-window delta of a cumulative value
// and its percent change against the previous window's delta. A zero
// previous delta yields 0% rather than dividing by zero.
func TwoWindowChange(current, oneAgo, twoAgo float64) (delta, pct float64) {
	delta = current - oneAgo
	previous := oneAgo - twoAgo
	if previous == 0 {
		return delta, 0
	}
	pct = (delta - previous) / previous * 100
	return delta, pct
}

// PercentChange computes a simple percent change, 0% when previous is 0.
func PercentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// PairMetrics folds a pair's snapshot set into a derived record.
//
// The one-day window follows a strict precedence: a pair created after the
// one-day reference block always reports its lifetime volume, regardless of
// what the two-window computation would produce. A pair absent from a
// historical window's bulk result is indistinguishable from one that never
// existed at that block; both fall back the same way, with the creation
// check applied first. Callers gate on nativePrice being present before
// invoking derivation.
func PairMetrics(current domain.PairSnapshot, oneDay, twoDay, oneWeek *domain.PairSnapshot, nativePrice float64, refs domain.BlockRefSet) domain.PairRecord {
	rec := domain.PairRecord{
		PairSnapshot: current,
		SwapFeeBps:   domain.DefaultSwapFeeBps,
	}

	lifetime := lifetimeVolume(current)

	switch {
	case refs.HasOneDay() && current.CreatedAtBlock > refs.OneDay:
		// Created after the reference block: one-day volume is the pair's
		// entire lifetime volume.
		rec.OneDayVolume = lifetime
	case oneDay != nil && twoDay != nil:
		rec.OneDayVolume, rec.VolumeChange = TwoWindowChange(
			lifetime, lifetimeVolume(*oneDay), lifetimeVolume(*twoDay))
	case oneDay != nil:
		rec.OneDayVolume = lifetime - lifetimeVolume(*oneDay)
	default:
		rec.OneDayVolume = lifetime
	}

	switch {
	case refs.HasOneWeek() && current.CreatedAtBlock > refs.OneWeek:
		rec.OneWeekVolume = lifetime
	case oneWeek != nil:
		rec.OneWeekVolume = lifetime - lifetimeVolume(*oneWeek)
	default:
		// Pair younger than a week: lifetime volume stands in.
		rec.OneWeekVolume = lifetime
	}

	if oneDay != nil {
		rec.OneDayTxns = current.TxCount - oneDay.TxCount
		rec.LiquidityChange = PercentChange(current.ReserveQuote, oneDay.ReserveQuote)
	} else {
		rec.OneDayTxns = current.TxCount
	}

	rec.TrackedReserveQuote = current.TrackedReserveNative * nativePrice
	return rec
}

// lifetimeVolume prefers tracked volume and falls back to untracked when the
// pair has no whitelisted token.
func lifetimeVolume(s domain.PairSnapshot) float64 {
	if s.VolumeQuote > 0 {
		return s.VolumeQuote
	}
	return s.UntrackedVolumeQuote
}

// tokenLifetimeVolume prefers tracked trade volume and falls back to
// untracked when the token never traded against a whitelisted pair.
func tokenLifetimeVolume(s domain.TokenSnapshot) float64 {
	if s.TradeVolumeQuote > 0 {
		return s.TradeVolumeQuote
	}
	return s.UntrackedVolumeQuote
}

// TokenMetrics folds a token's snapshot set into a derived record. The same
// precedence rules apply as for pairs; price change is computed in native
// currency terms so one quote price serves both ends of the window.
func TokenMetrics(current domain.TokenSnapshot, oneDay, twoDay, oneWeek *domain.TokenSnapshot, nativePrice float64, refs domain.BlockRefSet) domain.TokenRecord {
	rec := domain.TokenRecord{
		TokenSnapshot: current,
	}

	lifetime := tokenLifetimeVolume(current)

	switch {
	case refs.HasOneDay() && current.CreatedAtBlock > refs.OneDay:
		rec.OneDayVolume = lifetime
	case oneDay != nil && twoDay != nil:
		rec.OneDayVolume, rec.VolumeChange = TwoWindowChange(
			lifetime, tokenLifetimeVolume(*oneDay), tokenLifetimeVolume(*twoDay))
	case oneDay != nil:
		rec.OneDayVolume = lifetime - tokenLifetimeVolume(*oneDay)
	default:
		rec.OneDayVolume = lifetime
	}

	switch {
	case refs.HasOneWeek() && current.CreatedAtBlock > refs.OneWeek:
		rec.OneWeekVolume = lifetime
	case oneWeek != nil:
		rec.OneWeekVolume = lifetime - tokenLifetimeVolume(*oneWeek)
	default:
		rec.OneWeekVolume = lifetime
	}

	rec.PriceQuote = current.DerivedNative * nativePrice
	rec.LiquidityQuote = current.TotalLiquidityTokens * current.DerivedNative * nativePrice

	if oneDay != nil {
		rec.OneDayTxns = current.TxCount - oneDay.TxCount
		rec.PriceChange = PercentChange(current.DerivedNative, oneDay.DerivedNative)
		rec.LiquidityChange = PercentChange(
			current.TotalLiquidityTokens*current.DerivedNative,
			oneDay.TotalLiquidityTokens*oneDay.DerivedNative)
	} else {
		rec.OneDayTxns = current.TxCount
	}

	return rec
}

// CampaignStakedValue values staked LP tokens in quote currency by their
// share of the pair's reserve. Zero when the pair has no supply.
func CampaignStakedValue(stakedLP float64, pair domain.PairSnapshot) float64 {
	if pair.TotalSupplyLP == 0 {
		return 0
	}
	return stakedLP / pair.TotalSupplyLP * pair.ReserveQuote
}
