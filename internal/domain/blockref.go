package domain

// BlockRefSet pins historical queries to points in time. A zero block number
// means the window could not be resolved and historical snapshots for it are
// treated as absent.
//
// The set is recomputed once per top-level refresh cycle, not per entity.
type BlockRefSet struct {
	OneDay  uint64
	TwoDay  uint64
	OneWeek uint64

	// SyncedHead is the indexer's latest synced block, when known. A non-zero
	// value caps candle construction and can override wall-clock resolution
	// when the indexer is lagging.
	SyncedHead uint64
}

// HasOneDay reports whether the one-day window resolved.
func (b BlockRefSet) HasOneDay() bool { return b.OneDay != 0 }

// HasTwoDay reports whether the two-day window resolved.
func (b BlockRefSet) HasTwoDay() bool { return b.TwoDay != 0 }

// HasOneWeek reports whether the one-week window resolved.
func (b BlockRefSet) HasOneWeek() bool { return b.OneWeek != 0 }
