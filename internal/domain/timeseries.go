package domain

// DailyPoint is one calendar day of a pair's or token's daily series.
// A normalized series covering [start, end] contains exactly one point per
// day; synthesized days have Volume 0 and carry the last known Reserve.
type DailyPoint struct {
	Date        int64   // unix timestamp of the day's 00:00 UTC boundary
	Volume      float64 // quote currency traded that day
	Reserve     float64 // quote currency locked at end of day
	Utilization float64 // Volume / Reserve, 0 when Reserve is 0
}

// CandlePoint is an open/close pair for one hourly bucket.
type CandlePoint struct {
	Timestamp int64 // bucket start, unix seconds
	Open      float64
	Close     float64
}

// Window selects the span of an hourly candle series.
type Window string

// Supported hourly windows.
const (
	WindowDay   Window = "1d"
	WindowWeek  Window = "1w"
	WindowMonth Window = "1m"
)

// Seconds returns the window span in seconds.
func (w Window) Seconds() int64 {
	switch w {
	case WindowDay:
		return 24 * 3600
	case WindowWeek:
		return 7 * 24 * 3600
	case WindowMonth:
		return 30 * 24 * 3600
	}
	return 0
}

// CandleInterval is the bucket width for hourly candle series, in seconds.
const CandleInterval int64 = 3600
