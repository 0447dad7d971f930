// Package series normalizes raw subgraph samples into chart-ready series:
// gap-filled daily points and hourly open/close candles.
package series

import (
	"sort"
	"time"

	"dexboard/internal/domain"
)

const daySeconds = 24 * 3600

// NormalizeDaily deduplicates points by calendar day, sorts them ascending,
// and synthesizes every missing day from the first point through yesterday.
// Synthesized days have zero volume and carry the most recently known
// reserve forward. The result has no date gaps and is strictly ascending.
func NormalizeDaily(points []domain.DailyPoint, now time.Time) []domain.DailyPoint {
	if len(points) == 0 {
		return nil
	}

	// Dedupe by day index; the later sample for a day wins.
	byDay := make(map[int64]domain.DailyPoint, len(points))
	for _, pt := range points {
		byDay[pt.Date/daySeconds] = pt
	}

	days := make([]int64, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })

	firstDay := days[0]
	lastDay := now.UTC().Unix()/daySeconds - 1
	if lastDay < firstDay {
		lastDay = firstDay
	}

	out := make([]domain.DailyPoint, 0, lastDay-firstDay+1)
	lastReserve := byDay[firstDay].Reserve
	for day := firstDay; day <= lastDay; day++ {
		if pt, ok := byDay[day]; ok {
			lastReserve = pt.Reserve
			out = append(out, pt)
			continue
		}
		out = append(out, domain.DailyPoint{
			Date:    day * daySeconds,
			Volume:  0,
			Reserve: lastReserve,
		})
	}
	return out
}
