package series

import (
	"testing"
	"time"

	"dexboard/internal/domain"
)

func day(n int64) int64 { return n * daySeconds }

func TestNormalizeDaily_FillsGaps(t *testing.T) {
	// Samples on days 0, 2 and 5; now is midday on day 6. Yesterday is day 5,
	// so the result covers days 0..5 with no gaps.
	points := []domain.DailyPoint{
		{Date: day(0), Volume: 100, Reserve: 1000},
		{Date: day(2), Volume: 50, Reserve: 1200},
		{Date: day(5), Volume: 80, Reserve: 900},
	}
	now := time.Unix(day(6)+12*3600, 0).UTC()

	out := NormalizeDaily(points, now)

	if len(out) != 6 {
		t.Fatalf("expected 6 points, got %d", len(out))
	}
	for i, pt := range out {
		if pt.Date != day(int64(i)) {
			t.Errorf("point %d: expected date %d, got %d", i, day(int64(i)), pt.Date)
		}
	}

	// Day 1 is synthesized: zero volume, day 0's reserve carried forward.
	if out[1].Volume != 0 || out[1].Reserve != 1000 {
		t.Errorf("day 1: expected synthesized {0, 1000}, got {%f, %f}", out[1].Volume, out[1].Reserve)
	}
	// Days 3 and 4 carry day 2's reserve.
	if out[3].Reserve != 1200 || out[4].Reserve != 1200 {
		t.Errorf("days 3-4: expected carried reserve 1200, got %f and %f", out[3].Reserve, out[4].Reserve)
	}
	// Real samples pass through untouched.
	if out[5].Volume != 80 || out[5].Reserve != 900 {
		t.Errorf("day 5: expected real sample {80, 900}, got {%f, %f}", out[5].Volume, out[5].Reserve)
	}
}

func TestNormalizeDaily_SortsAndDeduplicates(t *testing.T) {
	points := []domain.DailyPoint{
		{Date: day(2), Volume: 10},
		{Date: day(0), Volume: 5},
		{Date: day(2) + 3600, Volume: 99}, // same day, later sample wins
	}
	now := time.Unix(day(3)+3600, 0).UTC()

	out := NormalizeDaily(points, now)

	if len(out) != 3 {
		t.Fatalf("expected 3 points, got %d", len(out))
	}
	if out[0].Volume != 5 {
		t.Errorf("expected day 0 first, got volume %f", out[0].Volume)
	}
	if out[2].Volume != 99 {
		t.Errorf("expected later duplicate to win, got volume %f", out[2].Volume)
	}
}

func TestNormalizeDaily_Empty(t *testing.T) {
	if out := NormalizeDaily(nil, time.Now()); out != nil {
		t.Errorf("expected nil for empty input, got %v", out)
	}
}

func TestNormalizeDaily_SingleFutureBoundedPoint(t *testing.T) {
	// A single sample from today: yesterday is before the first day, so the
	// range clamps to just that day.
	points := []domain.DailyPoint{{Date: day(10), Volume: 7, Reserve: 70}}
	now := time.Unix(day(10)+3600, 0).UTC()

	out := NormalizeDaily(points, now)

	if len(out) != 1 {
		t.Fatalf("expected 1 point, got %d", len(out))
	}
	if out[0].Volume != 7 {
		t.Errorf("expected the sample back, got volume %f", out[0].Volume)
	}
}
