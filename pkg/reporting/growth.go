package reporting

import (
	"math"
	"time"
)

// GrowthRateCap is the ceiling applied to the reported growth percentage.
// Spikes from a near-zero baseline would otherwise dominate the dashboard.
const GrowthRateCap = 100.0

// PreviousWindow derives the comparison window for a filter. The shape of the
// previous window depends on the granularity, not on the literal window
// length, so a partial month still compares against the full previous month.
func PreviousWindow(f Filter) Filter {
	prev := f
	switch f.Granularity {
	case GranularityDaily:
		day := f.To.AddDate(0, 0, -1)
		prev.From, prev.To = day, day
	case GranularityWeekly:
		prev.To = f.To.AddDate(0, 0, -7)
		prev.From = prev.To.AddDate(0, 0, -6)
	case GranularityMonthly:
		firstOfCurrent := time.Date(f.To.Year(), f.To.Month(), 1, 0, 0, 0, 0, time.UTC)
		prev.From = firstOfCurrent.AddDate(0, -1, 0)
		prev.To = firstOfCurrent.AddDate(0, 0, -1)
	case GranularityYearly:
		prev.From = time.Date(f.To.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
		prev.To = time.Date(f.To.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		length := f.Days()
		prev.To = f.From.AddDate(0, 0, -1)
		prev.From = prev.To.AddDate(0, 0, -(length - 1))
	}
	return prev
}

// GrowthRate computes the percentage change from previous to current,
// rounded to one decimal and capped at GrowthRateCap. A zero baseline
// reports 100 when there is any current activity and 0 otherwise.
func GrowthRate(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return GrowthRateCap
		}
		return 0
	}

	rate := float64(current-previous) / float64(previous) * 100
	rate = math.Round(rate*10) / 10
	if rate > GrowthRateCap {
		rate = GrowthRateCap
	}
	return rate
}
