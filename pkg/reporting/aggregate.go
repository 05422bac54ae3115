package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

// PeriodKey buckets a timestamp into the period label for a granularity.
// Weekly buckets start on Sunday, and the week number counts Sundays within
// the Sunday's own year, so labels sort correctly across a year boundary.
func PeriodKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityWeekly:
		sunday := t.AddDate(0, 0, -int(t.Weekday()))
		week := (sunday.YearDay()-1)/7 + 1
		return fmt.Sprintf("%04d-W%02d", sunday.Year(), week)
	case GranularityMonthly:
		return t.Format("2006-01")
	case GranularityYearly:
		return t.Format("2006")
	default:
		return t.Format("2006-01-02")
	}
}

// Aggregate groups raw events into (period, role) buckets with distinct user
// counts. Buckets are ordered most recent period first, roles alphabetical
// within a period.
func Aggregate(events []EventRow, g Granularity) []PeriodBucket {
	type bucketKey struct {
		period string
		role   string
	}

	seen := map[bucketKey]map[int64]struct{}{}
	for _, ev := range events {
		key := bucketKey{period: PeriodKey(ev.OccurredAt, g), role: string(ev.Role)}
		users, ok := seen[key]
		if !ok {
			users = map[int64]struct{}{}
			seen[key] = users
		}
		users[ev.UserID] = struct{}{}
	}

	buckets := make([]PeriodBucket, 0, len(seen))
	for key, users := range seen {
		buckets = append(buckets, PeriodBucket{
			Period:      key.period,
			Role:        auth.Role(key.role),
			ActiveUsers: len(users),
		})
	}

	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Period != buckets[j].Period {
			return buckets[i].Period > buckets[j].Period
		}
		return buckets[i].Role < buckets[j].Role
	})

	return buckets
}

// PeakBucket returns the period with the highest combined distinct user
// count. Ties resolve to the most recent period. Empty input yields the zero
// value.
func PeakBucket(buckets []PeriodBucket) PeakPeriod {
	totals := map[string]int{}
	for _, b := range buckets {
		totals[b.Period] += b.ActiveUsers
	}

	var peak PeakPeriod
	for period, count := range totals {
		if count > peak.ActiveUsers || (count == peak.ActiveUsers && period > peak.Period) {
			peak = PeakPeriod{Period: period, ActiveUsers: count}
		}
	}
	return peak
}
