package reporting

import (
	"net/url"
	"strings"
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

// Granularity is the time-bucket size used to group activity counts
type Granularity string

const (
	GranularityDaily   Granularity = "daily"
	GranularityWeekly  Granularity = "weekly"
	GranularityMonthly Granularity = "monthly"
	GranularityYearly  Granularity = "yearly"
)

// ParseGranularity returns the matching granularity and whether the value was
// recognized. Empty input maps to the daily default.
func ParseGranularity(value string) (Granularity, bool) {
	switch Granularity(value) {
	case GranularityDaily, GranularityWeekly, GranularityMonthly, GranularityYearly:
		return Granularity(value), true
	case "":
		return GranularityDaily, true
	default:
		return "", false
	}
}

const dateLayout = "2006-01-02"

// Filter is the canonical, immutable report filter. Both date bounds are
// inclusive calendar days; use UpperBound for exclusive timestamp comparisons.
type Filter struct {
	From        time.Time
	To          time.Time
	Granularity Granularity
	Role        auth.Role // empty means all roles
	Search      string
}

// UpperBound returns the exclusive timestamp bound for the inclusive To day.
// Building SQL predicates from To directly drops the final day; always compare
// against this bound with a strict less-than.
func (f Filter) UpperBound() time.Time {
	return f.To.AddDate(0, 0, 1)
}

// Days returns the inclusive day count of the window, never less than 1
func (f Filter) Days() int {
	days := int(f.To.Sub(f.From).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}

// DefaultWindowDays is the trailing window applied when no date range is given
const DefaultWindowDays = 30

// ParseFilter normalizes raw query parameters into a Filter. Unparseable
// dates and unknown granularities are rejected with a ValidationError;
// unknown roles are treated as "no filter".
func ParseFilter(values url.Values, windowDays int) (Filter, error) {
	return ParseFilterAt(values, windowDays, time.Now().UTC())
}

// ParseFilterAt is ParseFilter with an explicit "today" for deterministic tests
func ParseFilterAt(values url.Values, windowDays int, today time.Time) (Filter, error) {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today = truncateToDay(today)

	var f Filter

	to, err := parseDateParam(values.Get("date_to"), today)
	if err != nil {
		return Filter{}, &ValidationError{Field: "date_to", Message: err.Error()}
	}
	f.To = to

	defaultFrom := f.To.AddDate(0, 0, -(windowDays - 1))
	from, err := parseDateParam(values.Get("date_from"), defaultFrom)
	if err != nil {
		return Filter{}, &ValidationError{Field: "date_from", Message: err.Error()}
	}
	f.From = from

	if f.From.After(f.To) {
		return Filter{}, &ValidationError{Field: "date_from", Message: "must not be after date_to"}
	}

	granularity, ok := ParseGranularity(values.Get("view"))
	if !ok {
		return Filter{}, &ValidationError{Field: "view", Message: "must be one of daily, weekly, monthly, yearly"}
	}
	f.Granularity = granularity

	// Unknown roles never error; the filter is simply dropped
	if roleParam := values.Get("role"); roleParam != "" {
		if role, known := auth.ParseRole(roleParam); known {
			f.Role = role
		}
	}

	f.Search = strings.TrimSpace(values.Get("search"))

	return f, nil
}

func parseDateParam(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
