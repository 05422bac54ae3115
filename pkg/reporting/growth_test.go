package reporting

import (
	"testing"
	"time"
)

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		name     string
		current  int
		previous int
		want     float64
	}{
		{"simple growth", 150, 100, 50.0},
		{"decline", 50, 100, -50.0},
		{"unchanged", 100, 100, 0.0},
		{"rounded to one decimal", 100, 3, 100.0},
		{"rounding", 110, 99, 11.1},
		{"capped at 100", 500, 100, 100.0},
		{"zero baseline with activity", 5, 0, 100.0},
		{"zero baseline without activity", 0, 0, 0.0},
		{"decline is not floored", 0, 100, -100.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GrowthRate(tc.current, tc.previous); got != tc.want {
				t.Errorf("GrowthRate(%d, %d) = %v, want %v", tc.current, tc.previous, got, tc.want)
			}
		})
	}
}

func day(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestPreviousWindowDaily(t *testing.T) {
	f := Filter{From: day("2024-03-01"), To: day("2024-03-15"), Granularity: GranularityDaily}
	prev := PreviousWindow(f)
	if !prev.From.Equal(day("2024-03-14")) || !prev.To.Equal(day("2024-03-14")) {
		t.Errorf("Daily comparison should be the single prior day, got %v..%v", prev.From, prev.To)
	}
}

func TestPreviousWindowWeekly(t *testing.T) {
	f := Filter{From: day("2024-03-10"), To: day("2024-03-16"), Granularity: GranularityWeekly}
	prev := PreviousWindow(f)
	if !prev.From.Equal(day("2024-03-03")) || !prev.To.Equal(day("2024-03-09")) {
		t.Errorf("Weekly comparison should shift back 7 days, got %v..%v", prev.From, prev.To)
	}
}

func TestPreviousWindowMonthlyUsesRealMonthLength(t *testing.T) {
	f := Filter{From: day("2024-03-01"), To: day("2024-03-20"), Granularity: GranularityMonthly}
	prev := PreviousWindow(f)
	if !prev.From.Equal(day("2024-02-01")) || !prev.To.Equal(day("2024-02-29")) {
		t.Errorf("Expected full leap-year February, got %v..%v", prev.From, prev.To)
	}
}

func TestPreviousWindowYearly(t *testing.T) {
	f := Filter{From: day("2024-01-01"), To: day("2024-06-30"), Granularity: GranularityYearly}
	prev := PreviousWindow(f)
	if !prev.From.Equal(day("2023-01-01")) || !prev.To.Equal(day("2023-12-31")) {
		t.Errorf("Expected full previous calendar year, got %v..%v", prev.From, prev.To)
	}
}

func TestPreviousWindowDefaultShiftsByOwnLength(t *testing.T) {
	f := Filter{From: day("2024-03-11"), To: day("2024-03-20")}
	prev := PreviousWindow(f)
	if !prev.From.Equal(day("2024-03-01")) || !prev.To.Equal(day("2024-03-10")) {
		t.Errorf("Expected adjacent 10-day window, got %v..%v", prev.From, prev.To)
	}
	if prev.Days() != f.Days() {
		t.Errorf("Previous window should match length %d, got %d", f.Days(), prev.Days())
	}
}
