package reporting

import (
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

// EventRow is one raw activity event as returned by a metric source. All
// sources normalize their rows into this shape before aggregation.
type EventRow struct {
	UserID     int64
	Role       auth.Role
	OccurredAt time.Time
}

// PeriodBucket holds the distinct active-user count for one (period, role) pair
type PeriodBucket struct {
	Period      string    `json:"period"`
	Role        auth.Role `json:"role"`
	ActiveUsers int       `json:"active_users"`
}

// RoleCount is the window-wide distinct user count for a single role
type RoleCount struct {
	Role  auth.Role `json:"role"`
	Count int       `json:"count"`
}

// DetailRow is one event enriched with user identity, for drill-down views
// and exports.
type DetailRow struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Role       auth.Role `json:"role"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PeakPeriod identifies the bucket with the highest activity in the window
type PeakPeriod struct {
	Period      string `json:"period"`
	ActiveUsers int    `json:"active_users"`
}

// DashboardStats is the flat summary record rendered on the admin dashboard
type DashboardStats struct {
	TotalActive  int        `json:"total_active"`
	DailyAverage float64    `json:"daily_average"`
	Peak         PeakPeriod `json:"peak"`
	GrowthRate   float64    `json:"growth_rate"`
}
