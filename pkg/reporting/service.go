package reporting

import (
	"context"

	"github.com/manabihub/insights/pkg/observability"
)

// Service assembles reports from the source chain. Every method degrades to
// an empty but well-formed result when no source has data; errors only
// surface for malformed input.
type Service struct {
	selector *Selector
	logger   *observability.Logger
}

// NewService creates a reporting service over a source chain
func NewService(selector *Selector, logger *observability.Logger) *Service {
	return &Service{selector: selector, logger: logger}
}

// SeriesReport is the bucketed usage report plus the filter it answers
type SeriesReport struct {
	DateFrom    string         `json:"date_from"`
	DateTo      string         `json:"date_to"`
	Granularity Granularity    `json:"granularity"`
	Buckets     []PeriodBucket `json:"buckets"`
}

// GetPeriodSeries returns distinct active-user counts per (period, role)
func (s *Service) GetPeriodSeries(ctx context.Context, f Filter) (*SeriesReport, error) {
	events, err := s.selector.Events(ctx, f)
	if err != nil {
		return nil, err
	}

	return &SeriesReport{
		DateFrom:    f.From.Format(dateLayout),
		DateTo:      f.To.Format(dateLayout),
		Granularity: f.Granularity,
		Buckets:     Aggregate(events, f.Granularity),
	}, nil
}

// RoleBreakdown is the window-wide per-role distinct user counts
type RoleBreakdown struct {
	DateFrom string      `json:"date_from"`
	DateTo   string      `json:"date_to"`
	Roles    []RoleCount `json:"roles"`
}

// GetRoleBreakdown returns distinct user counts grouped by role for the window
func (s *Service) GetRoleBreakdown(ctx context.Context, f Filter) (*RoleBreakdown, error) {
	counts, err := s.selector.RoleCounts(ctx, f)
	if err != nil {
		return nil, err
	}

	return &RoleBreakdown{
		DateFrom: f.From.Format(dateLayout),
		DateTo:   f.To.Format(dateLayout),
		Roles:    counts,
	}, nil
}

// GetDashboardStats assembles the flat dashboard summary: window total,
// daily average, peak period and growth against the previous window. A
// failed growth comparison reports 0 rather than failing the whole report.
func (s *Service) GetDashboardStats(ctx context.Context, f Filter) (*DashboardStats, error) {
	events, err := s.selector.Events(ctx, f)
	if err != nil {
		return nil, err
	}

	total, err := s.selector.DistinctUsers(ctx, f)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalActive:  total,
		DailyAverage: float64(total) / float64(f.Days()),
		Peak:         PeakBucket(Aggregate(events, f.Granularity)),
	}

	previous, err := s.selector.DistinctUsers(ctx, PreviousWindow(f))
	if err != nil {
		s.logger.WithError(err).Warn("Growth comparison failed, reporting zero")
		stats.GrowthRate = 0
		return stats, nil
	}
	stats.GrowthRate = GrowthRate(total, previous)

	return stats, nil
}

// DetailReport is a page of enriched activity rows with the unpaged total
type DetailReport struct {
	DateFrom string      `json:"date_from"`
	DateTo   string      `json:"date_to"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
	Total    int         `json:"total"`
	Rows     []DetailRow `json:"rows"`
}

// GetDetailedRows returns a page of drill-down rows for the window
func (s *Service) GetDetailedRows(ctx context.Context, f Filter, page, pageSize int) (*DetailReport, error) {
	offset := (page - 1) * pageSize
	rows, total, err := s.selector.DetailRows(ctx, f, pageSize, offset)
	if err != nil {
		return nil, err
	}

	return &DetailReport{
		DateFrom: f.From.Format(dateLayout),
		DateTo:   f.To.Format(dateLayout),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Rows:     rows,
	}, nil
}
