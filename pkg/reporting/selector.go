package reporting

import (
	"context"
	"database/sql"
	"time"

	"github.com/manabihub/insights/pkg/observability"
)

// Selector walks an ordered chain of metric sources and returns the first
// non-empty answer. A source that errors or comes back empty is skipped, not
// merged; when every source is exhausted the result is empty with a nil
// error, which the handlers render as a valid empty report.
type Selector struct {
	sources []MetricSource
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewSelector builds the production chain: activity logs first, then the
// audit trail, then login logs.
func NewSelector(db *sql.DB, timeout time.Duration, logger *observability.Logger, metrics *observability.Metrics) *Selector {
	return NewSelectorWithSources(logger, metrics,
		NewActivityLogSource(db, timeout),
		NewAuditTrailSource(db, timeout),
		NewLoginLogSource(db, timeout),
	)
}

// NewSelectorWithSources builds a selector over an explicit chain
func NewSelectorWithSources(logger *observability.Logger, metrics *observability.Metrics, sources ...MetricSource) *Selector {
	return &Selector{sources: sources, logger: logger, metrics: metrics}
}

// Sources returns the names of the chain in fallback order
func (s *Selector) Sources() []string {
	names := make([]string, len(s.sources))
	for i, src := range s.sources {
		names[i] = src.Name()
	}
	return names
}

// selectFirst runs query against each source in order and returns the first
// result reported as non-empty. The bool result of query distinguishes "has
// data" from "empty but successful".
func (s *Selector) selectFirst(ctx context.Context, metric string, query func(MetricSource) (bool, error)) {
	for i, source := range s.sources {
		start := time.Now()
		nonEmpty, err := query(source)
		elapsed := time.Since(start)

		switch {
		case err != nil:
			s.metrics.ObserveSourceQuery(source.Name(), metric, "error", elapsed)
			observability.FromContext(ctx).WithError(err).WithField("source", source.Name()).
				Warnf("Source failed for %s, trying next", metric)
		case !nonEmpty:
			s.metrics.ObserveSourceQuery(source.Name(), metric, "empty", elapsed)
		default:
			s.metrics.ObserveSourceQuery(source.Name(), metric, "hit", elapsed)
			return
		}

		if i+1 < len(s.sources) {
			s.metrics.RecordSourceFallback(source.Name(), s.sources[i+1].Name(), metric)
		}
	}

	s.metrics.RecordEmptyReport(metric)
	s.logger.WithField("metric", metric).Debug("All sources empty or failed")
}

// Events returns the raw events from the first source that has any
func (s *Selector) Events(ctx context.Context, f Filter) ([]EventRow, error) {
	result := []EventRow{}
	s.selectFirst(ctx, "events", func(src MetricSource) (bool, error) {
		events, err := src.Events(ctx, f)
		if err != nil {
			return false, err
		}
		result = events
		return len(events) > 0, nil
	})
	if result == nil {
		result = []EventRow{}
	}
	return result, nil
}

// DistinctUsers returns the window-wide distinct user count from the first
// source reporting a non-zero count.
func (s *Selector) DistinctUsers(ctx context.Context, f Filter) (int, error) {
	result := 0
	s.selectFirst(ctx, "distinct_users", func(src MetricSource) (bool, error) {
		count, err := src.DistinctUsers(ctx, f)
		if err != nil {
			return false, err
		}
		result = count
		return count > 0, nil
	})
	return result, nil
}

// RoleCounts returns per-role distinct user counts from the first source
// that has any.
func (s *Selector) RoleCounts(ctx context.Context, f Filter) ([]RoleCount, error) {
	result := []RoleCount{}
	s.selectFirst(ctx, "role_counts", func(src MetricSource) (bool, error) {
		counts, err := src.RoleCounts(ctx, f)
		if err != nil {
			return false, err
		}
		result = counts
		return len(counts) > 0, nil
	})
	if result == nil {
		result = []RoleCount{}
	}
	return result, nil
}

// DetailRows returns enriched event rows with their unpaged total from the
// first source that has any. A page past the end of a non-empty window
// counts as a hit so the total still reports the true size.
func (s *Selector) DetailRows(ctx context.Context, f Filter, limit, offset int) ([]DetailRow, int, error) {
	result := []DetailRow{}
	total := 0
	s.selectFirst(ctx, "detail_rows", func(src MetricSource) (bool, error) {
		details, count, err := src.DetailRows(ctx, f, limit, offset)
		if err != nil {
			return false, err
		}
		result, total = details, count
		return count > 0, nil
	})
	if result == nil {
		result = []DetailRow{}
	}
	return result, total, nil
}
