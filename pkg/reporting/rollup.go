package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/manabihub/insights/pkg/observability"
)

// Rollup precomputes daily distinct-user counts per role into
// activity_stats_daily, and prunes raw log rows past the retention window.
// The dashboard reads live tables; the rollup exists for long-range trend
// queries that would otherwise scan months of raw events.
type Rollup struct {
	db      *sql.DB
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewRollup creates a rollup runner
func NewRollup(db *sql.DB, logger *observability.Logger, metrics *observability.Metrics) *Rollup {
	return &Rollup{db: db, logger: logger, metrics: metrics}
}

// RunDaily upserts the (date, role) counts for one calendar day from the
// primary activity table.
func (r *Rollup) RunDaily(ctx context.Context, date time.Time) error {
	start := time.Now()
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	next := day.AddDate(0, 0, 1)

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO activity_stats_daily (date, role, active_users, event_count)
		SELECT $1, u.role, COUNT(DISTINCT e.user_id), COUNT(*)
		FROM activity_logs e
		JOIN users u ON u.id = e.user_id
		WHERE e.occurred_at >= $2 AND e.occurred_at < $3
		GROUP BY u.role
		ON CONFLICT (date, role) DO UPDATE SET
			active_users = EXCLUDED.active_users,
			event_count = EXCLUDED.event_count`,
		day, day, next)
	if err != nil {
		r.recordRun("daily", "error", start)
		return fmt.Errorf("daily rollup for %s failed: %w", day.Format("2006-01-02"), err)
	}

	rows, err := result.RowsAffected()
	if err == nil && r.metrics != nil {
		r.metrics.RollupRowsUpserted.Add(float64(rows))
	}
	r.recordRun("daily", "success", start)

	r.logger.WithFields(map[string]interface{}{
		"date": day.Format("2006-01-02"),
		"rows": rows,
	}).Info("Daily rollup complete")
	return nil
}

// RunBackfill re-runs the daily rollup for the trailing days window, most
// recent day first. Late-arriving events land in already-rolled-up days, so a
// periodic backfill keeps the aggregates honest.
func (r *Rollup) RunBackfill(ctx context.Context, days int) error {
	if days <= 0 {
		return fmt.Errorf("backfill days must be positive, got %d", days)
	}

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	for i := 0; i < days; i++ {
		if err := r.RunDaily(ctx, yesterday.AddDate(0, 0, -i)); err != nil {
			return err
		}
	}
	return nil
}

// PruneRetention deletes raw log rows older than the retention window. The
// rollup table keeps the aggregates, so trend history survives the prune.
func (r *Rollup) PruneRetention(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return fmt.Errorf("retention days must be positive, got %d", retentionDays)
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	targets := []struct {
		table      string
		timeColumn string
	}{
		{"activity_logs", "occurred_at"},
		{"audit_trail", "created_at"},
		{"login_logs", "logged_in_at"},
		{"error_logs", "occurred_at"},
	}

	for _, target := range targets {
		result, err := r.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s < $1", target.table, target.timeColumn), cutoff)
		if err != nil {
			return fmt.Errorf("retention prune of %s failed: %w", target.table, err)
		}
		if rows, err := result.RowsAffected(); err == nil && rows > 0 {
			r.logger.WithFields(map[string]interface{}{
				"table": target.table,
				"rows":  rows,
			}).Info("Pruned expired rows")
		}
	}
	return nil
}

func (r *Rollup) recordRun(granularity, status string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RollupRunsTotal.WithLabelValues(granularity, status).Inc()
	r.metrics.RollupDuration.WithLabelValues(granularity).Observe(time.Since(start).Seconds())
}
