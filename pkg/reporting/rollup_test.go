package reporting

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/manabihub/insights/pkg/observability"
)

func newTestRollup(t *testing.T) (*Rollup, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	return NewRollup(db, logger, nil), mock
}

func TestRunDailyUpserts(t *testing.T) {
	rollup, mock := newTestRollup(t)

	mock.ExpectExec("INSERT INTO activity_stats_daily").
		WithArgs(day("2024-03-01"), day("2024-03-01"), day("2024-03-02")).
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := rollup.RunDaily(context.Background(), day("2024-03-01")); err != nil {
		t.Errorf("RunDaily failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRunDailyTruncatesTimestamp(t *testing.T) {
	rollup, mock := newTestRollup(t)

	// A mid-day timestamp should roll up the full calendar day
	mock.ExpectExec("INSERT INTO activity_stats_daily").
		WithArgs(day("2024-03-01"), day("2024-03-01"), day("2024-03-02")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ts := day("2024-03-01").Add(14*time.Hour + 30*time.Minute)
	if err := rollup.RunDaily(context.Background(), ts); err != nil {
		t.Errorf("RunDaily failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRunDailyPropagatesError(t *testing.T) {
	rollup, mock := newTestRollup(t)

	mock.ExpectExec("INSERT INTO activity_stats_daily").
		WillReturnError(context.DeadlineExceeded)

	if err := rollup.RunDaily(context.Background(), day("2024-03-01")); err == nil {
		t.Error("Expected an error")
	}
}

func TestRunBackfillRollsTrailingDays(t *testing.T) {
	rollup, mock := newTestRollup(t)

	// One upsert per trailing day, most recent first
	for i := 0; i < 3; i++ {
		mock.ExpectExec("INSERT INTO activity_stats_daily").
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := rollup.RunBackfill(context.Background(), 3); err != nil {
		t.Errorf("RunBackfill failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestRunBackfillRejectsNonPositiveWindow(t *testing.T) {
	rollup, _ := newTestRollup(t)
	if err := rollup.RunBackfill(context.Background(), 0); err == nil {
		t.Error("Expected an error for zero backfill days")
	}
}

func TestPruneRetentionDeletesFromAllTables(t *testing.T) {
	rollup, mock := newTestRollup(t)

	mock.ExpectExec("DELETE FROM activity_logs").WillReturnResult(sqlmock.NewResult(0, 100))
	mock.ExpectExec("DELETE FROM audit_trail").WillReturnResult(sqlmock.NewResult(0, 20))
	mock.ExpectExec("DELETE FROM login_logs").WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM error_logs").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := rollup.PruneRetention(context.Background(), 365); err != nil {
		t.Errorf("PruneRetention failed: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestPruneRetentionRejectsNonPositiveWindow(t *testing.T) {
	rollup, _ := newTestRollup(t)
	if err := rollup.PruneRetention(context.Background(), 0); err == nil {
		t.Error("Expected an error for zero retention")
	}
}
