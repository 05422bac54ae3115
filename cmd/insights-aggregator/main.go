package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manabihub/insights/pkg/config"
	"github.com/manabihub/insights/pkg/observability"
	"github.com/manabihub/insights/pkg/reporting"
	"github.com/manabihub/insights/pkg/storage"
)

var (
	dailySchedule     = flag.String("daily-schedule", "5 0 * * *", "Cron schedule for the daily rollup (default: 00:05 UTC)")
	backfillSchedule  = flag.String("backfill-schedule", "35 0 * * 0", "Cron schedule for the weekly backfill (default: Sunday 00:35 UTC)")
	backfillDays      = flag.Int("backfill-days", 7, "Number of trailing days the weekly backfill re-rolls")
	retentionSchedule = flag.String("retention-schedule", "30 1 * * 0", "Cron schedule for retention pruning (default: Sunday 01:30 UTC)")
	runOnce           = flag.Bool("run-once", false, "Run the daily rollup once and exit (for testing or backfilling)")
	rollupDate        = flag.String("date", "", "Date to roll up (YYYY-MM-DD). If empty, rolls up yesterday. Only used with --run-once")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		observability.NewLogger(observability.ErrorLevel, os.Stderr).
			WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.EnsureSchema(ctx, db); err != nil {
		logger.WithError(err).Error("Failed to ensure database schema")
		os.Exit(1)
	}

	rollup := reporting.NewRollup(db, logger, nil)

	// Run once mode (for testing or backfilling)
	if *runOnce {
		date := time.Now().UTC().AddDate(0, 0, -1)
		if *rollupDate != "" {
			date, err = time.Parse("2006-01-02", *rollupDate)
			if err != nil {
				logger.WithError(err).Error("Invalid date format")
				os.Exit(1)
			}
		}

		logger.Infof("Running rollup for date: %s", date.Format("2006-01-02"))
		if err := rollup.RunDaily(ctx, date); err != nil {
			logger.WithError(err).Error("Rollup failed")
			os.Exit(1)
		}
		logger.Info("Rollup completed successfully")
		return
	}

	// Scheduled mode
	c := cron.New()

	_, err = c.AddFunc(*dailySchedule, func() {
		yesterday := time.Now().UTC().AddDate(0, 0, -1)
		logger.Infof("Starting daily rollup for %s", yesterday.Format("2006-01-02"))

		if err := rollup.RunDaily(context.Background(), yesterday); err != nil {
			logger.WithError(err).Error("Daily rollup failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("Failed to schedule daily rollup")
		os.Exit(1)
	}

	_, err = c.AddFunc(*backfillSchedule, func() {
		logger.Infof("Backfilling rollups for the last %d days", *backfillDays)

		if err := rollup.RunBackfill(context.Background(), *backfillDays); err != nil {
			logger.WithError(err).Error("Backfill failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("Failed to schedule backfill")
		os.Exit(1)
	}

	_, err = c.AddFunc(*retentionSchedule, func() {
		logger.Infof("Pruning raw logs older than %d days", cfg.Reports.RetentionDays)

		if err := rollup.PruneRetention(context.Background(), cfg.Reports.RetentionDays); err != nil {
			logger.WithError(err).Error("Retention pruning failed")
		}
	})
	if err != nil {
		logger.WithError(err).Error("Failed to schedule retention pruning")
		os.Exit(1)
	}

	c.Start()
	logger.Info("Insights aggregator started")
	logger.Infof("Daily rollup schedule: %s", *dailySchedule)
	logger.Infof("Backfill schedule: %s (%d days)", *backfillSchedule, *backfillDays)
	logger.Infof("Retention schedule: %s", *retentionSchedule)

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		stopCtx := c.Stop()
		<-stopCtx.Done()
		return nil
	})
	if err := shutdown.WaitForShutdown(); err != nil {
		os.Exit(1)
	}
}
