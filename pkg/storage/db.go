package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Database drivers: postgres for deployments, sqlite for local development
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/manabihub/insights/pkg/config"
)

// Open opens a database connection for the configured driver and verifies it
// with a ping. The caller owns the returned handle.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
