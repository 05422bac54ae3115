package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// EnsureSchema creates the tables the service reads and writes if they do not
// exist yet. The three activity sources intentionally keep their historical,
// heterogeneous column names; the reporting layer hides the differences.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(255) NOT NULL UNIQUE,
			email VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'student',
			api_token VARCHAR(128),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,

		// Source A: fine-grained activity events
		`CREATE TABLE IF NOT EXISTS activity_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			action VARCHAR(100) NOT NULL,
			details TEXT,
			occurred_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_occurred_at ON activity_logs(occurred_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_activity_logs_user_id ON activity_logs(user_id)`,

		// Source B: general audit trail
		`CREATE TABLE IF NOT EXISTS audit_trail (
			id BIGSERIAL PRIMARY KEY,
			actor_id BIGINT NOT NULL,
			event VARCHAR(100) NOT NULL,
			ip_address VARCHAR(45),
			created_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_trail_created_at ON audit_trail(created_at DESC)`,

		// Source C: login-only log
		`CREATE TABLE IF NOT EXISTS login_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			ip_address VARCHAR(45),
			user_agent TEXT,
			logged_in_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_login_logs_logged_in_at ON login_logs(logged_in_at DESC)`,

		// Rollup table written by the aggregator binary
		`CREATE TABLE IF NOT EXISTS activity_stats_daily (
			date DATE NOT NULL,
			role VARCHAR(20) NOT NULL,
			active_users BIGINT NOT NULL DEFAULT 0,
			event_count BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (date, role)
		)`,

		// Flat dashboard projections
		`CREATE TABLE IF NOT EXISTS error_logs (
			id BIGSERIAL PRIMARY KEY,
			level VARCHAR(20) NOT NULL,
			message TEXT NOT NULL,
			source VARCHAR(255),
			occurred_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_error_logs_occurred_at ON error_logs(occurred_at DESC)`,

		`CREATE TABLE IF NOT EXISTS broken_links (
			id BIGSERIAL PRIMARY KEY,
			url TEXT NOT NULL,
			page TEXT,
			status_code INTEGER,
			checked_at TIMESTAMP WITH TIME ZONE NOT NULL
		)`,

		// Course authoring
		`CREATE TABLE IF NOT EXISTS courses (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			description TEXT,
			level VARCHAR(10) NOT NULL,
			created_by BIGINT NOT NULL,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS course_modules (
			id BIGSERIAL PRIMARY KEY,
			course_id BIGINT NOT NULL REFERENCES courses(id),
			title VARCHAR(255) NOT NULL,
			position INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS lessons (
			id BIGSERIAL PRIMARY KEY,
			module_id BIGINT NOT NULL REFERENCES course_modules(id),
			title VARCHAR(255) NOT NULL,
			content TEXT,
			position INTEGER NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
