package records

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/manabihub/insights/pkg/auth"
)

// Store reads the flat dashboard record tables
type Store struct {
	db *sql.DB
}

// NewStore creates a record store over a database handle
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// buildConditions assembles the shared WHERE fragment. timeColumn is the
// per-table timestamp column; searchExprs are matched against the free-text
// term.
func buildConditions(f RecordFilter, timeColumn string, searchExprs []string) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	if !f.DateFrom.IsZero() {
		conditions = append(conditions, fmt.Sprintf("%s >= $%d", timeColumn, argCount))
		args = append(args, f.DateFrom)
		argCount++
	}
	if !f.DateTo.IsZero() {
		// inclusive end of day
		conditions = append(conditions, fmt.Sprintf("%s < $%d", timeColumn, argCount))
		args = append(args, f.DateTo.AddDate(0, 0, 1))
		argCount++
	}
	if f.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argCount))
		args = append(args, f.Level)
		argCount++
	}
	if f.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", argCount))
		args = append(args, f.Role)
		argCount++
	}
	if f.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argCount))
		args = append(args, *f.IsActive)
		argCount++
	}
	if f.Search != "" && len(searchExprs) > 0 {
		likes := make([]string, 0, len(searchExprs))
		for _, expr := range searchExprs {
			likes = append(likes, fmt.Sprintf("%s ILIKE $%d", expr, argCount))
			args = append(args, "%"+f.Search+"%")
			argCount++
		}
		conditions = append(conditions, "("+strings.Join(likes, " OR ")+")")
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}
	return where, args
}

func (s *Store) countRows(ctx context.Context, base string, where string, args []interface{}) (int, error) {
	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+base+where, args...).Scan(&total)
	return total, err
}

// ListErrors returns a page of error log rows, most recent first
func (s *Store) ListErrors(ctx context.Context, f RecordFilter, limit, offset int) (*RecordPage[ErrorRecord], error) {
	where, args := buildConditions(f, "occurred_at", []string{"message", "source"})

	total, err := s.countRows(ctx, "error_logs", where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count error logs: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, level, message, COALESCE(source, ''), occurred_at FROM error_logs%s ORDER BY occurred_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query error logs: %w", err)
	}
	defer rows.Close()

	page := &RecordPage[ErrorRecord]{Total: total, Rows: []ErrorRecord{}}
	for rows.Next() {
		var rec ErrorRecord
		if err := rows.Scan(&rec.ID, &rec.Level, &rec.Message, &rec.Source, &rec.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan error log: %w", err)
		}
		page.Rows = append(page.Rows, rec)
	}
	return page, rows.Err()
}

// ListLogins returns a page of login rows joined to usernames, most recent first
func (s *Store) ListLogins(ctx context.Context, f RecordFilter, limit, offset int) (*RecordPage[LoginRecord], error) {
	where, args := buildConditions(f, "l.logged_in_at", []string{"u.username", "l.ip_address"})
	base := "login_logs l JOIN users u ON u.id = l.user_id"

	total, err := s.countRows(ctx, base, where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count logins: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT l.id, l.user_id, u.username, COALESCE(l.ip_address, ''), COALESCE(l.user_agent, ''), l.logged_in_at FROM %s%s ORDER BY l.logged_in_at DESC LIMIT $%d OFFSET $%d",
		base, where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logins: %w", err)
	}
	defer rows.Close()

	page := &RecordPage[LoginRecord]{Total: total, Rows: []LoginRecord{}}
	for rows.Next() {
		var rec LoginRecord
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Username, &rec.IPAddress, &rec.UserAgent, &rec.LoggedInAt); err != nil {
			return nil, fmt.Errorf("failed to scan login: %w", err)
		}
		page.Rows = append(page.Rows, rec)
	}
	return page, rows.Err()
}

// ListBrokenLinks returns a page of broken link rows, most recent first
func (s *Store) ListBrokenLinks(ctx context.Context, f RecordFilter, limit, offset int) (*RecordPage[BrokenLinkRecord], error) {
	where, args := buildConditions(f, "checked_at", []string{"url", "page"})

	total, err := s.countRows(ctx, "broken_links", where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count broken links: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, url, COALESCE(page, ''), COALESCE(status_code, 0), checked_at FROM broken_links%s ORDER BY checked_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query broken links: %w", err)
	}
	defer rows.Close()

	page := &RecordPage[BrokenLinkRecord]{Total: total, Rows: []BrokenLinkRecord{}}
	for rows.Next() {
		var rec BrokenLinkRecord
		if err := rows.Scan(&rec.ID, &rec.URL, &rec.Page, &rec.StatusCode, &rec.CheckedAt); err != nil {
			return nil, fmt.Errorf("failed to scan broken link: %w", err)
		}
		page.Rows = append(page.Rows, rec)
	}
	return page, rows.Err()
}

// ListUsers returns a page of account rows, newest accounts first
func (s *Store) ListUsers(ctx context.Context, f RecordFilter, limit, offset int) (*RecordPage[UserRecord], error) {
	where, args := buildConditions(f, "created_at", []string{"username", "email"})

	total, err := s.countRows(ctx, "users", where, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT id, username, email, role, is_active, created_at FROM users%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	page := &RecordPage[UserRecord]{Total: total, Rows: []UserRecord{}}
	for rows.Next() {
		var rec UserRecord
		var role string
		if err := rows.Scan(&rec.ID, &rec.Username, &rec.Email, &role, &rec.IsActive, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		rec.Role = auth.Role(role)
		page.Rows = append(page.Rows, rec)
	}
	return page, rows.Err()
}

// SetUserActive toggles an account's active flag
func (s *Store) SetUserActive(ctx context.Context, userID int64, active bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE users SET is_active = $1 WHERE id = $2", active, userID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
