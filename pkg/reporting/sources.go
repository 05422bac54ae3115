package reporting

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

// MetricSource is one physical origin of activity data. Implementations must
// return an empty (non-nil) slice when the window simply has no data, and an
// error only on query failure; the Selector treats the two differently in
// logs but falls through on both.
type MetricSource interface {
	Name() string
	Events(ctx context.Context, f Filter) ([]EventRow, error)
	DistinctUsers(ctx context.Context, f Filter) (int, error)
	RoleCounts(ctx context.Context, f Filter) ([]RoleCount, error)
	// DetailRows returns one page of enriched rows plus the unpaged total,
	// both from the same source so the count always matches the rows.
	DetailRows(ctx context.Context, f Filter, limit, offset int) ([]DetailRow, int, error)
}

// sourceSchema maps one event table onto the normalized event shape. The
// three production tables differ only in column names and in which user
// column joins to users.
type sourceSchema struct {
	name       string
	table      string
	userColumn string
	timeColumn string
	// actionExpr is selected as the action in detail rows. Tables without a
	// natural action column substitute a constant.
	actionExpr string
	// searchExprs are ILIKE'd against the free-text search term
	searchExprs []string
}

var (
	activityLogSchema = sourceSchema{
		name:        "activity_logs",
		table:       "activity_logs",
		userColumn:  "user_id",
		timeColumn:  "occurred_at",
		actionExpr:  "e.action",
		searchExprs: []string{"u.username", "e.action", "e.details"},
	}
	auditTrailSchema = sourceSchema{
		name:        "audit_trail",
		table:       "audit_trail",
		userColumn:  "actor_id",
		timeColumn:  "created_at",
		actionExpr:  "e.event",
		searchExprs: []string{"u.username", "e.event"},
	}
	loginLogSchema = sourceSchema{
		name:        "login_logs",
		table:       "login_logs",
		userColumn:  "user_id",
		timeColumn:  "logged_in_at",
		actionExpr:  "'login'",
		searchExprs: []string{"u.username", "e.ip_address"},
	}
)

// dbSource reads one event table through its schema mapping. Every query is
// bounded by a per-source timeout so a slow table cannot stall the whole
// fallback chain.
type dbSource struct {
	db      *sql.DB
	schema  sourceSchema
	timeout time.Duration
}

// NewActivityLogSource reads the primary activity_logs table
func NewActivityLogSource(db *sql.DB, timeout time.Duration) MetricSource {
	return &dbSource{db: db, schema: activityLogSchema, timeout: timeout}
}

// NewAuditTrailSource reads the audit_trail table as the first fallback
func NewAuditTrailSource(db *sql.DB, timeout time.Duration) MetricSource {
	return &dbSource{db: db, schema: auditTrailSchema, timeout: timeout}
}

// NewLoginLogSource reads the login_logs table as the last-resort fallback
func NewLoginLogSource(db *sql.DB, timeout time.Duration) MetricSource {
	return &dbSource{db: db, schema: loginLogSchema, timeout: timeout}
}

func (s *dbSource) Name() string {
	return s.schema.name
}

// whereClause builds the shared filter predicate. The window is applied as a
// half-open interval so the inclusive final day is fully covered.
func (s *dbSource) whereClause(f Filter) (string, []interface{}) {
	conditions := []string{}
	args := []interface{}{}
	argCount := 1

	conditions = append(conditions, fmt.Sprintf("e.%s >= $%d", s.schema.timeColumn, argCount))
	args = append(args, f.From)
	argCount++

	conditions = append(conditions, fmt.Sprintf("e.%s < $%d", s.schema.timeColumn, argCount))
	args = append(args, f.UpperBound())
	argCount++

	if f.Role != "" {
		conditions = append(conditions, fmt.Sprintf("u.role = $%d", argCount))
		args = append(args, string(f.Role))
		argCount++
	}

	if f.Search != "" {
		likes := make([]string, 0, len(s.schema.searchExprs))
		for _, expr := range s.schema.searchExprs {
			likes = append(likes, fmt.Sprintf("%s ILIKE $%d", expr, argCount))
			args = append(args, "%"+f.Search+"%")
			argCount++
		}
		conditions = append(conditions, "("+strings.Join(likes, " OR ")+")")
	}

	return strings.Join(conditions, " AND "), args
}

func (s *dbSource) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *dbSource) Events(ctx context.Context, f Filter) ([]EventRow, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	where, args := s.whereClause(f)
	query := fmt.Sprintf(`
		SELECT e.%s, u.role, e.%s
		FROM %s e
		JOIN users u ON u.id = e.%s
		WHERE %s
		ORDER BY e.%s DESC`,
		s.schema.userColumn, s.schema.timeColumn,
		s.schema.table, s.schema.userColumn,
		where, s.schema.timeColumn)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &DataSourceError{Source: s.schema.name, Metric: "events", Err: err}
	}
	defer rows.Close()

	events := []EventRow{}
	for rows.Next() {
		var row EventRow
		var role string
		if err := rows.Scan(&row.UserID, &role, &row.OccurredAt); err != nil {
			return nil, &DataSourceError{Source: s.schema.name, Metric: "events", Err: err}
		}
		row.Role = auth.Role(role)
		events = append(events, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataSourceError{Source: s.schema.name, Metric: "events", Err: err}
	}
	return events, nil
}

func (s *dbSource) DistinctUsers(ctx context.Context, f Filter) (int, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	where, args := s.whereClause(f)
	query := fmt.Sprintf(`
		SELECT COUNT(DISTINCT e.%s)
		FROM %s e
		JOIN users u ON u.id = e.%s
		WHERE %s`,
		s.schema.userColumn, s.schema.table, s.schema.userColumn, where)

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, &DataSourceError{Source: s.schema.name, Metric: "distinct_users", Err: err}
	}
	return count, nil
}

func (s *dbSource) RoleCounts(ctx context.Context, f Filter) ([]RoleCount, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	where, args := s.whereClause(f)
	query := fmt.Sprintf(`
		SELECT u.role, COUNT(DISTINCT e.%s)
		FROM %s e
		JOIN users u ON u.id = e.%s
		WHERE %s
		GROUP BY u.role
		ORDER BY u.role`,
		s.schema.userColumn, s.schema.table, s.schema.userColumn, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &DataSourceError{Source: s.schema.name, Metric: "role_counts", Err: err}
	}
	defer rows.Close()

	counts := []RoleCount{}
	for rows.Next() {
		var rc RoleCount
		var role string
		if err := rows.Scan(&role, &rc.Count); err != nil {
			return nil, &DataSourceError{Source: s.schema.name, Metric: "role_counts", Err: err}
		}
		rc.Role = auth.Role(role)
		counts = append(counts, rc)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataSourceError{Source: s.schema.name, Metric: "role_counts", Err: err}
	}
	return counts, nil
}

func (s *dbSource) DetailRows(ctx context.Context, f Filter, limit, offset int) ([]DetailRow, int, error) {
	ctx, cancel := s.queryContext(ctx)
	defer cancel()

	where, args := s.whereClause(f)

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s e
		JOIN users u ON u.id = e.%s
		WHERE %s`,
		s.schema.table, s.schema.userColumn, where)
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, &DataSourceError{Source: s.schema.name, Metric: "detail_rows", Err: err}
	}

	argCount := len(args) + 1
	query := fmt.Sprintf(`
		SELECT e.%s, u.username, u.role, %s, e.%s
		FROM %s e
		JOIN users u ON u.id = e.%s
		WHERE %s
		ORDER BY e.%s DESC
		LIMIT $%d OFFSET $%d`,
		s.schema.userColumn, s.schema.actionExpr, s.schema.timeColumn,
		s.schema.table, s.schema.userColumn,
		where, s.schema.timeColumn,
		argCount, argCount+1)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, &DataSourceError{Source: s.schema.name, Metric: "detail_rows", Err: err}
	}
	defer rows.Close()

	details := []DetailRow{}
	for rows.Next() {
		var row DetailRow
		var role string
		if err := rows.Scan(&row.UserID, &row.Username, &role, &row.Action, &row.OccurredAt); err != nil {
			return nil, 0, &DataSourceError{Source: s.schema.name, Metric: "detail_rows", Err: err}
		}
		row.Role = auth.Role(role)
		details = append(details, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, &DataSourceError{Source: s.schema.name, Metric: "detail_rows", Err: err}
	}
	return details, total, nil
}
