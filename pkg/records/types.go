package records

import (
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

// ErrorRecord is one application error row for the dashboard error view
type ErrorRecord struct {
	ID         int64     `json:"id"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	Source     string    `json:"source,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LoginRecord is one login event with client details
type LoginRecord struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	IPAddress  string    `json:"ip_address,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// BrokenLinkRecord is one dead link found by the site checker
type BrokenLinkRecord struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	Page       string    `json:"page,omitempty"`
	StatusCode int       `json:"status_code"`
	CheckedAt  time.Time `json:"checked_at"`
}

// UserRecord is one account row for the admin user list
type UserRecord struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// RecordFilter narrows a flat record listing. Zero values mean no filter;
// both date bounds are inclusive days.
type RecordFilter struct {
	DateFrom time.Time
	DateTo   time.Time
	Level    string
	Role     string
	IsActive *bool
	Search   string
}

// RecordPage is one page of records plus the unpaged total
type RecordPage[T any] struct {
	Total int `json:"total"`
	Rows  []T `json:"rows"`
}
