package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/manabihub/insights/pkg/auth"
	"github.com/manabihub/insights/pkg/contextkeys"
	"github.com/manabihub/insights/pkg/observability"
)

func newTestAuthMiddleware(t *testing.T) (*AuthMiddleware, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	resolver, err := auth.NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}
	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	return NewAuthMiddleware(resolver, logger), mock
}

func TestAuthMiddlewareAttachesContext(t *testing.T) {
	mw, mock := newTestAuthMiddleware(t)

	mock.ExpectQuery("SELECT id, username, role FROM users").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow(7, "suzuki", "admin"))

	var captured *auth.AuthContext
	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetAuthContext(r)
	}))

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if captured == nil || captured.Username != "suzuki" {
		t.Errorf("Expected auth context for suzuki, got %+v", captured)
	}
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	mw, _ := newTestAuthMiddleware(t)

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/stats", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadToken(t *testing.T) {
	mw, mock := newTestAuthMiddleware(t)

	mock.ExpectQuery("SELECT id, username, role FROM users").
		WithArgs("tok-bad").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}))

	handler := mw.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/stats", nil)
	req.Header.Set("Authorization", "Bearer tok-bad")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestRequireCapability(t *testing.T) {
	teacherCtx := auth.NewAuthContext(1, "tanaka", auth.RoleTeacher)

	cases := []struct {
		name     string
		cap      auth.Capability
		expected int
	}{
		{"allowed", auth.CapViewReports, http.StatusOK},
		{"denied", auth.CapManageUsers, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := RequireCapability(tc.cap)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest("GET", "/api/v1/reports/users", nil)
			rec := httptest.NewRecorder()

			req = req.WithContext(contextkeys.WithAuth(req.Context(), teacherCtx))
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, rec.Code)
			}
		})
	}
}

func TestRequireRoleWithoutAuth(t *testing.T) {
	handler := RequireRole(auth.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("Handler should not be called")
	}))

	req := httptest.NewRequest("GET", "/api/v1/reports/errors", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("Expected 403, got %d", rec.Code)
	}
}
