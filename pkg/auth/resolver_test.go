package auth

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestResolveReturnsCapabilitySet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	resolver, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	mock.ExpectQuery("SELECT id, username, role FROM users").
		WithArgs("tok-teacher").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow(42, "tanaka", "teacher"))

	authCtx, err := resolver.Resolve(context.Background(), "tok-teacher")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if authCtx.UserID != 42 {
		t.Errorf("Expected user 42, got %d", authCtx.UserID)
	}
	if !authCtx.HasRole(RoleTeacher) {
		t.Errorf("Expected teacher role, got %s", authCtx.Role)
	}
	if !authCtx.HasCapability(CapViewReports) {
		t.Error("Expected teacher to have reports:view")
	}
	if authCtx.HasCapability(CapManageUsers) {
		t.Error("Expected teacher to lack users:manage")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestResolveCachesWithinTTL(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	resolver, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	// Only one query expected despite two resolves
	mock.ExpectQuery("SELECT id, username, role FROM users").
		WithArgs("tok-admin").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}).
			AddRow(1, "admin", "admin"))

	if _, err := resolver.Resolve(context.Background(), "tok-admin"); err != nil {
		t.Fatalf("First resolve failed: %v", err)
	}
	authCtx, err := resolver.Resolve(context.Background(), "tok-admin")
	if err != nil {
		t.Fatalf("Second resolve failed: %v", err)
	}
	if !authCtx.HasRole(RoleAdmin) {
		t.Errorf("Expected admin role, got %s", authCtx.Role)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Expected single database lookup: %v", err)
	}
}

func TestResolveUnknownToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	resolver, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	mock.ExpectQuery("SELECT id, username, role FROM users").
		WithArgs("tok-bogus").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "role"}))

	if _, err := resolver.Resolve(context.Background(), "tok-bogus"); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestResolveEmptyToken(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	defer db.Close()

	resolver, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver failed: %v", err)
	}

	if _, err := resolver.Resolve(context.Background(), ""); err != ErrInvalidToken {
		t.Errorf("Expected ErrInvalidToken for empty token, got %v", err)
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("teacher"); !ok || role != RoleTeacher {
		t.Errorf("Expected teacher role, got %s ok=%v", role, ok)
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Error("Expected superuser to be unrecognized")
	}
}
