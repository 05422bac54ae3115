package reporting

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/mux"

	"github.com/manabihub/insights/pkg/auth"
	"github.com/manabihub/insights/pkg/observability"
)

func testRouter(sources ...MetricSource) *mux.Router {
	logger := observability.NewLogger(observability.ErrorLevel, os.Stderr)
	service := NewService(NewSelectorWithSources(logger, nil, sources...), logger)
	handler := NewHandler(service, nil, logger, 30)

	router := mux.NewRouter().PathPrefix("/api/v1").Subrouter()
	handler.RegisterRoutes(router)
	handler.RegisterExportRoute(router, nil)
	return router
}

func TestGetSeriesEndpoint(t *testing.T) {
	router := testRouter(&stubSource{name: "a", events: weekFixtureEvents()})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/series?date_from=2024-01-01&date_to=2024-01-07", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var report SeriesReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if report.DateFrom != "2024-01-01" || len(report.Buckets) == 0 {
		t.Errorf("Unexpected report: %+v", report)
	}
}

func TestGetSeriesRejectsBadDate(t *testing.T) {
	router := testRouter(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/series?date_from=Jan-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestGetStatsEndpointEmptyWindow(t *testing.T) {
	router := testRouter(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Empty data should still render, got %d", rec.Code)
	}

	var stats DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if stats.TotalActive != 0 {
		t.Errorf("Expected zero total, got %d", stats.TotalActive)
	}
}

func TestExportEndpointCSV(t *testing.T) {
	router := testRouter(&stubSource{name: "a", events: []EventRow{
		event(1, auth.RoleStudent, "2024-01-05"),
	}})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/export?date_from=2024-01-01&date_to=2024-01-07&format=csv", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Expected text/csv, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "usage_20240101_20240107.csv") {
		t.Errorf("Unexpected disposition: %s", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "user_id,username,role,action,occurred_at") {
		t.Errorf("Expected CSV header, got %q", rec.Body.String())
	}
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	router := testRouter(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/export?format=xlsx", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestExportEndpointRejectsUnknownPreset(t *testing.T) {
	router := testRouter(&stubSource{name: "a"})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/export?preset=secret", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rec.Code)
	}
}

func TestGetActivityEndpointPagination(t *testing.T) {
	router := testRouter(&stubSource{name: "a", events: weekFixtureEvents()})

	req := httptest.NewRequest("GET", "/api/v1/reports/usage/activity?page=3&page_size=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var report DetailReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("Invalid response body: %v", err)
	}
	if report.Page != 3 || report.PageSize != 10 {
		t.Errorf("Expected page echo 3/10, got %d/%d", report.Page, report.PageSize)
	}
}
