package httputil

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParsePaginationDefaults(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/reports/activity", nil)
	p := ParsePagination(r)

	if p.Page != 1 {
		t.Errorf("Expected page 1, got %d", p.Page)
	}
	if p.PageSize != DefaultPageSize {
		t.Errorf("Expected page size %d, got %d", DefaultPageSize, p.PageSize)
	}
	if p.Offset() != 0 {
		t.Errorf("Expected offset 0, got %d", p.Offset())
	}
}

func TestParsePaginationBounds(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/reports/activity?page=3&page_size=9999", nil)
	p := ParsePagination(r)

	if p.Page != 3 {
		t.Errorf("Expected page 3, got %d", p.Page)
	}
	if p.PageSize != MaxPageSize {
		t.Errorf("Expected page size capped at %d, got %d", MaxPageSize, p.PageSize)
	}
	if p.Offset() != 2*MaxPageSize {
		t.Errorf("Expected offset %d, got %d", 2*MaxPageSize, p.Offset())
	}
}

func TestParsePaginationIgnoresGarbage(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/v1/reports/activity?page=-1&page_size=abc", nil)
	p := ParsePagination(r)

	if p.Page != 1 || p.PageSize != DefaultPageSize {
		t.Errorf("Expected defaults for invalid params, got page=%d size=%d", p.Page, p.PageSize)
	}
}

func TestParseJSONRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/v1/courses", strings.NewReader(`{"title":"N5 Grammar","bogus":true}`))

	var dst struct {
		Title string `json:"title"`
	}
	if err := ParseJSON(r, &dst); err == nil {
		t.Error("Expected error for unknown field")
	}
}
