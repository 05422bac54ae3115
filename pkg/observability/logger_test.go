package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func parseLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestLoggerWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.Info("report generated")

	entry := parseLogLine(t, &buf)
	if entry["msg"] != "report generated" {
		t.Errorf("Expected msg=report generated, got %v", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("Expected level=INFO, got %v", entry["level"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(WarnLevel, &buf)

	logger.Info("should be suppressed")
	if buf.Len() != 0 {
		t.Errorf("Expected info log to be suppressed at warn level, got %q", buf.String())
	}

	logger.Warn("should be written")
	if buf.Len() == 0 {
		t.Error("Expected warn log to be written")
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, &buf)

	logger.WithFields(map[string]interface{}{
		"source": "audit_trail",
		"metric": "distinct_users",
	}).Debug("falling back")

	entry := parseLogLine(t, &buf)
	if entry["source"] != "audit_trail" {
		t.Errorf("Expected source=audit_trail, got %v", entry["source"])
	}
	if entry["metric"] != "distinct_users" {
		t.Errorf("Expected metric=distinct_users, got %v", entry["metric"])
	}
}

func TestLoggerWithError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(errors.New("relation does not exist")).Error("query failed")

	entry := parseLogLine(t, &buf)
	if entry["error"] != "relation does not exist" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
}

func TestLoggerWithNilError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	logger.WithError(nil).Info("no error")

	entry := parseLogLine(t, &buf)
	if _, ok := entry["error"]; ok {
		t.Error("Expected no error field for nil error")
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := GetRequestID(ctx); got != "req-123" {
		t.Errorf("Expected req-123, got %q", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("Expected empty request ID, got %q", got)
	}
}

func TestFromContextAttachesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, &buf)

	ctx := IntoContext(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-456")

	FromContext(ctx).Info("with request id")

	entry := parseLogLine(t, &buf)
	if entry["request_id"] != "req-456" {
		t.Errorf("Expected request_id=req-456, got %v", entry["request_id"])
	}
}
