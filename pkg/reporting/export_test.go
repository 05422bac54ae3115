package reporting

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/manabihub/insights/pkg/auth"
)

func exportRows() []DetailRow {
	return []DetailRow{
		{UserID: 1, Username: "tanaka", Role: auth.RoleTeacher, Action: "lesson_published", OccurredAt: time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)},
		{UserID: 2, Username: "sato", Role: auth.RoleStudent, Action: "quiz_completed", OccurredAt: time.Date(2024, 1, 5, 10, 30, 0, 0, time.UTC)},
	}
}

func fullPreset() ExportPreset {
	preset, _ := DefaultExportPresets().Get("full")
	return preset
}

func TestWriteExportCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatCSV, fullPreset(), exportRows()); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "user_id,username,role,action,occurred_at" {
		t.Errorf("Unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "tanaka") || !strings.Contains(lines[1], "2024-01-05T09:00:00Z") {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
}

func TestWriteExportCSVEmptyStillHasHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatCSV, fullPreset(), nil); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	got := strings.TrimSpace(buf.String())
	if got != "user_id,username,role,action,occurred_at" {
		t.Errorf("Empty export should be header-only, got %q", got)
	}
}

func TestWriteExportJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatJSON, fullPreset(), exportRows()); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(decoded))
	}
	if decoded[0]["username"] != "tanaka" {
		t.Errorf("Unexpected first object: %+v", decoded[0])
	}
	if _, ok := decoded[0]["user_id"].(float64); !ok {
		t.Errorf("user_id should be numeric in JSON, got %T", decoded[0]["user_id"])
	}
}

func TestWriteExportJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatJSON, fullPreset(), nil); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("Empty JSON export should be [], got %q", buf.String())
	}
}

func TestWriteExportNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatNDJSON, fullPreset(), exportRows()); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 NDJSON lines, got %d", len(lines))
	}
	for i, line := range lines {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestWriteExportRespectsPresetColumns(t *testing.T) {
	preset, _ := DefaultExportPresets().Get("compact")

	var buf bytes.Buffer
	if err := WriteExport(&buf, FormatCSV, preset, exportRows()); err != nil {
		t.Fatalf("WriteExport failed: %v", err)
	}

	header := strings.Split(strings.TrimSpace(buf.String()), "\n")[0]
	if header != "username,action,occurred_at" {
		t.Errorf("Compact preset should drop id and role columns, got %s", header)
	}
}

func TestParseExportFormat(t *testing.T) {
	if format, ok := ParseExportFormat(""); !ok || format != FormatCSV {
		t.Errorf("Empty format should default to CSV, got %s, %v", format, ok)
	}
	if _, ok := ParseExportFormat("xlsx"); ok {
		t.Error("Unknown format should be rejected")
	}
}

func TestLoadExportPresetsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := `presets:
  - name: audit
    columns: [username, role, occurred_at]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write preset file: %v", err)
	}

	presets, err := LoadExportPresets(path)
	if err != nil {
		t.Fatalf("LoadExportPresets failed: %v", err)
	}

	audit, ok := presets.Get("audit")
	if !ok {
		t.Fatal("Expected audit preset to be loaded")
	}
	if len(audit.Columns) != 3 || audit.Columns[0] != ColumnUsername {
		t.Errorf("Unexpected audit preset: %+v", audit)
	}
	if _, ok := presets.Get("full"); !ok {
		t.Error("Defaults should survive a file load")
	}
}

func TestLoadExportPresetsRejectsUnknownColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := `presets:
  - name: bad
    columns: [password]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write preset file: %v", err)
	}

	if _, err := LoadExportPresets(path); err == nil {
		t.Error("Expected an error for unknown column")
	}
}
