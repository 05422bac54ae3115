package reporting

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// ExportFormat selects the export serialization
type ExportFormat string

const (
	FormatCSV     ExportFormat = "csv"
	FormatJSON    ExportFormat = "json"
	FormatNDJSON  ExportFormat = "ndjson"
	exportTimeFmt              = time.RFC3339
)

// ParseExportFormat returns the matching format and whether the value was
// recognized. Empty input maps to CSV.
func ParseExportFormat(value string) (ExportFormat, bool) {
	switch ExportFormat(value) {
	case FormatCSV, FormatJSON, FormatNDJSON:
		return ExportFormat(value), true
	case "":
		return FormatCSV, true
	default:
		return "", false
	}
}

// ContentType returns the MIME type for HTTP responses in this format
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatNDJSON:
		return "application/x-ndjson"
	default:
		return "text/csv"
	}
}

// WriteExport serializes rows to w in the given format with the preset's
// columns. Zero rows still produce a valid artifact: a header-only CSV, an
// empty JSON array, or an empty NDJSON body.
func WriteExport(w io.Writer, format ExportFormat, preset ExportPreset, rows []DetailRow) error {
	switch format {
	case FormatJSON:
		return writeJSONExport(w, preset, rows)
	case FormatNDJSON:
		return writeNDJSONExport(w, preset, rows)
	case FormatCSV:
		return writeCSVExport(w, preset, rows)
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func columnValue(row DetailRow, col ExportColumn) string {
	switch col {
	case ColumnUserID:
		return strconv.FormatInt(row.UserID, 10)
	case ColumnUsername:
		return row.Username
	case ColumnRole:
		return string(row.Role)
	case ColumnAction:
		return row.Action
	case ColumnOccurredAt:
		return row.OccurredAt.Format(exportTimeFmt)
	default:
		return ""
	}
}

func writeCSVExport(w io.Writer, preset ExportPreset, rows []DetailRow) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(preset.Columns))
	for i, col := range preset.Columns {
		header[i] = string(col)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(preset.Columns))
	for _, row := range rows {
		for i, col := range preset.Columns {
			record[i] = columnValue(row, col)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func exportObject(row DetailRow, preset ExportPreset) map[string]interface{} {
	obj := make(map[string]interface{}, len(preset.Columns))
	for _, col := range preset.Columns {
		switch col {
		case ColumnUserID:
			obj[string(col)] = row.UserID
		default:
			obj[string(col)] = columnValue(row, col)
		}
	}
	return obj
}

func writeJSONExport(w io.Writer, preset ExportPreset, rows []DetailRow) error {
	objects := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		objects = append(objects, exportObject(row, preset))
	}
	return json.NewEncoder(w).Encode(objects)
}

func writeNDJSONExport(w io.Writer, preset ExportPreset, rows []DetailRow) error {
	encoder := json.NewEncoder(w)
	for _, row := range rows {
		if err := encoder.Encode(exportObject(row, preset)); err != nil {
			return err
		}
	}
	return nil
}
