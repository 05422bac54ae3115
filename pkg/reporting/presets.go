package reporting

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExportColumn names one exportable detail-row field. The set below is the
// full column vocabulary; presets select and order a subset of it.
type ExportColumn string

const (
	ColumnUserID     ExportColumn = "user_id"
	ColumnUsername   ExportColumn = "username"
	ColumnRole       ExportColumn = "role"
	ColumnAction     ExportColumn = "action"
	ColumnOccurredAt ExportColumn = "occurred_at"
)

var allExportColumns = map[ExportColumn]bool{
	ColumnUserID:     true,
	ColumnUsername:   true,
	ColumnRole:       true,
	ColumnAction:     true,
	ColumnOccurredAt: true,
}

// ExportPreset is a named column selection for exports
type ExportPreset struct {
	Name    string         `yaml:"name"`
	Columns []ExportColumn `yaml:"columns"`
}

// ExportPresets maps preset names to their column lists
type ExportPresets map[string]ExportPreset

// DefaultExportPresets returns the built-in presets used when no preset file
// is configured.
func DefaultExportPresets() ExportPresets {
	return ExportPresets{
		"full": {
			Name:    "full",
			Columns: []ExportColumn{ColumnUserID, ColumnUsername, ColumnRole, ColumnAction, ColumnOccurredAt},
		},
		"compact": {
			Name:    "compact",
			Columns: []ExportColumn{ColumnUsername, ColumnAction, ColumnOccurredAt},
		},
	}
}

// LoadExportPresets reads presets from a YAML file, merged over the defaults.
// An empty path returns just the defaults.
func LoadExportPresets(path string) (ExportPresets, error) {
	presets := DefaultExportPresets()
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read export presets: %w", err)
	}

	var file struct {
		Presets []ExportPreset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse export presets: %w", err)
	}

	for _, preset := range file.Presets {
		if preset.Name == "" {
			return nil, fmt.Errorf("export preset missing name")
		}
		if len(preset.Columns) == 0 {
			return nil, fmt.Errorf("export preset %q has no columns", preset.Name)
		}
		for _, col := range preset.Columns {
			if !allExportColumns[col] {
				return nil, fmt.Errorf("export preset %q has unknown column %q", preset.Name, col)
			}
		}
		presets[preset.Name] = preset
	}

	return presets, nil
}

// Get returns the preset for a name, falling back to the full preset
func (p ExportPresets) Get(name string) (ExportPreset, bool) {
	if name == "" {
		name = "full"
	}
	preset, ok := p[name]
	return preset, ok
}
