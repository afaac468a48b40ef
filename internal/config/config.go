// Package config handles exporter configuration loading and management.
package config

import (
	"fmt"

	tagged "github.com/flywave/go-tagged"
)

// Config holds all exporter settings.
type Config struct {
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// ExportConfig mirrors the user facing export options.
type ExportConfig struct {
	ApplyModifiers    bool   `yaml:"apply_modifiers"`
	Triangulate       bool   `yaml:"triangulate"`
	FlipUVCoordinates bool   `yaml:"flip_uv_coordinates"`
	Aggregate         string `yaml:"aggregate"`
	Dialect           string `yaml:"dialect"`
	Workers           int    `yaml:"workers"`
	Binary            bool   `yaml:"binary"`
	PrimitiveCells    int    `yaml:"primitive_cells"`
}

type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns the exporter defaults: modifiers applied, polygons fanned,
// V flipped and an offset table at the end of the file.
func Default() *Config {
	return &Config{
		Export: ExportConfig{
			ApplyModifiers:    true,
			Triangulate:       true,
			FlipUVCoordinates: true,
			Aggregate:         tagged.AggregateOffsetTable.String(),
			Dialect:           tagged.DialectCurrent.String(),
			Workers:           1,
			Binary:            false,
			PrimitiveCells:    tagged.DefaultPrimitiveCells,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Options converts the settings into library options. The logger is left
// for the caller to set.
func (e *ExportConfig) Options() (tagged.Options, error) {
	aggregate, ok := tagged.ParseAggregateStyle(e.Aggregate)
	if !ok {
		return tagged.Options{}, fmt.Errorf("unknown aggregate style %q", e.Aggregate)
	}
	if e.Dialect != "" && e.Dialect != "current" && e.Dialect != "legacy" {
		return tagged.Options{}, fmt.Errorf("unknown dialect %q", e.Dialect)
	}
	return tagged.Options{
		ApplyModifiers: e.ApplyModifiers,
		Triangulate:    e.Triangulate,
		FlipUV:         e.FlipUVCoordinates,
		Aggregate:      aggregate,
		Dialect:        tagged.ParseDialect(e.Dialect),
		Workers:        e.Workers,
		Binary:         e.Binary,
	}, nil
}
