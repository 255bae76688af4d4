package config

import (
	"os"
	"time"

	"github.com/bernardjech/mtkidcon/pkg/parser"
)

// Default values for configuration.
const (
	DefaultDatabasePath   = "mtkidcon.db"
	DefaultReportFormat   = "text"
	DefaultWebhookTimeout = 10 * time.Second
)

// Environment variable names.
const (
	EnvDatabasePath = "MTKIDCON_DB"
	EnvLineLayout   = "MTKIDCON_LINE_LAYOUT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Ingest: IngestConfig{
			LinePattern: parser.DefaultLinePattern,
			LineLayout:  parser.DefaultLineLayout,
		},
		Report: ReportConfig{
			Format: DefaultReportFormat,
		},
	}
}

// ApplyEnvironmentOverrides applies environment variable overrides to
// the config. Load calls it after parsing the file; callers that
// start from DefaultConfig must call it themselves before Validate.
func (c *Config) ApplyEnvironmentOverrides() {
	if path := os.Getenv(EnvDatabasePath); path != "" {
		c.Database.Path = path
	}
	if layout := os.Getenv(EnvLineLayout); layout != "" {
		c.Ingest.LineLayout = layout
	}
}
