// Package config provides configuration loading and validation for
// mtkidcon. Everything has a default, so the tool runs with no config
// file at all; a YAML file tunes the database location, the line
// pattern, and notification webhooks.
package config

import (
	"regexp"
	"time"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Database DatabaseConfig  `yaml:"database"`
	Ingest   IngestConfig    `yaml:"ingest"`
	Report   ReportConfig    `yaml:"report"`
	Webhooks []WebhookConfig `yaml:"webhooks,omitempty"`
}

// DatabaseConfig locates the observation store.
type DatabaseConfig struct {
	// Path is the SQLite database file, created on first use.
	Path string `yaml:"path"`
}

// IngestConfig defines how kid-control lines are recognized.
type IngestConfig struct {
	// LinePattern is a regex matching one report line. Must contain
	// exactly four capture groups: time, device name, bytes-up,
	// bytes-down.
	LinePattern string `yaml:"line_pattern"`

	// LineLayout is the Go time layout for the captured time field.
	// The field carries no year; ingestion anchors it to the run time.
	LineLayout string `yaml:"line_layout"`

	// compiledPattern is populated during validation.
	compiledPattern *regexp.Regexp
}

// CompiledPattern returns the pre-compiled line pattern.
func (c *IngestConfig) CompiledPattern() *regexp.Regexp {
	return c.compiledPattern
}

// ReportConfig sets report command defaults.
type ReportConfig struct {
	// Format is the default output format (text or json).
	Format string `yaml:"format"`
}

// WebhookTrigger controls when a webhook fires.
type WebhookTrigger string

const (
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	WebhookTriggerAlways   WebhookTrigger = "always"
	WebhookTriggerNever    WebhookTrigger = "never"
)

// WebhookConfig defines one notification endpoint for ingest runs.
type WebhookConfig struct {
	Name    string         `yaml:"name,omitempty"`
	URL     string         `yaml:"url"`
	Token   string         `yaml:"token,omitempty"`
	Trigger WebhookTrigger `yaml:"trigger,omitempty"`
	Timeout time.Duration  `yaml:"timeout,omitempty"`
}
