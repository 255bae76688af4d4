package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// lineGroups is how many capture groups the line pattern must have:
// time, device name, bytes-up, bytes-down.
const lineGroups = 4

// Load reads and validates a configuration file.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.ApplyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and compiles the line
// pattern.
func Validate(cfg *Config) error {
	if cfg.Database.Path == "" {
		return errors.New("database.path: a database path is required")
	}

	if err := validateIngest(&cfg.Ingest); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	switch cfg.Report.Format {
	case "text", "json":
	default:
		return fmt.Errorf("report.format: unknown format %q (use text or json)", cfg.Report.Format)
	}

	// Webhooks are optional, but validate if present.
	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}

	return nil
}

func validateIngest(ing *IngestConfig) error {
	if ing.LinePattern == "" {
		return errors.New("line_pattern is required")
	}

	re, err := regexp.Compile(ing.LinePattern)
	if err != nil {
		return fmt.Errorf("invalid line_pattern: %w", err)
	}
	if re.NumSubexp() != lineGroups {
		return fmt.Errorf("line_pattern must have exactly %d capture groups (time, name, bytes-up, bytes-down), got %d",
			lineGroups, re.NumSubexp())
	}
	ing.compiledPattern = re

	if ing.LineLayout == "" {
		return errors.New("line_layout is required")
	}
	// The layout must round-trip a probe time; a layout that cannot
	// parse its own rendering will never parse real input.
	probe := time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC)
	if _, err := time.Parse(ing.LineLayout, probe.Format(ing.LineLayout)); err != nil {
		return fmt.Errorf("invalid line_layout: %w", err)
	}

	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}

	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url must be http or https, got %q", u.Scheme)
	}

	switch wh.Trigger {
	case "", WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (use on_issues, always, or never)", wh.Trigger)
	}
	if wh.Trigger == "" {
		wh.Trigger = WebhookTriggerOnIssues
	}
	if wh.Timeout == 0 {
		wh.Timeout = DefaultWebhookTimeout
	}

	return nil
}
