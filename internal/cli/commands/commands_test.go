package commands

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewIngestCommand(t *testing.T) {
	cmd := NewIngestCommand()

	if cmd.Use != "ingest [file...]" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"config", "db", "log-level", "dry-run", "strict", "webhook-url", "webhook-token", "webhook-trigger"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewImportCommand(t *testing.T) {
	cmd := NewImportCommand()

	if cmd.Use != "import <file...>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	if cmd.Flags().Lookup("dry-run") == nil {
		t.Error("Missing flag: dry-run")
	}
}

func TestNewReportCommand(t *testing.T) {
	cmd := NewReportCommand()

	if cmd.Use != "report <device>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}

	flags := []string{"output", "verbose", "quiet"}
	for _, flag := range flags {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("Missing flag: %s", flag)
		}
	}
}

func TestNewValidateCommand(t *testing.T) {
	cmd := NewValidateCommand()

	if cmd.Use != "validate <config-file>" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
	if !strings.Contains(cmd.Long, "Validate") {
		t.Error("Missing description in Long")
	}
}

func TestNewVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()

	if cmd.Use != "version" {
		t.Errorf("Unexpected Use: %s", cmd.Use)
	}
}

func TestRunValidate_Success(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	config := `database:
  path: ` + filepath.Join(tmpDir, "test.db") + `
report:
  format: text
`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	if err := cmd.Execute(); err != nil {
		t.Errorf("validate failed for valid config: %v", err)
	}
}

func TestRunValidate_BadConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	config := `ingest:
  line_pattern: '(\d+)'
`
	if err := os.WriteFile(configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("Failed to create config: %v", err)
	}

	cmd := NewValidateCommand()
	cmd.SetArgs([]string{configPath})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("validate succeeded for config with wrong capture group count")
	}
	if !strings.Contains(err.Error(), "capture groups") {
		t.Errorf("error = %v", err)
	}
}

func TestLoadConfig_DBOverride(t *testing.T) {
	opts := &CommonOptions{DB: "/tmp/override.db"}

	cfg, err := loadConfig(context.Background(), opts)
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/override.db" {
		t.Errorf("database path = %q, want override", cfg.Database.Path)
	}
	if cfg.Ingest.CompiledPattern() == nil {
		t.Error("defaults were not validated")
	}
}

func TestLoadConfig_EnvOverrideWithoutConfigFile(t *testing.T) {
	t.Setenv("MTKIDCON_DB", "/tmp/env-override.db")

	cfg, err := loadConfig(context.Background(), &CommonOptions{})
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/env-override.db" {
		t.Errorf("database path = %q, want the env override", cfg.Database.Path)
	}
}

func TestLoadConfig_DBFlagBeatsEnv(t *testing.T) {
	t.Setenv("MTKIDCON_DB", "/tmp/env-override.db")

	cfg, err := loadConfig(context.Background(), &CommonOptions{DB: "/tmp/flag.db"})
	if err != nil {
		t.Fatalf("loadConfig() unexpected error: %v", err)
	}
	if cfg.Database.Path != "/tmp/flag.db" {
		t.Errorf("database path = %q, want the flag to win", cfg.Database.Path)
	}
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if _, err := newLogger(level); err != nil {
			t.Errorf("newLogger(%q) unexpected error: %v", level, err)
		}
	}
	if _, err := newLogger("verbose"); err == nil {
		t.Error("newLogger accepted an invalid level")
	}
}
