// Package commands implements the mtkidcon subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/config"
	"github.com/bernardjech/mtkidcon/pkg/webhook"
)

// ExitCode is set by commands to indicate the result:
// 0 clean run, 1 issues detected, 2 configuration or runtime error
// (the latter via the error return path).
var ExitCode = 0

// CommonOptions holds flags shared by every data-touching command.
type CommonOptions struct {
	Config   string
	DB       string
	LogLevel string
}

func addCommonFlags(cmd *cobra.Command, opts *CommonOptions) {
	cmd.Flags().StringVarP(&opts.Config, "config", "c", "", "Path to YAML config file (optional)")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database path (overrides config)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug|info|warn|error)")
}

// loadConfig loads the config file when one was given, otherwise the
// defaults, and applies the --db override.
func loadConfig(ctx context.Context, opts *CommonOptions) (*config.Config, error) {
	var cfg *config.Config
	if opts.Config != "" {
		loaded, err := config.Load(ctx, opts.Config)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		cfg.ApplyEnvironmentOverrides()
		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("validating default config: %w", err)
		}
	}

	if opts.DB != "" {
		cfg.Database.Path = opts.DB
	}

	return cfg, nil
}

// newLogger builds the run's logger. Components receive it at
// construction; there is no package-level logger state.
func newLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// WebhookOptions holds the webhook flags shared by ingest and import.
type WebhookOptions struct {
	URL     string
	Token   string
	Trigger string
}

func addWebhookFlags(cmd *cobra.Command, opts *WebhookOptions) {
	cmd.Flags().StringVar(&opts.URL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.Token, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.Trigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")
}

// sendWebhooks posts the run summary to all configured endpoints.
// Errors are logged but never fail the run.
func sendWebhooks(ctx context.Context, log *slog.Logger, cfg *config.Config, opts *WebhookOptions, summary *webhook.RunSummary) {
	webhooks := collectWebhooks(cfg, opts)
	if len(webhooks) == 0 {
		return
	}

	client := webhook.NewClient()

	for _, wh := range webhooks {
		if !shouldFireWebhook(wh.Trigger, summary.HasIssues()) {
			continue
		}

		resp := client.Send(ctx, summary, webhook.SendOptions{
			URL:     wh.URL,
			Token:   wh.Token,
			Timeout: wh.Timeout,
		})

		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		if resp.Success() {
			log.Info("webhook sent", "name", name, "status", resp.StatusCode, "duration", resp.Duration)
		} else {
			log.Warn("webhook failed", "name", name, "error", resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *WebhookOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.URL != "" {
		trigger := config.WebhookTrigger(opts.Trigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}
		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.URL,
			Token:   opts.Token,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}

// shouldFireWebhook determines if a webhook should fire based on
// trigger and run outcome.
func shouldFireWebhook(trigger config.WebhookTrigger, hasIssues bool) bool {
	switch trigger {
	case config.WebhookTriggerAlways:
		return true
	case config.WebhookTriggerNever:
		return false
	case config.WebhookTriggerOnIssues:
		return hasIssues
	default:
		return hasIssues
	}
}
