package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an mtkidcon configuration file without ingesting anything.

Checks:
  - YAML syntax
  - Required fields
  - Line pattern compiles and has the four required capture groups
  - Line layout can round-trip a timestamp
  - Webhook URLs and triggers`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Printf("Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("\nConfiguration valid!\n")
	fmt.Printf("  Database:      %s\n", cfg.Database.Path)
	fmt.Printf("  Line pattern:  %s\n", cfg.Ingest.LinePattern)
	fmt.Printf("  Line layout:   %s\n", cfg.Ingest.LineLayout)
	fmt.Printf("  Report format: %s\n", cfg.Report.Format)

	if len(cfg.Webhooks) > 0 {
		fmt.Printf("\nWebhooks:\n")
		for i, wh := range cfg.Webhooks {
			name := wh.Name
			if name == "" {
				name = wh.URL
			}
			fmt.Printf("  %d. %s (%s)\n", i+1, name, wh.Trigger)
		}
	}

	return nil
}
