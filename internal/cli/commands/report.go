package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/output"
	"github.com/bernardjech/mtkidcon/pkg/store"
)

// ReportOptions holds command-line options for the report command.
type ReportOptions struct {
	Common  CommonOptions
	Output  string
	Verbose bool
	Quiet   bool
}

// NewReportCommand creates the report command.
func NewReportCommand() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report <device>",
		Short: "Print stored observations for a device",
		Long: `Print all stored observations for a device, oldest first, one line
per observation: timestamp, bytes up, bytes down.

Reads only; never mutates the store.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, args, opts)
		},
	}

	addCommonFlags(cmd, &opts.Common)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output format (text|json); defaults to the config's report.format")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Append summary statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no observation rows")

	return cmd
}

func runReport(cmd *cobra.Command, args []string, opts *ReportOptions) error {
	device := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(ctx, &opts.Common)
	if err != nil {
		return err
	}
	log, err := newLogger(opts.Common.LogLevel)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer st.Close()

	observations, err := st.Query(ctx, device)
	if err != nil {
		return err
	}

	report := output.NewReport(device, observations, cfg.Database.Path)

	format := opts.Output
	if format == "" {
		format = cfg.Report.Format
	}
	formatter, err := createFormatter(format, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, os.Stdout); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}

func createFormatter(format string, opts output.FormatOptions) (output.Formatter, error) {
	switch format {
	case "text":
		return output.NewTextFormatter(opts), nil
	case "json":
		return output.NewJSONFormatter(opts), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (use text or json)", format)
	}
}
