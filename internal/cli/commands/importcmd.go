package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/parser"
	"github.com/bernardjech/mtkidcon/pkg/store"
	"github.com/bernardjech/mtkidcon/pkg/webhook"
)

// ImportOptions holds command-line options for the import command.
type ImportOptions struct {
	Common  CommonOptions
	Webhook WebhookOptions
	DryRun  bool
}

// NewImportCommand creates the import command.
func NewImportCommand() *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import <file...>",
		Short: "Import capture-batch files into the store",
		Long: `Import capture-batch files pulled from the router.

A capture file is a whitespace-separated sequence of key=value tokens
(values may be double-quoted); each name= token starts a new device
block. The file name's first five characters encode the capture time
as HH-MM; that single time, anchored to today (or yesterday when it
would lie in the future), stamps every device in the file.

A malformed file is rejected as a whole - no partial snapshots - but
the run continues with the remaining files.

Exit codes:
  0 - All files imported
  1 - One or more files were rejected
  2 - Configuration, input, or store error`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args, opts)
		},
	}

	addCommonFlags(cmd, &opts.Common)
	addWebhookFlags(cmd, &opts.Webhook)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and print records without writing to the store")

	return cmd
}

func runImport(cmd *cobra.Command, args []string, opts *ImportOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	started := time.Now()

	cfg, err := loadConfig(ctx, &opts.Common)
	if err != nil {
		return err
	}
	log, err := newLogger(opts.Common.LogLevel)
	if err != nil {
		return err
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return err
	}

	log.Info("import started", "files", len(files), "db", cfg.Database.Path)

	now := time.Now()
	var failed []string
	upserted := 0

	process := func(write func(context.Context, parser.Observation) error) error {
		for _, file := range files {
			obs, err := parseCaptureFile(file, now)
			if err != nil {
				if parser.IsParseError(err) {
					// The snapshot is suspect; reject the file and
					// carry on with the rest of the run.
					log.Warn("capture file rejected", "file", file, "error", err)
					failed = append(failed, file)
					continue
				}
				// Unreadable input is a transport failure and aborts
				// the run.
				return err
			}
			for _, o := range obs {
				if err := write(ctx, o); err != nil {
					return err
				}
				upserted++
			}
		}
		return nil
	}

	if opts.DryRun {
		err = process(func(_ context.Context, o parser.Observation) error {
			fmt.Printf("%s %s %s %s\n",
				o.Timestamp.Format(store.TimeLayout), o.Name,
				strconv.FormatFloat(o.BytesUp, 'f', -1, 64),
				strconv.FormatFloat(o.BytesDown, 'f', -1, 64))
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		st, err := store.Open(cfg.Database.Path, log)
		if err != nil {
			return err
		}
		defer st.Close()

		batch, err := st.Begin(ctx)
		if err != nil {
			return err
		}
		defer batch.Rollback()

		if err := process(batch.Upsert); err != nil {
			return err
		}
		if err := batch.Commit(); err != nil {
			return err
		}
	}

	summary := &webhook.RunSummary{
		Command:     "import",
		Sources:     files,
		Upserted:    upserted,
		FailedFiles: failed,
		StartedAt:   started,
		Duration:    time.Since(started),
	}
	log.Info("import finished", "upserted", upserted, "rejected", len(failed), "duration", summary.Duration)
	sendWebhooks(ctx, log, cfg, &opts.Webhook, summary)

	if len(failed) > 0 {
		ExitCode = 1
	}
	return nil
}

// parseCaptureFile reads one capture-batch file and returns its
// observations, all stamped with the file's resolved capture time.
func parseCaptureFile(path string, now time.Time) ([]parser.Observation, error) {
	hh, mm, err := parser.ClockFromName(path)
	if err != nil {
		return nil, err
	}
	ts := parser.ResolveClock(hh, mm, now)

	content, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("reading capture file %s: %w", path, err)
	}

	return parser.ParseCapture(string(content), ts)
}
