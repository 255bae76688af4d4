package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/parser"
	"github.com/bernardjech/mtkidcon/pkg/store"
	"github.com/bernardjech/mtkidcon/pkg/webhook"
)

// IngestOptions holds command-line options for the ingest command.
type IngestOptions struct {
	Common  CommonOptions
	Webhook WebhookOptions
	DryRun  bool
	Strict  bool
}

// NewIngestCommand creates the ingest command.
func NewIngestCommand() *cobra.Command {
	opts := &IngestOptions{}

	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Ingest kid-control syslog lines into the store",
		Long: `Ingest syslog lines containing kid-control bandwidth reports.

Reads from stdin when no files are given, so the router's syslog
stream can be piped straight in. Lines that don't look like
kid-control reports are skipped silently; matched lines whose time or
byte fields fail to parse are logged and skipped without aborting the
run.

Each report's year-less syslog time is anchored to the nearest year
and the row is upserted by (timestamp, device): re-ingesting the same
log is idempotent.

Exit codes:
  0 - Run completed
  1 - Records were skipped and --strict was set
  2 - Configuration, input, or store error`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args, opts)
		},
	}

	addCommonFlags(cmd, &opts.Common)
	addWebhookFlags(cmd, &opts.Webhook)
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Parse and print records without writing to the store")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Exit non-zero when any matched record is skipped")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string, opts *IngestOptions) error {
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

	source, lineSources, sources, err := buildLineSource(cfg.Ingest.CompiledPattern(), cfg.Ingest.LineLayout, args)
	if err != nil {
		return err
	}
	defer source.Close()

	log.Info("ingest started", "sources", sources, "db", cfg.Database.Path)

	upserted, err := consume(ctx, log, cfg.Database.Path, source, opts.DryRun)
	if err != nil {
		return err
	}

	skipped := 0
	for _, ls := range lineSources {
		n, last := ls.Skipped()
		skipped += n
		if last != nil {
			log.Warn("records skipped", "count", n, "last", last)
		}
	}

	summary := &webhook.RunSummary{
		Command:   "ingest",
		Sources:   sources,
		Upserted:  upserted,
		Skipped:   skipped,
		StartedAt: started,
		Duration:  time.Since(started),
	}
	log.Info("ingest finished", "upserted", upserted, "skipped", skipped, "duration", summary.Duration)
	sendWebhooks(ctx, log, cfg, &opts.Webhook, summary)

	if opts.Strict && skipped > 0 {
		ExitCode = 1
	}
	return nil
}

// buildLineSource assembles the observation stream: stdin when no
// files are given, otherwise the expanded file list merged into one
// chronological stream.
func buildLineSource(pattern *regexp.Regexp, layout string, args []string) (parser.Source, []*parser.LineSource, []string, error) {
	if len(args) == 0 {
		ls := parser.NewLineSource(os.Stdin, pattern, layout)
		return ls, []*parser.LineSource{ls}, []string{"stdin"}, nil
	}

	files, err := parser.ExpandGlobs(args)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(files) == 1 {
		ls := parser.NewLineFileSource(files, pattern, layout)
		return ls, []*parser.LineSource{ls}, files, nil
	}

	lineSources := make([]*parser.LineSource, len(files))
	merged := make([]parser.Source, len(files))
	for i, file := range files {
		ls := parser.NewLineFileSource([]string{file}, pattern, layout)
		lineSources[i] = ls
		merged[i] = ls
	}
	return parser.NewMergedSource(merged...), lineSources, files, nil
}

// consume drains the source into the store (or stdout for dry runs)
// and returns how many rows were written.
func consume(ctx context.Context, log *slog.Logger, dbPath string, source parser.Source, dryRun bool) (int, error) {
	if dryRun {
		count := 0
		for {
			obs, err := source.Next(ctx)
			if errors.Is(err, io.EOF) {
				return count, nil
			}
			if err != nil {
				return count, err
			}
			fmt.Printf("%s %s %s %s\n",
				obs.Timestamp.Format(store.TimeLayout), obs.Name,
				strconv.FormatFloat(obs.BytesUp, 'f', -1, 64),
				strconv.FormatFloat(obs.BytesDown, 'f', -1, 64))
			count++
		}
	}

	st, err := store.Open(dbPath, log)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	batch, err := st.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer batch.Rollback()

	for {
		obs, err := source.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return batch.Upserted(), err
		}
		if err := batch.Upsert(ctx, *obs); err != nil {
			return batch.Upserted(), err
		}
	}

	if err := batch.Commit(); err != nil {
		return batch.Upserted(), err
	}
	return batch.Upserted(), nil
}
