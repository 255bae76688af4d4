package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/pkg/config"
	"github.com/bernardjech/mtkidcon/pkg/parser"
	"github.com/bernardjech/mtkidcon/pkg/store"
)

// sampleLine is a known-good kid-control report used to prove the
// configured pattern and layout still recognize real router output.
const sampleLine = `Dec 31 23:00:00 router kid-control: xiaomi-dalibor bytes-up=12.5KiB bytes-down=3MiB`

// DiagnoseOptions holds command-line options for the diagnose command.
type DiagnoseOptions struct {
	Common CommonOptions
}

// NewDiagnoseCommand creates the diagnose command.
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Check the environment for ingestion problems",
		Long: `Run environment checks and report what would break an ingestion run.

Checks:
  - Configuration loads and validates
  - The line pattern matches a known-good kid-control report
  - The database opens and the schema is usable

Exit codes:
  0 - All checks passed
  1 - One or more checks failed`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiagnose(cmd, opts)
		},
	}

	addCommonFlags(cmd, &opts.Common)

	return cmd
}

func runDiagnose(cmd *cobra.Command, opts *DiagnoseOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	failures := 0
	check := func(name string, err error) {
		if err != nil {
			failures++
			fmt.Printf("FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Printf("ok    %s\n", name)
	}

	cfg, err := loadConfig(ctx, &opts.Common)
	check("configuration", err)
	if err != nil {
		// Everything below needs the config.
		ExitCode = 1
		return nil
	}

	check("line pattern", checkPattern(cfg))
	check("database", checkDatabase(ctx, cfg, opts))

	if failures > 0 {
		fmt.Printf("\n%d check(s) failed\n", failures)
		ExitCode = 1
	} else {
		fmt.Println("\nAll checks passed")
	}
	return nil
}

// checkPattern runs the sample line through the full normalization
// path: match, time resolution, byte parsing.
func checkPattern(cfg *config.Config) error {
	m := cfg.Ingest.CompiledPattern().FindStringSubmatch(sampleLine)
	if m == nil {
		return fmt.Errorf("pattern does not match a known-good report line")
	}

	now := time.Now()
	t, err := time.ParseInLocation(cfg.Ingest.LineLayout, m[1], now.Location())
	if err != nil {
		return fmt.Errorf("layout cannot parse the captured time field %q: %w", m[1], err)
	}
	if ts := parser.ResolveYear(t, now); ts.Year() == 0 {
		return fmt.Errorf("year resolution produced no year for %q", m[1])
	}

	if _, err := parser.ParseBytes(m[3]); err != nil {
		return err
	}
	if _, err := parser.ParseBytes(m[4]); err != nil {
		return err
	}
	return nil
}

// checkDatabase opens the store (creating the schema if needed) and
// runs a probe query.
func checkDatabase(ctx context.Context, cfg *config.Config, opts *DiagnoseOptions) error {
	log, err := newLogger(opts.Common.LogLevel)
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database.Path, log)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Query(ctx, "diagnose-probe"); err != nil {
		return fmt.Errorf("probe query failed: %w", err)
	}
	return nil
}
