// Package cli provides the command-line interface for mtkidcon.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bernardjech/mtkidcon/internal/cli/commands"
	"github.com/bernardjech/mtkidcon/internal/cli/plugins"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	rootCmd := NewRootCommand()

	// Check if the first argument might be a plugin command
	if len(os.Args) > 1 {
		potentialCommand := os.Args[1]
		// Skip flags (start with -)
		if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
			if !isBuiltinCommand(rootCmd, potentialCommand) {
				if pluginPath, err := plugins.FindPlugin(potentialCommand); err == nil {
					// Plugin found - execute it with remaining args
					return plugins.Execute(pluginPath, os.Args[2:])
				}
				// Plugin not found - fall through to Cobra which will show the error
			}
		}
	}

	if err := rootCmd.Execute(); err != nil {
		// Check if this was an unknown command that could be a plugin
		if len(os.Args) > 1 {
			potentialCommand := os.Args[1]
			if len(potentialCommand) > 0 && potentialCommand[0] != '-' {
				if !isBuiltinCommand(rootCmd, potentialCommand) {
					_, _ = fmt.Fprintln(os.Stderr, plugins.FormatNotFoundError(potentialCommand))
					return 2
				}
			}
		}
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mtkidcon",
		Short: "Collect Mikrotik kid-control bandwidth reports",
		Long: `mtkidcon normalizes the periodic bandwidth reports a Mikrotik router's
kid-control feature emits and stores them as a deduplicated time
series in a local SQLite database.

Two ingestion paths feed the same store:
  ingest   syslog lines (piped on stdin or read from files)
  import   capture-batch key=value dumps pulled from the router

Re-running ingestion over the same input is safe: rows are keyed by
(timestamp, device) and later observations replace earlier byte
counts instead of duplicating rows.

PLUGINS:
  mtkidcon supports plugins for extended functionality. Plugins are
  standalone binaries named mtkidcon-<command> that are automatically
  discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the mtkidcon binary
    2. ~/.mtkidcon/plugins/
    3. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(commands.NewImportCommand())
	rootCmd.AddCommand(commands.NewReportCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
