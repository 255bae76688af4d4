// Package plugins provides exec-based plugin support for mtkidcon.
// Plugins are separate binaries named mtkidcon-<command> that are
// discovered and executed when an unknown command is invoked.
//
// This follows the same pattern used by kubectl and git for plugins.
package plugins

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// KnownPlugins lists plugins that have official implementations
// available. These get special error messages directing users where
// to obtain them.
var KnownPlugins = map[string]string{
	"fetch": "Pulls capture-batch files from the router over SSH for the import command.",
}

// ErrPluginNotFound is returned when no plugin binary can be located.
var ErrPluginNotFound = errors.New("plugin not found")

// FindPlugin searches for a plugin binary named mtkidcon-<command>.
// It searches in the following locations in order:
//  1. Same directory as the mtkidcon binary
//  2. ~/.mtkidcon/plugins/
//  3. Anywhere in PATH
//
// Returns the full path to the plugin binary if found.
func FindPlugin(command string) (string, error) {
	pluginName := "mtkidcon-" + command

	// 1. Check same directory as mtkidcon binary
	if execPath, err := os.Executable(); err == nil {
		candidate := filepath.Join(filepath.Dir(execPath), pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	// 2. Check ~/.mtkidcon/plugins/
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(homeDir, ".mtkidcon", "plugins", pluginName)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	// 3. Check PATH
	if path, err := exec.LookPath(pluginName); err == nil {
		return path, nil
	}

	return "", ErrPluginNotFound
}

// Execute runs a plugin binary with the given arguments, passing
// through stdin/stdout/stderr, and returns its exit code.
func Execute(pluginPath string, args []string) int {
	cmd := exec.Command(pluginPath, args...) // #nosec G204 -- plugin path is discovered, not user-injected
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing plugin: %v\n", err)
		return 2
	}
	return 0
}

// FormatNotFoundError builds a helpful message for an unknown command
// that looked like a plugin invocation.
func FormatNotFoundError(command string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: unknown command %q for mtkidcon\n", command)

	if desc, ok := KnownPlugins[command]; ok {
		fmt.Fprintf(&b, "\n%q is an official plugin: %s\n", command, desc)
		fmt.Fprintf(&b, "Install mtkidcon-%s and place it next to the mtkidcon binary,\n", command)
		fmt.Fprintf(&b, "in ~/.mtkidcon/plugins/, or anywhere in PATH.\n")
	} else {
		fmt.Fprintf(&b, "\nNo plugin mtkidcon-%s was found next to the binary,\n", command)
		fmt.Fprintf(&b, "in ~/.mtkidcon/plugins/, or in PATH.\n")
	}

	b.WriteString("\nRun 'mtkidcon --help' for usage.")
	return b.String()
}

// isExecutable checks whether path exists and is an executable file.
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}
