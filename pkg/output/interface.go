package output

import (
	"context"
	"io"
)

// Formatter renders a device report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose adds summary statistics to the observation listing.
	Verbose bool

	// Quiet prints the summary only, no observation rows.
	Quiet bool
}
