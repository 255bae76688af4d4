package output

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/bernardjech/mtkidcon/pkg/store"
)

// TextFormatter formats reports as plain text, one observation per
// line: "timestamp bytes_up bytes_down".
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatSummary(report, w)
	}

	for _, obs := range report.Observations {
		fmt.Fprintf(w, "%s %s %s\n",
			obs.Timestamp.Format(store.TimeLayout),
			strconv.FormatFloat(obs.BytesUp, 'f', -1, 64),
			strconv.FormatFloat(obs.BytesDown, 'f', -1, 64))
	}

	if f.opts.Verbose {
		fmt.Fprintln(w, "---")
		if err := f.formatSummary(report, w); err != nil {
			return err
		}
	}

	return nil
}

func (f *TextFormatter) formatSummary(report *Report, w io.Writer) error {
	if report.Empty() {
		fmt.Fprintf(w, "%s: no observations\n", report.Device)
		return nil
	}
	fmt.Fprintf(w, "%s: %d observations, %s to %s, %.0f bytes up, %.0f bytes down\n",
		report.Device,
		report.Summary.Count,
		report.Summary.First.Format(store.TimeLayout),
		report.Summary.Last.Format(store.TimeLayout),
		report.Summary.TotalUp,
		report.Summary.TotalDown)
	return nil
}
