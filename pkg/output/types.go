// Package output provides formatting for device bandwidth reports.
package output

import (
	"time"

	"github.com/bernardjech/mtkidcon/pkg/parser"
)

// Report is the complete output for one device query.
type Report struct {
	// Device is the queried device name.
	Device string `json:"device"`

	// Observations are all stored rows for the device, ascending by
	// timestamp.
	Observations []parser.Observation `json:"observations"`

	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Metadata provides context about the query.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics over the observations.
type Summary struct {
	// Count is the number of stored observations.
	Count int `json:"count"`

	// First and Last bound the covered time range. Zero when the
	// device has no observations.
	First time.Time `json:"first,omitempty"`
	Last  time.Time `json:"last,omitempty"`

	// TotalUp and TotalDown sum the byte counters across all
	// observations. The router resets counters between reports, so
	// the sum is the device's total traffic over the covered range.
	TotalUp   float64 `json:"total_bytes_up"`
	TotalDown float64 `json:"total_bytes_down"`
}

// Metadata provides context about the query.
type Metadata struct {
	// Database is the path of the store that was queried.
	Database string `json:"database"`

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time `json:"generated_at"`
}

// NewReport builds a Report from a device's stored observations.
func NewReport(device string, observations []parser.Observation, database string) *Report {
	report := &Report{
		Device:       device,
		Observations: observations,
		Metadata: Metadata{
			Database:    database,
			GeneratedAt: time.Now(),
		},
		Summary: Summary{
			Count: len(observations),
		},
	}

	for _, obs := range observations {
		report.Summary.TotalUp += obs.BytesUp
		report.Summary.TotalDown += obs.BytesDown
	}
	if len(observations) > 0 {
		report.Summary.First = observations[0].Timestamp
		report.Summary.Last = observations[len(observations)-1].Timestamp
	}

	return report
}

// Empty returns true when the device has no stored observations.
func (r *Report) Empty() bool {
	return r.Summary.Count == 0
}
