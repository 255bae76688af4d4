package parser

import (
	"context"
)

// Source provides an iterator over normalized observations.
// Implementations must be safe for sequential access (not concurrent).
type Source interface {
	// Next returns the next observation.
	// Returns io.EOF when no more input is available.
	// Input units that cannot be normalized are skipped or reported
	// through the implementation's skip accounting, never returned
	// as a stream-terminating error.
	Next(ctx context.Context) (*Observation, error)

	// Close releases any resources held by the source.
	Close() error
}
