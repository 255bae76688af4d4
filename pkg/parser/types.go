// Package parser extracts kid-control bandwidth observations from
// router log lines and capture-batch dumps and normalizes them into
// absolute timestamps and exact byte counts.
package parser

import (
	"errors"
	"fmt"
	"time"
)

// Observation is one normalized bandwidth report for a single device.
// (Timestamp, Name) is the identity: the store keeps at most one row
// per pair, and a later observation for the same pair replaces the
// byte counts (the router resets its counters after each read).
type Observation struct {
	// Timestamp is the absolute capture time, second precision.
	Timestamp time.Time

	// Name is the device identifier as reported by kid-control.
	Name string

	// BytesUp is the uploaded byte count since the last counter reset.
	BytesUp float64

	// BytesDown is the downloaded byte count since the last counter reset.
	BytesDown float64
}

// Sentinel causes carried inside a ParseError.
var (
	ErrUnknownUnit = errors.New("unknown byte unit")
	ErrBadQuantity = errors.New("invalid byte quantity")
	ErrBadTime     = errors.New("malformed time")
	ErrBadToken    = errors.New("malformed key=value token")
)

// ParseError reports input that could not be normalized. It wraps one
// of the sentinel causes above so callers can tell parse failures
// apart from I/O and store failures.
type ParseError struct {
	// Input is the offending fragment (a token, a time field, a filename).
	Input string

	// Err is the underlying cause.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
