package parser

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// Capture-batch files are snapshots of every tracked device's counters
// at one moment, pulled from the router as whitespace-separated
// key=value tokens. A "name=" token opens a device block; tokens up to
// the next "name=" belong to that device. The capture time lives in
// the filename (HH-MM), so one resolved timestamp applies to every
// block in the file.

// ParseCapture parses the contents of one capture-batch file into
// observations stamped with ts. Unknown keys are kept in the
// intermediate per-device map and ignored, so new router fields never
// break ingestion. A malformed token or byte value fails the whole
// file: snapshots are machine-generated, and a bad token means the
// snapshot is suspect.
func ParseCapture(content string, ts time.Time) ([]Observation, error) {
	tokens, err := tokenize(content)
	if err != nil {
		return nil, err
	}

	var obs []Observation
	var device map[string]string

	flush := func() error {
		if device == nil {
			return nil
		}
		o, err := deviceObservation(device, ts)
		if err != nil {
			return err
		}
		obs = append(obs, *o)
		device = nil
		return nil
	}

	for _, tok := range tokens {
		key, value, ok := strings.Cut(tok, "=")
		if !ok || key == "" {
			return nil, &ParseError{Input: tok, Err: ErrBadToken}
		}

		if key == "name" {
			if err := flush(); err != nil {
				return nil, err
			}
			device = map[string]string{}
		} else if device == nil {
			// Tokens before the first name= have no device to
			// belong to.
			return nil, &ParseError{Input: tok, Err: ErrBadToken}
		}
		if device != nil {
			device[key] = value
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	return obs, nil
}

// deviceObservation builds one Observation from a device block's
// key=value map. Missing counters default to zero.
func deviceObservation(device map[string]string, ts time.Time) (*Observation, error) {
	name := device["name"]
	if name == "" {
		return nil, &ParseError{Input: "name=", Err: ErrBadToken}
	}

	var up, down float64
	var err error
	if v, ok := device["bytes-up"]; ok {
		if up, err = ParseBytes(v); err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
	}
	if v, ok := device["bytes-down"]; ok {
		if down, err = ParseBytes(v); err != nil {
			return nil, fmt.Errorf("device %s: %w", name, err)
		}
	}

	return &Observation{
		Timestamp: ts,
		Name:      name,
		BytesUp:   up,
		BytesDown: down,
	}, nil
}

// tokenize splits content on whitespace while honoring double-quoted
// values, so name="living room tv" stays one token (with the quotes
// stripped).
func tokenize(content string) ([]string, error) {
	var tokens []string
	var b strings.Builder
	inQuote := false

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range content {
		switch {
		case r == '"':
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			b.WriteRune(r)
		}
	}
	if inQuote {
		return nil, &ParseError{Input: b.String(), Err: ErrBadToken}
	}
	flush()

	return tokens, nil
}
