package parser

import (
	"strconv"
	"strings"
)

// Binary-prefix multipliers recognized in router byte counters.
const (
	kib = 1 << 10
	mib = 1 << 20
	gib = 1 << 30
)

// ParseBytes converts a byte-quantity string such as "12.5KiB",
// "3MiB", "1GiB" or a bare numeral into an exact byte count. A
// missing suffix means the value is already in bytes. Any other
// suffix is a ParseError, never a silent coercion.
func ParseBytes(s string) (float64, error) {
	num := s
	mult := float64(1)

	switch {
	case strings.HasSuffix(s, "KiB"):
		num, mult = s[:len(s)-3], kib
	case strings.HasSuffix(s, "MiB"):
		num, mult = s[:len(s)-3], mib
	case strings.HasSuffix(s, "GiB"):
		num, mult = s[:len(s)-3], gib
	default:
		// A bare numeral is bytes; anything else trailing the
		// digits is an unrecognized unit.
		if i := strings.LastIndexAny(s, "0123456789."); i != len(s)-1 {
			return 0, &ParseError{Input: s, Err: ErrUnknownUnit}
		}
	}

	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, &ParseError{Input: s, Err: ErrBadQuantity}
	}
	if v < 0 {
		// The router reports monotonic counters; a negative value
		// means corrupted input, not a valid quantity.
		return 0, &ParseError{Input: s, Err: ErrBadQuantity}
	}

	return v * mult, nil
}
