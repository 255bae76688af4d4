package parser

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// Router log timestamps carry no year and capture-batch names carry no
// date at all, so every extracted time has to be anchored against the
// moment of ingestion. Both resolvers are pure: "now" is always passed
// in, which keeps them testable and keeps clock access out of the
// parsing path.

// ResolveYear anchors a year-less timestamp (month/day plus clock
// time, as found in syslog lines) to an absolute one. It builds
// candidates in the current and the previous year and picks the one
// closer to now; an exact tie prefers the current year. Log lines are
// at most days old in practice, so the nearer year is the right one
// even when ingestion straddles New Year.
//
// A Feb 29 input anchored to a non-leap candidate year normalizes to
// Mar 1 of that year (AddDate semantics) rather than failing.
func ResolveYear(t time.Time, now time.Time) time.Time {
	cur := t.AddDate(now.Year()-t.Year(), 0, 0)
	prev := t.AddDate(now.Year()-1-t.Year(), 0, 0)

	dc := now.Sub(cur)
	if dc < 0 {
		dc = -dc
	}
	dp := now.Sub(prev)
	if dp < 0 {
		dp = -dp
	}

	if dc > dp {
		return prev
	}
	return cur
}

// ResolveClock anchors an hour:minute with no date (a capture-batch
// time) to an absolute timestamp: today at hh:mm, rolled back exactly
// one day when that would lie in the future. That covers batches
// captured just before midnight and processed just after; batches
// older than one day are accepted as today with no further lookback.
func ResolveClock(hh, mm int, now time.Time) time.Time {
	t := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
	if t.After(now) {
		t = t.AddDate(0, 0, -1)
	}
	return t
}

// ClockFromName extracts the capture hour and minute from a
// capture-batch filename. The base name's first five characters are a
// fixed positional "HH-MM" encoding; anything shorter or non-numeric
// is a ParseError.
func ClockFromName(name string) (hh, mm int, err error) {
	base := filepath.Base(name)
	if len(base) < 5 || base[2] != '-' {
		return 0, 0, &ParseError{Input: base, Err: ErrBadTime}
	}

	hh, err = strconv.Atoi(base[0:2])
	if err != nil {
		return 0, 0, &ParseError{Input: base, Err: ErrBadTime}
	}
	mm, err = strconv.Atoi(base[3:5])
	if err != nil {
		return 0, 0, &ParseError{Input: base, Err: ErrBadTime}
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, 0, &ParseError{Input: base, Err: fmt.Errorf("%w: %02d:%02d out of range", ErrBadTime, hh, mm)}
	}

	return hh, mm, nil
}
