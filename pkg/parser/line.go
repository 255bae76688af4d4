package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"time"
)

// DefaultLinePattern matches the kid-control report lines the router
// logs: a syslog clock-time field, the logging host, then the device
// name and both byte counters. Capture groups: time, name, bytes-up,
// bytes-down.
const DefaultLinePattern = `([A-Z][a-z]{2} +\d{1,2} \d{2}:\d{2}:\d{2}) \S+ kid-control: (\S+) bytes-up=(\S+) bytes-down=(\S+)`

// DefaultLineLayout parses the captured syslog time field. The
// underscore day handles both "Jan  2" and "Jan 02" spellings.
const DefaultLineLayout = "Jan _2 15:04:05"

// LineSource streams observations from syslog-formatted input, either
// a single reader (stdin) or a list of files read in order. Lines
// that don't match the pattern are unrelated log noise and are
// skipped silently; lines that match but fail normalization are
// counted and skipped so one bad record never aborts the run.
type LineSource struct {
	pattern *regexp.Regexp
	layout  string
	now     func() time.Time

	reader io.Reader
	files  []string

	currentFile    *os.File
	currentScanner *bufio.Scanner
	currentSource  string
	currentLine    int
	fileIndex      int

	skipped  int
	lastSkip error
}

// LineOption configures a LineSource.
type LineOption func(*LineSource)

// WithClock overrides the time source used to anchor year-less
// timestamps. Tests use it; production code keeps time.Now.
func WithClock(now func() time.Time) LineOption {
	return func(s *LineSource) { s.now = now }
}

// NewLineSource creates a Source reading syslog lines from r.
func NewLineSource(r io.Reader, pattern *regexp.Regexp, layout string, opts ...LineOption) *LineSource {
	s := &LineSource{
		pattern: pattern,
		layout:  layout,
		now:     time.Now,
		reader:  r,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewLineFileSource creates a Source reading syslog lines from the
// given files in order.
func NewLineFileSource(files []string, pattern *regexp.Regexp, layout string, opts ...LineOption) *LineSource {
	s := &LineSource{
		pattern:   pattern,
		layout:    layout,
		now:       time.Now,
		files:     files,
		fileIndex: -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the next normalized observation.
// Returns io.EOF when the input is exhausted.
func (s *LineSource) Next(ctx context.Context) (*Observation, error) {
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if s.currentScanner == nil {
			if err := s.openNext(); err != nil {
				return nil, err
			}
		}

		if s.currentScanner.Scan() {
			s.currentLine++
			line := s.currentScanner.Text()

			m := s.pattern.FindStringSubmatch(line)
			if m == nil {
				// Unrelated log line, not an error.
				continue
			}

			obs, err := s.normalize(m)
			if err != nil {
				s.skipped++
				s.lastSkip = fmt.Errorf("%s:%d: %w", s.currentSource, s.currentLine, err)
				continue
			}
			return obs, nil
		}

		if err := s.currentScanner.Err(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.currentSource, err)
		}

		// Current input exhausted, try the next file.
		if err := s.closeCurrent(); err != nil {
			return nil, err
		}
		s.currentScanner = nil
		if s.reader != nil {
			return nil, io.EOF
		}
	}
}

// normalize turns a pattern match into an Observation: the time field
// goes through year-less resolution, the two counters through byte
// parsing.
func (s *LineSource) normalize(m []string) (*Observation, error) {
	now := s.now()
	t, err := time.ParseInLocation(s.layout, m[1], now.Location())
	if err != nil {
		return nil, &ParseError{Input: m[1], Err: ErrBadTime}
	}

	up, err := ParseBytes(m[3])
	if err != nil {
		return nil, err
	}
	down, err := ParseBytes(m[4])
	if err != nil {
		return nil, err
	}

	return &Observation{
		Timestamp: ResolveYear(t, now),
		Name:      m[2],
		BytesUp:   up,
		BytesDown: down,
	}, nil
}

// Skipped returns how many matched lines failed normalization, and
// the most recent failure for log context.
func (s *LineSource) Skipped() (int, error) {
	return s.skipped, s.lastSkip
}

// Close releases resources.
func (s *LineSource) Close() error {
	return s.closeCurrent()
}

func (s *LineSource) openNext() error {
	if s.reader != nil {
		s.currentScanner = bufio.NewScanner(s.reader)
		s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		s.currentSource = "stdin"
		s.currentLine = 0
		return nil
	}

	s.fileIndex++
	if s.fileIndex >= len(s.files) {
		return io.EOF
	}

	path := s.files[s.fileIndex]
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return fmt.Errorf("opening log file %s: %w", path, err)
	}

	s.currentFile = f
	s.currentScanner = bufio.NewScanner(f)
	s.currentScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	s.currentSource = path
	s.currentLine = 0

	return nil
}

func (s *LineSource) closeCurrent() error {
	if s.currentFile != nil {
		err := s.currentFile.Close()
		s.currentFile = nil
		s.currentScanner = nil
		return err
	}
	return nil
}
