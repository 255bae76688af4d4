package parser

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

var testPattern = regexp.MustCompile(DefaultLinePattern)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func drain(t *testing.T, src Source) []Observation {
	t.Helper()
	var out []Observation
	for {
		obs, err := src.Next(context.Background())
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("Next() unexpected error: %v", err)
		}
		out = append(out, *obs)
	}
}

func TestLineSource(t *testing.T) {
	now := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	input := strings.Join([]string{
		`Jun 15 12:00:00 router kid-control: xiaomi-dalibor bytes-up=12.5KiB bytes-down=3MiB`,
		`Jun 15 12:00:01 router dhcp lease granted`,
		`completely unrelated noise`,
		`Jun 15 12:00:02 router kid-control: lenovo-wifi bytes-up=512 bytes-down=1GiB`,
		``,
	}, "\n")

	src := NewLineSource(strings.NewReader(input), testPattern, DefaultLineLayout, WithClock(fixedClock(now)))
	defer src.Close()

	got := drain(t, src)
	if len(got) != 2 {
		t.Fatalf("got %d observations, want 2", len(got))
	}

	want0 := Observation{
		Timestamp: time.Date(2024, 6, 15, 12, 0, 0, 0, now.Location()),
		Name:      "xiaomi-dalibor",
		BytesUp:   12800,
		BytesDown: 3145728,
	}
	if !got[0].Timestamp.Equal(want0.Timestamp) || got[0].Name != want0.Name ||
		got[0].BytesUp != want0.BytesUp || got[0].BytesDown != want0.BytesDown {
		t.Errorf("first observation = %+v, want %+v", got[0], want0)
	}

	if got[1].Name != "lenovo-wifi" || got[1].BytesUp != 512 || got[1].BytesDown != 1<<30 {
		t.Errorf("second observation = %+v", got[1])
	}

	if skipped, _ := src.Skipped(); skipped != 0 {
		t.Errorf("skipped = %d, want 0", skipped)
	}
}

func TestLineSource_BadRecordsAreSkippedNotFatal(t *testing.T) {
	now := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	input := strings.Join([]string{
		`Jun 15 12:00:00 router kid-control: bad-unit bytes-up=10TiB bytes-down=0`,
		`Jun 15 12:00:01 router kid-control: good bytes-up=1KiB bytes-down=2KiB`,
		`Jun 15 12:00:02 router kid-control: bad-number bytes-up=x bytes-down=0`,
	}, "\n")

	src := NewLineSource(strings.NewReader(input), testPattern, DefaultLineLayout, WithClock(fixedClock(now)))
	defer src.Close()

	got := drain(t, src)
	if len(got) != 1 || got[0].Name != "good" {
		t.Fatalf("got %+v, want only the good record", got)
	}

	skipped, last := src.Skipped()
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2", skipped)
	}
	if last == nil || !IsParseError(last) {
		t.Errorf("last skip = %v, want a ParseError", last)
	}
}

func TestLineSource_YearBoundary(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	input := `Dec 31 23:00:00 router kid-control: xiaomi-david bytes-up=1KiB bytes-down=1KiB`

	src := NewLineSource(strings.NewReader(input), testPattern, DefaultLineLayout, WithClock(fixedClock(now)))
	defer src.Close()

	got := drain(t, src)
	if len(got) != 1 {
		t.Fatalf("got %d observations, want 1", len(got))
	}

	want := time.Date(2023, 12, 31, 23, 0, 0, 0, now.Location())
	if !got[0].Timestamp.Equal(want) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, want)
	}
}

func TestLineFileSource_MultipleFiles(t *testing.T) {
	now := time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
		return path
	}

	f1 := write("a.log", "Jun 15 10:00:00 router kid-control: dev-a bytes-up=1 bytes-down=2\nnoise\n")
	f2 := write("b.log", "Jun 15 11:00:00 router kid-control: dev-b bytes-up=3 bytes-down=4\n")

	src := NewLineFileSource([]string{f1, f2}, testPattern, DefaultLineLayout, WithClock(fixedClock(now)))
	defer src.Close()

	got := drain(t, src)
	if len(got) != 2 {
		t.Fatalf("got %d observations, want 2", len(got))
	}
	if got[0].Name != "dev-a" || got[1].Name != "dev-b" {
		t.Errorf("names = %s, %s", got[0].Name, got[1].Name)
	}
}

func TestLineFileSource_MissingFile(t *testing.T) {
	src := NewLineFileSource([]string{filepath.Join(t.TempDir(), "absent.log")}, testPattern, DefaultLineLayout)
	defer src.Close()

	_, err := src.Next(context.Background())
	if err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("Next() = %v, want open error", err)
	}
}
