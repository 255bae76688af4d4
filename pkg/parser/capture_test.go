package parser

import (
	"errors"
	"testing"
	"time"
)

var captureTS = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func TestParseCapture(t *testing.T) {
	content := `
name=xiaomi-dalibor bytes-up=12.5KiB bytes-down=3MiB rate-limit=10M
name=lenovo-wifi bytes-down=1GiB
name="living room tv" bytes-up=512 bytes-down=0
`

	got, err := ParseCapture(content, captureTS)
	if err != nil {
		t.Fatalf("ParseCapture() unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d observations, want 3", len(got))
	}

	want := []Observation{
		{Timestamp: captureTS, Name: "xiaomi-dalibor", BytesUp: 12800, BytesDown: 3145728},
		{Timestamp: captureTS, Name: "lenovo-wifi", BytesUp: 0, BytesDown: 1 << 30},
		{Timestamp: captureTS, Name: "living room tv", BytesUp: 512, BytesDown: 0},
	}
	for i := range want {
		if !got[i].Timestamp.Equal(want[i].Timestamp) || got[i].Name != want[i].Name ||
			got[i].BytesUp != want[i].BytesUp || got[i].BytesDown != want[i].BytesDown {
			t.Errorf("observation[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestParseCapture_UnknownKeysIgnored(t *testing.T) {
	content := `name=dev-a mac-address=AA:BB:CC:DD:EE:FF blocked=no bytes-up=1KiB bytes-down=2KiB`

	got, err := ParseCapture(content, captureTS)
	if err != nil {
		t.Fatalf("ParseCapture() unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].BytesUp != 1024 || got[0].BytesDown != 2048 {
		t.Errorf("got %+v", got)
	}
}

func TestParseCapture_Empty(t *testing.T) {
	got, err := ParseCapture("   \n\t ", captureTS)
	if err != nil {
		t.Fatalf("ParseCapture() unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %d observations, want 0", len(got))
	}
}

func TestParseCapture_MalformedFailsWholeFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "token without equals",
			content: `name=dev-a bytes-up bytes-down=1KiB`,
		},
		{
			name:    "bad byte unit",
			content: `name=dev-a bytes-up=10TiB bytes-down=1KiB`,
		},
		{
			name:    "tokens before first device block",
			content: `bytes-up=1KiB name=dev-a`,
		},
		{
			name:    "empty device name",
			content: `name= bytes-up=1KiB`,
		},
		{
			name:    "unterminated quote",
			content: `name="dev a bytes-up=1KiB`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCapture(tt.content, captureTS)
			if err == nil {
				t.Fatalf("ParseCapture() = %+v, want error", got)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error = %v, want a ParseError", err)
			}
		})
	}
}
