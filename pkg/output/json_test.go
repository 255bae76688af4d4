package output

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
)

func TestJSONFormatter(t *testing.T) {
	report := NewReport("deviceA", sampleObservations(), "test.db")
	var buf bytes.Buffer

	f := NewJSONFormatter(FormatOptions{})
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() unexpected error: %v", err)
	}

	var decoded Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Device != "deviceA" {
		t.Errorf("device = %q", decoded.Device)
	}
	if len(decoded.Observations) != 2 {
		t.Errorf("observations = %d, want 2", len(decoded.Observations))
	}
	if decoded.Summary.TotalUp != 13312 {
		t.Errorf("total up = %v", decoded.Summary.TotalUp)
	}
}

func TestJSONFormatter_Quiet(t *testing.T) {
	report := NewReport("deviceA", sampleObservations(), "test.db")
	var buf bytes.Buffer

	f := NewJSONFormatter(FormatOptions{Quiet: true})
	if err := f.Format(context.Background(), report, &buf); err != nil {
		t.Fatalf("Format() unexpected error: %v", err)
	}

	var decoded Summary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Count != 2 {
		t.Errorf("count = %d, want 2", decoded.Count)
	}
}

func TestFormatterNames(t *testing.T) {
	if got := NewTextFormatter(FormatOptions{}).Name(); got != "text" {
		t.Errorf("text formatter Name() = %q", got)
	}
	if got := NewJSONFormatter(FormatOptions{}).Name(); got != "json" {
		t.Errorf("json formatter Name() = %q", got)
	}
}
