package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func testSummary() *RunSummary {
	return &RunSummary{
		Command:   "ingest",
		Sources:   []string{"stdin"},
		Upserted:  4,
		Skipped:   1,
		StartedAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
		Duration:  120 * time.Millisecond,
	}
}

func TestSend(t *testing.T) {
	var received RunSummary
	var gotAuth, gotAgent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decoding payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient()
	resp := client.Send(context.Background(), testSummary(), SendOptions{
		URL:   server.URL,
		Token: "secret",
	})

	if !resp.Success() {
		t.Fatalf("Send() failed: %v (status %d)", resp.Error, resp.StatusCode)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAgent != "mtkidcon-webhook" {
		t.Errorf("User-Agent = %q", gotAgent)
	}
	if received.Command != "ingest" || received.Upserted != 4 || received.Skipped != 1 {
		t.Errorf("received payload = %+v", received)
	}
}

func TestSend_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	resp := NewClient().Send(context.Background(), testSummary(), SendOptions{URL: server.URL})

	if resp.Success() {
		t.Fatal("Send() reported success for a 500 response")
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d", resp.StatusCode)
	}
	if resp.Error == nil {
		t.Error("expected error for 500 response")
	}
}

func TestSend_Unreachable(t *testing.T) {
	resp := NewClient().Send(context.Background(), testSummary(), SendOptions{
		URL:     "http://127.0.0.1:0/",
		Timeout: time.Second,
	})
	if resp.Success() || resp.Error == nil {
		t.Fatal("Send() should fail for an unreachable endpoint")
	}
}

func TestRunSummary_HasIssues(t *testing.T) {
	tests := []struct {
		name    string
		summary RunSummary
		want    bool
	}{
		{name: "clean run", summary: RunSummary{Upserted: 10}, want: false},
		{name: "skipped records", summary: RunSummary{Skipped: 1}, want: true},
		{name: "rejected files", summary: RunSummary{FailedFiles: []string{"12-00"}}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.HasIssues(); got != tt.want {
				t.Errorf("HasIssues() = %v, want %v", got, tt.want)
			}
		})
	}
}
