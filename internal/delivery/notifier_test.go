package delivery

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

func TestFileNotifier(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notifications")
	n := NewFileNotifier(dir, 3)

	payload := &Payload{
		EventID: "ev-42",
		Summary: "0 passed, 1 failed, 0 skipped",
		HookResults: []*hooks.Result{
			{Plugin: "test", Hook: "suite", Status: hooks.StatusFailure, Stderr: "FAIL"},
		},
	}

	if err := n.Notify(context.Background(), payload); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "ev-42.json"))
	if err != nil {
		t.Fatalf("payload file not written: %v", err)
	}

	var got Payload
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if got.EventID != "ev-42" {
		t.Errorf("EventID = %q, want ev-42", got.EventID)
	}
	if len(got.HookResults) != 1 || got.HookResults[0].Status != hooks.StatusFailure {
		t.Errorf("HookResults = %+v, want one failure", got.HookResults)
	}

	// No leftover temp file from the atomic write.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("notification dir has %d entries, want 1", len(entries))
	}
}

func TestFileNotifier_RetriesExhausted(t *testing.T) {
	// A directory path that cannot be created forces every attempt to fail.
	n := NewFileNotifier("/proc/nonexistent/notifications", 2)
	err := n.Notify(context.Background(), &Payload{EventID: "ev"})
	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
}

func TestFileNotifier_CancelledContext(t *testing.T) {
	n := NewFileNotifier("/proc/nonexistent/notifications", 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Notify(ctx, &Payload{EventID: "ev"})
	if err == nil {
		t.Fatal("expected error under cancelled context")
	}
}
