package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// Payload is the async notification sent through the side channel to
// request a new agent turn.
type Payload struct {
	// EventID is the correlation id of the triggering event.
	EventID string `json:"event_id"`
	// Summary is a one-line pass/fail/skip count.
	Summary string `json:"summary"`
	// HookResults carries the full per-hook outcomes.
	HookResults []*hooks.Result `json:"hook_results"`
}

// Notifier delivers async results to the host adapter's side channel.
type Notifier interface {
	// Notify delivers one payload. Implementations retry a bounded number
	// of times; a returned error means the payload was dropped.
	Notify(ctx context.Context, payload *Payload) error
}

// FileNotifier delivers payloads by dropping JSON files into a directory
// the host adapter watches. Writes go through a temp file and rename so
// the watcher never observes a half-written payload.
type FileNotifier struct {
	dir        string
	maxRetries int
}

// NewFileNotifier creates a notifier writing into dir with bounded retries.
func NewFileNotifier(dir string, maxRetries int) *FileNotifier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &FileNotifier{dir: dir, maxRetries: maxRetries}
}

// Notify writes the payload as <dir>/<event_id>.json.
func (n *FileNotifier) Notify(ctx context.Context, payload *Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < n.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}
		if lastErr = n.write(payload.EventID, data); lastErr == nil {
			return nil
		}
	}
	return fmt.Errorf("deliver notification after %d attempts: %w", n.maxRetries, lastErr)
}

// write performs one atomic write attempt.
func (n *FileNotifier) write(eventID string, data []byte) error {
	if err := os.MkdirAll(n.dir, 0755); err != nil {
		return err
	}
	final := filepath.Join(n.dir, eventID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}

// Verify FileNotifier implements Notifier at compile time.
var _ Notifier = (*FileNotifier)(nil)
