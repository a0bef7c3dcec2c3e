package engine

import (
	"context"
	"sync"
)

// flow is one in-flight event's cancellation handle and file claim set.
type flow struct {
	files  map[string]bool
	cancel context.CancelFunc
}

// flowTracker supersedes older in-flight events when a newer event arrives
// for an overlapping file set. Cancellation is phase-granular: the executor
// finishes its running phase and abandons the rest, so completed results
// and cache writes are never discarded.
type flowTracker struct {
	mu    sync.Mutex
	flows map[*flow]struct{}
}

func newFlowTracker() *flowTracker {
	return &flowTracker{flows: make(map[*flow]struct{})}
}

// begin registers a new event flow, cancelling any in-flight flow that
// claims one of the same files. The returned release func must be called
// when the event finishes processing.
func (t *flowTracker) begin(ctx context.Context, changedFiles []string) (context.Context, func()) {
	files := make(map[string]bool, len(changedFiles))
	for _, f := range changedFiles {
		files[f] = true
	}

	flowCtx, cancel := context.WithCancel(ctx)
	f := &flow{files: files, cancel: cancel}

	t.mu.Lock()
	for existing := range t.flows {
		if overlaps(existing.files, files) {
			existing.cancel()
		}
	}
	t.flows[f] = struct{}{}
	t.mu.Unlock()

	release := func() {
		t.mu.Lock()
		delete(t.flows, f)
		t.mu.Unlock()
		cancel()
	}
	return flowCtx, release
}

// overlaps reports whether two file claim sets share a path.
func overlaps(a, b map[string]bool) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for f := range a {
		if b[f] {
			return true
		}
	}
	return false
}
