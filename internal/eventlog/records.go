// Package eventlog writes the append-only record of every scheduling and
// execution decision the engine makes.
package eventlog

import (
	"time"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// RecordType identifies the transition a record describes.
type RecordType string

const (
	// RecordHookScheduled marks a hook admitted into an execution plan.
	RecordHookScheduled RecordType = "hook_scheduled"
	// RecordHookSkippedCache marks a hook served from the incremental cache.
	RecordHookSkippedCache RecordType = "hook_skipped_cache"
	// RecordHookSkippedDependency marks a hook aborted by an earlier
	// fail_fast failure.
	RecordHookSkippedDependency RecordType = "hook_skipped_dependency_failure"
	// RecordHookStarted marks a hook process spawn.
	RecordHookStarted RecordType = "hook_started"
	// RecordHookResult marks a hook's final status, with duration.
	RecordHookResult RecordType = "hook_result"
	// RecordEngineWarning marks a non-fatal internal condition, such as a
	// cache write failure or overlapping cache claims.
	RecordEngineWarning RecordType = "engine_warning"
	// RecordEngineError marks a per-event internal failure, such as a
	// resolution-time dependency cycle.
	RecordEngineError RecordType = "engine_error"
)

// Record is one self-contained log line. Records are append-only and
// tagged with the correlation id of the triggering event.
type Record struct {
	// Timestamp is when the transition occurred.
	Timestamp time.Time `json:"timestamp"`
	// EventID correlates all records for one triggering event.
	EventID string `json:"event_id"`
	// Type is the transition kind.
	Type RecordType `json:"record_type"`
	// Plugin and Hook identify the declaration, when applicable.
	Plugin string `json:"plugin,omitempty"`
	Hook   string `json:"hook,omitempty"`
	// Status is the hook's disposition, for result and skip records.
	Status hooks.Status `json:"status,omitempty"`
	// DurationMS is the hook run time in milliseconds, for result records.
	DurationMS int64 `json:"duration_ms,omitempty"`
	// Message carries free-form detail for warnings and errors.
	Message string `json:"message,omitempty"`
}
