package hooks

import "time"

// Status is the final disposition of a scheduled hook.
type Status string

const (
	// StatusSuccess means the hook ran and exited zero.
	StatusSuccess Status = "success"
	// StatusFailure means the hook ran and failed (non-zero exit, timeout,
	// or spawn failure).
	StatusFailure Status = "failure"
	// StatusSkippedCache means the hook was served from the incremental
	// cache and no process was spawned.
	StatusSkippedCache Status = "skipped_cache"
	// StatusSkippedDependency means an earlier fail_fast failure aborted
	// the cascade before this hook could start.
	StatusSkippedDependency Status = "skipped_dependency_failure"
)

// Skipped returns true if the hook never spawned a process.
func (s Status) Skipped() bool {
	return s == StatusSkippedCache || s == StatusSkippedDependency
}

// Passed returns true if the hook's validation is known good: it either
// succeeded or was skipped against byte-identical, previously validated input.
func (s Status) Passed() bool {
	return s == StatusSuccess || s == StatusSkippedCache
}

// Result is the outcome of one scheduled hook for one event.
type Result struct {
	// Plugin and Hook identify the declaration that produced this result.
	Plugin string `json:"plugin"`
	Hook   string `json:"hook"`
	// Status is the final disposition.
	Status Status `json:"status"`
	// ExitCode is the process exit code. -1 for timeouts, spawn failures,
	// and skipped hooks.
	ExitCode int `json:"exit_code"`
	// Stdout and Stderr hold the captured process output.
	Stdout string `json:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty"`
	// Duration is the wall-clock run time. Zero for skipped hooks.
	Duration time.Duration `json:"duration_ms"`
	// DeliveryMode is copied from the declaration so the delivery layer
	// can group results without consulting the registry.
	DeliveryMode DeliveryMode `json:"-"`
}

// Key returns the "plugin:hook" key of the declaration behind this result.
func (r *Result) Key() string {
	return r.Plugin + ":" + r.Hook
}
