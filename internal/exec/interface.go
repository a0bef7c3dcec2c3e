// Package exec provides an interface for running hook commands as
// isolated child processes.
package exec

import (
	"context"
	"time"
)

// Spec describes one hook process invocation.
type Spec struct {
	// Command is the fully rendered shell-style command line.
	Command string
	// WorkDir is the directory the process runs in.
	WorkDir string
	// Env holds extra KEY=VALUE pairs appended to the inherited environment.
	Env []string
	// Timeout bounds the process runtime. On expiry the whole process
	// group is killed.
	Timeout time.Duration
}

// Result is the raw outcome of one process invocation.
type Result struct {
	// ExitCode is the process exit code, or -1 if it never exited normally.
	ExitCode int
	// Stdout and Stderr hold the captured output.
	Stdout string
	Stderr string
	// TimedOut is true if the process was killed on timeout.
	TimedOut bool
	// Duration is the wall-clock run time.
	Duration time.Duration
}

// CommandRunner defines the interface for running hook commands.
// This abstraction allows mocking process execution in tests.
type CommandRunner interface {
	// Run executes the spec and returns its result. An error is returned
	// only for spawn failures; non-zero exits and timeouts are reported
	// through the Result.
	Run(ctx context.Context, spec Spec) (*Result, error)
}
