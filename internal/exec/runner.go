package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/kballard/go-shellquote"
)

// ProcessRunner implements CommandRunner using os/exec.
//
// Each hook runs in its own process group so that a timeout kill also
// reaps any children the hook spawned (test runners, watchers).
type ProcessRunner struct{}

// NewRunner creates a new ProcessRunner.
func NewRunner() *ProcessRunner {
	return &ProcessRunner{}
}

// Run executes the spec, enforcing its timeout with a process-group kill.
func (r *ProcessRunner) Run(ctx context.Context, spec Spec) (*Result, error) {
	argv, err := shellquote.Split(spec.Command)
	if err != nil {
		return nil, fmt.Errorf("parse command %q: %w", spec.Command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if spec.WorkDir != "" {
		cmd.Dir = spec.WorkDir
	}
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		// Negative pid targets the whole process group.
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	duration := time.Since(start)

	result := &Result{
		ExitCode: -1,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: duration,
	}

	if ctx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		return result, nil
	}

	if runErr == nil {
		result.ExitCode = 0
		return result, nil
	}

	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}

	// Spawn failure: command not found, permission denied, bad workdir.
	return nil, fmt.Errorf("spawn %q: %w", argv[0], runErr)
}

// Verify ProcessRunner implements CommandRunner at compile time.
var _ CommandRunner = (*ProcessRunner)(nil)
