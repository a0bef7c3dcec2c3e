package exec

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestRun_CapturesOutput(t *testing.T) {
	r := NewRunner()
	res, err := r.Run(context.Background(), Spec{Command: "echo hello"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 0 {
		t.Errorf("ExitCode = %d, want 0", res.ExitCode)
	}
	if strings.TrimSpace(res.Stdout) != "hello" {
		t.Errorf("Stdout = %q, want hello", res.Stdout)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	r := NewRunner()
	res, err := r.Run(context.Background(), Spec{Command: "sh -c 'echo oops >&2; exit 3'"})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if res.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("Stderr = %q, want oops", res.Stderr)
	}
}

func TestRun_Timeout(t *testing.T) {
	r := NewRunner()
	res, err := r.Run(context.Background(), Spec{
		Command: "sleep 5",
		Timeout: 100 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !res.TimedOut {
		t.Error("TimedOut = false, want true")
	}
	if res.Duration >= 5*time.Second {
		t.Errorf("Duration = %v, process was not killed", res.Duration)
	}
}

func TestRun_WorkDir(t *testing.T) {
	dir := t.TempDir()
	r := NewRunner()
	res, err := r.Run(context.Background(), Spec{Command: "pwd", WorkDir: dir})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != dir {
		t.Errorf("Stdout = %q, want %q", res.Stdout, dir)
	}
}

func TestRun_EnvPassedThrough(t *testing.T) {
	r := NewRunner()
	res, err := r.Run(context.Background(), Spec{
		Command: "sh -c 'echo $HOOK_TEST_VAR'",
		Env:     []string{"HOOK_TEST_VAR=wired"},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if strings.TrimSpace(res.Stdout) != "wired" {
		t.Errorf("Stdout = %q, want wired", res.Stdout)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run(context.Background(), Spec{Command: "definitely-not-a-command-xyz"}); err == nil {
		t.Error("expected spawn error for unknown command")
	}
}

func TestRun_UnparsableCommand(t *testing.T) {
	r := NewRunner()
	if _, err := r.Run(context.Background(), Spec{Command: "echo 'unterminated"}); err == nil {
		t.Error("expected parse error for unbalanced quote")
	}
}
