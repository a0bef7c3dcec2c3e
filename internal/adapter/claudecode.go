// Package adapter translates host-runtime event shapes into the engine's
// normalized Event. One adapter per host; the core never sees host types.
package adapter

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// claudeInput is the JSON shape Claude Code writes to a hook's stdin.
type claudeInput struct {
	SessionID     string          `json:"session_id"`
	HookEventName string          `json:"hook_event_name"`
	ToolName      string          `json:"tool_name"`
	Cwd           string          `json:"cwd"`
	ToolInput     json.RawMessage `json:"tool_input"`
}

// toolInput carries the file-bearing fields across Claude Code's tools.
type toolInput struct {
	FilePath     string   `json:"file_path"`
	NotebookPath string   `json:"notebook_path"`
	FilePaths    []string `json:"file_paths"`
}

// ParseClaudeCode reads one Claude Code hook invocation from r and
// normalizes it into an Event.
func ParseClaudeCode(r io.Reader) (*hooks.Event, error) {
	var in claudeInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, fmt.Errorf("decode hook input: %w", err)
	}

	phase, err := mapPhase(in.HookEventName)
	if err != nil {
		return nil, err
	}

	// ID stays empty: a session spans many tool events, so session_id is
	// not a per-event correlation id. The engine assigns a unique one.
	ev := &hooks.Event{
		SessionID:  in.SessionID,
		ToolName:   in.ToolName,
		Phase:      phase,
		WorkingDir: in.Cwd,
	}

	if len(in.ToolInput) > 0 {
		var ti toolInput
		// Tool inputs vary per tool; unknown shapes just yield no paths.
		if err := json.Unmarshal(in.ToolInput, &ti); err == nil {
			ev.ChangedFiles = collectPaths(ti)
		}
	}

	return ev, nil
}

// mapPhase translates Claude Code hook event names to engine phases.
func mapPhase(name string) (hooks.Phase, error) {
	switch name {
	case "PreToolUse":
		return hooks.PhasePre, nil
	case "PostToolUse":
		return hooks.PhasePost, nil
	case "Stop", "SessionEnd":
		return hooks.PhaseSessionEnd, nil
	default:
		return "", fmt.Errorf("unsupported hook event %q", name)
	}
}

// collectPaths gathers every file path a tool input can carry.
func collectPaths(ti toolInput) []string {
	var paths []string
	if ti.FilePath != "" {
		paths = append(paths, ti.FilePath)
	}
	if ti.NotebookPath != "" {
		paths = append(paths, ti.NotebookPath)
	}
	paths = append(paths, ti.FilePaths...)
	return paths
}
