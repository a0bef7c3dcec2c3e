package hooks

// Phase identifies where in the tool lifecycle an event occurred.
type Phase string

const (
	// PhasePre fires before the tool executes.
	PhasePre Phase = "pre"
	// PhasePost fires after the tool executed.
	PhasePost Phase = "post"
	// PhaseSessionEnd fires once when the agent's turn or session ends.
	PhaseSessionEnd Phase = "session_end"
)

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhasePre, PhasePost, PhaseSessionEnd:
		return true
	default:
		return false
	}
}

// Event is one normalized tool-use notification from a host runtime.
// Events are ephemeral and consumed once.
type Event struct {
	// ID correlates all log records and results for this event. It must be
	// unique per event; the engine assigns one if the host did not.
	ID string `json:"event_id"`
	// SessionID groups every event of one host session. Informational:
	// never used for correlation, since a session spans many events.
	SessionID string `json:"session_id,omitempty"`
	// ToolName is the host tool that triggered the event.
	ToolName string `json:"tool_name"`
	// Phase is the lifecycle phase of the event.
	Phase Phase `json:"phase"`
	// ChangedFiles lists paths affected by the tool invocation.
	// Empty for session-end events, which are not scoped to files.
	ChangedFiles []string `json:"changed_files"`
	// WorkingDir is the directory hooks execute in and the base for
	// directory requirement checks.
	WorkingDir string `json:"working_directory"`
	// Fingerprint is an optional caller-supplied full-project fingerprint
	// used as the cache input for filter-less session-end hooks.
	Fingerprint string `json:"fingerprint,omitempty"`
}
