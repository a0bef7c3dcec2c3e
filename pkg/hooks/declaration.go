// Package hooks defines the core data model for hook declarations,
// events, and execution results shared across the engine.
package hooks

import "time"

// FailurePolicy controls whether a hook failure aborts later phases.
type FailurePolicy string

const (
	// FailFast aborts all subsequent phases of the current event on failure.
	FailFast FailurePolicy = "fail_fast"
	// Continue reports the failure but lets siblings and later phases run.
	Continue FailurePolicy = "continue"
)

// Valid returns true if the policy is a known value.
func (p FailurePolicy) Valid() bool {
	switch p {
	case FailFast, Continue:
		return true
	default:
		return false
	}
}

// DeliveryMode selects how a hook's result reaches the initiating agent.
type DeliveryMode string

const (
	// DeliveryInline appends results to the tool return value in the same turn.
	DeliveryInline DeliveryMode = "inline"
	// DeliveryAsync sends results through a side channel requesting a new turn.
	DeliveryAsync DeliveryMode = "async"
)

// Valid returns true if the mode is a known value.
func (m DeliveryMode) Valid() bool {
	switch m {
	case DeliveryInline, DeliveryAsync:
		return true
	default:
		return false
	}
}

// Trigger describes one condition under which a hook becomes a candidate.
type Trigger struct {
	// ToolPattern matches the event's tool name. "*" matches any tool,
	// and "A|B" matches either tool exactly.
	ToolPattern string `yaml:"tool" json:"tool"`
	// Phase is the tool lifecycle phase this trigger fires on.
	Phase Phase `yaml:"phase" json:"phase"`
}

// Wildcard is the plugin or hook value that matches any key component.
const Wildcard = "*"

// Dependency references a hook that must complete before the declaring hook.
type Dependency struct {
	// Plugin is the plugin id of the prerequisite, or "*" for any plugin.
	Plugin string `yaml:"plugin" json:"plugin"`
	// Hook is the hook id of the prerequisite, or "*" for any hook.
	Hook string `yaml:"hook" json:"hook"`
	// Optional allows the prerequisite to be absent from the registry.
	Optional bool `yaml:"optional,omitempty" json:"optional,omitempty"`
}

// IsWildcard returns true if either component of the reference is "*".
func (d Dependency) IsWildcard() bool {
	return d.Plugin == Wildcard || d.Hook == Wildcard
}

// Key returns the prerequisite's "plugin:hook" key. Only meaningful for
// non-wildcard dependencies.
func (d Dependency) Key() string {
	return d.Plugin + ":" + d.Hook
}

// Declaration is a single validation hook declared by a plugin.
// Declarations are created at registry load time and immutable thereafter.
type Declaration struct {
	// Plugin is the id of the plugin that declared this hook.
	Plugin string `json:"plugin"`
	// Hook is the id of the hook, unique within its plugin.
	Hook string `json:"hook"`
	// PluginRoot is the directory the plugin was loaded from.
	PluginRoot string `json:"-"`
	// Command is the command template. The {files} placeholder is replaced
	// with the quoted set of changed file paths at run time.
	Command string `json:"command"`
	// Triggers lists the conditions under which this hook is a candidate.
	Triggers []Trigger `json:"triggers"`
	// FileFilters is an optional glob set. If non-empty, at least one
	// changed file must match for the hook to be a candidate.
	FileFilters []string `json:"file_filters,omitempty"`
	// DirectoryRequirements lists marker files that must exist under the
	// event's working directory (e.g. a tool config file).
	DirectoryRequirements []string `json:"requires,omitempty"`
	// Dependencies lists hooks that must complete before this one starts.
	Dependencies []Dependency `json:"depends_on,omitempty"`
	// FailurePolicy controls cascade behavior on failure. Defaults to fail_fast.
	FailurePolicy FailurePolicy `json:"failure_policy"`
	// DeliveryMode selects the result channel. Defaults to inline.
	DeliveryMode DeliveryMode `json:"delivery"`
	// Timeout bounds the hook's process runtime. Zero means the system default.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// Key returns the unique "plugin:hook" key for this declaration.
func (d *Declaration) Key() string {
	return d.Plugin + ":" + d.Hook
}
