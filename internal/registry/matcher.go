package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// Match filters the registry down to declarations whose triggers match
// the given event. A declaration is a candidate iff:
//   - a trigger's tool pattern matches the event's tool in the event's phase,
//   - at least one changed file matches its file filters (when it has any),
//   - every directory requirement exists under the event's working directory.
//
// An event with no changed files matches only filter-less declarations;
// this is how session-end full-project hooks are selected.
func (r *Registry) Match(ev *hooks.Event) []*hooks.Declaration {
	var candidates []*hooks.Declaration
	for _, key := range r.order {
		d := r.decls[key]
		if !triggersMatch(d.Triggers, ev.ToolName, ev.Phase) {
			continue
		}
		if !filtersMatch(d.FileFilters, ev.ChangedFiles) {
			continue
		}
		if !requirementsMet(d.DirectoryRequirements, ev.WorkingDir) {
			continue
		}
		candidates = append(candidates, d)
	}
	return candidates
}

// triggersMatch reports whether any trigger fires for the tool and phase.
func triggersMatch(triggers []hooks.Trigger, tool string, phase hooks.Phase) bool {
	for _, t := range triggers {
		if t.Phase != phase {
			continue
		}
		if matchToolPattern(t.ToolPattern, tool) {
			return true
		}
	}
	return false
}

// matchToolPattern matches a tool name against a trigger pattern.
// "*" matches any tool; "A|B" matches either name exactly.
func matchToolPattern(pattern, tool string) bool {
	if pattern == hooks.Wildcard {
		return true
	}
	for _, alt := range strings.Split(pattern, "|") {
		if strings.TrimSpace(alt) == tool {
			return true
		}
	}
	return false
}

// filtersMatch reports whether the changed file set satisfies the filters.
// Empty filters match any event, including one with no changed files.
func filtersMatch(filters, changed []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, path := range changed {
		for _, pattern := range filters {
			if matchGlob(path, pattern) {
				return true
			}
		}
	}
	return false
}

// requirementsMet checks that every marker file exists under workDir.
// This is an existence check only, not content-aware.
func requirementsMet(markers []string, workDir string) bool {
	for _, marker := range markers {
		if _, err := os.Stat(filepath.Join(workDir, marker)); err != nil {
			return false
		}
	}
	return true
}

// FilterFiles returns the subset of paths that match the declaration's
// file filters. With no filters every path is relevant.
func FilterFiles(d *hooks.Declaration, paths []string) []string {
	if len(d.FileFilters) == 0 {
		return paths
	}
	var out []string
	for _, path := range paths {
		for _, pattern := range d.FileFilters {
			if matchGlob(path, pattern) {
				out = append(out, path)
				break
			}
		}
	}
	return out
}
