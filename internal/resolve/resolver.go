// Package resolve orders matched hook candidates into execution phases
// honoring their declared dependencies.
package resolve

import (
	"errors"
	"sort"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// ErrCycleDetected indicates a circular dependency within a candidate set.
// The static registry check covers exact edges, so hitting this at
// resolution time means wildcard edges formed a conditional cycle; the
// event's hooks are skipped entirely rather than silently reordered.
var ErrCycleDetected = errors.New("circular dependency in candidate set")

// Plan is the per-event execution schedule. Hooks within one phase may run
// concurrently; phase N+1 starts only once phase N fully completed.
type Plan struct {
	Phases [][]*hooks.Declaration
}

// HookCount returns the total number of hooks across all phases.
func (p *Plan) HookCount() int {
	n := 0
	for _, phase := range p.Phases {
		n += len(phase)
	}
	return n
}

// BuildPlan topologically sorts the candidate set into phases.
//
// An edge B -> A exists when B depends on A's key, on (A.plugin, "*"), or
// on ("*", "*"). Dependencies on hooks absent from the candidate set are
// trivially satisfied and contribute no edge. A hook with a full-wildcard
// dependency runs after every candidate that does not itself carry one.
func BuildPlan(candidates []*hooks.Declaration) (*Plan, error) {
	byKey := make(map[string]*hooks.Declaration, len(candidates))
	for _, d := range candidates {
		byKey[d.Key()] = d
	}

	// edges maps a hook key to the candidate keys it must run after.
	edges := make(map[string]map[string]bool, len(candidates))
	for _, d := range candidates {
		deps := make(map[string]bool)
		for _, ref := range d.Dependencies {
			for _, target := range expand(ref, d, candidates) {
				deps[target] = true
			}
		}
		edges[d.Key()] = deps
	}

	plan := &Plan{}
	placed := make(map[string]bool, len(candidates))

	for len(placed) < len(candidates) {
		var phase []*hooks.Declaration
		for _, d := range candidates {
			key := d.Key()
			if placed[key] {
				continue
			}
			ready := true
			for dep := range edges[key] {
				if !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				phase = append(phase, d)
			}
		}

		if len(phase) == 0 {
			return nil, ErrCycleDetected
		}

		sort.Slice(phase, func(i, j int) bool {
			return phase[i].Key() < phase[j].Key()
		})
		for _, d := range phase {
			placed[d.Key()] = true
		}
		plan.Phases = append(plan.Phases, phase)
	}

	return plan, nil
}

// expand resolves one dependency reference to the candidate keys it binds to.
func expand(ref hooks.Dependency, owner *hooks.Declaration, candidates []*hooks.Declaration) []string {
	var targets []string

	switch {
	case ref.Plugin == hooks.Wildcard && ref.Hook == hooks.Wildcard:
		// "Runs after everything else": every candidate except the owner
		// and other full-wildcard declarers, which would otherwise form a
		// mutual cycle by construction.
		for _, c := range candidates {
			if c.Key() == owner.Key() || hasFullWildcard(c) {
				continue
			}
			targets = append(targets, c.Key())
		}
	case ref.Hook == hooks.Wildcard:
		for _, c := range candidates {
			if c.Plugin == ref.Plugin && c.Key() != owner.Key() {
				targets = append(targets, c.Key())
			}
		}
	default:
		for _, c := range candidates {
			if c.Key() == ref.Key() {
				targets = append(targets, c.Key())
			}
		}
	}

	return targets
}

// hasFullWildcard reports whether a declaration carries a ("*","*") dependency.
func hasFullWildcard(d *hooks.Declaration) bool {
	for _, ref := range d.Dependencies {
		if ref.Plugin == hooks.Wildcard && ref.Hook == hooks.Wildcard {
			return true
		}
	}
	return false
}
