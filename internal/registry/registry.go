// Package registry loads hook declarations from installed plugins and
// normalizes them into a flat, read-only table keyed by "plugin:hook".
package registry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// ErrCycleDetected indicates a circular dependency in the declaration set.
var ErrCycleDetected = errors.New("circular hook dependency detected")

// Registry is the normalized table of all installed hook declarations.
// It is immutable after construction and safe for concurrent reads.
type Registry struct {
	// decls maps "plugin:hook" keys to declarations.
	decls map[string]*hooks.Declaration
	// order holds keys in deterministic (sorted) iteration order.
	order []string
}

// New validates a declaration set and builds a Registry from it.
// Validation failures are fatal, startup-time errors: duplicate keys,
// self-dependencies, non-optional references to missing hooks, and
// dependency cycles all reject the entire set.
func New(decls []*hooks.Declaration) (*Registry, error) {
	r := &Registry{
		decls: make(map[string]*hooks.Declaration, len(decls)),
	}

	for _, d := range decls {
		key := d.Key()
		if _, exists := r.decls[key]; exists {
			return nil, fmt.Errorf("duplicate hook declaration %q", key)
		}
		r.decls[key] = d
		r.order = append(r.order, key)
	}
	sort.Strings(r.order)

	for _, d := range decls {
		for _, dep := range d.Dependencies {
			if dep.IsWildcard() {
				// Wildcard edges are resolved per event; only the declaring
				// hook itself is excluded, so they cannot dangle.
				continue
			}
			if dep.Key() == d.Key() {
				return nil, fmt.Errorf("hook %q depends on itself", d.Key())
			}
			if _, exists := r.decls[dep.Key()]; !exists && !dep.Optional {
				return nil, fmt.Errorf("hook %q depends on missing hook %q", d.Key(), dep.Key())
			}
		}
	}

	if r.hasCycle() {
		return nil, ErrCycleDetected
	}

	return r, nil
}

// hasCycle detects cycles among exact (non-wildcard) dependency edges
// using depth-first search with coloring. Wildcard edges are conditional
// on the per-event candidate set and are checked again at resolution time.
func (r *Registry) hasCycle() bool {
	// Color states: 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(r.decls))

	var visit func(key string) bool
	visit = func(key string) bool {
		colors[key] = 1
		for _, dep := range r.decls[key].Dependencies {
			if dep.IsWildcard() {
				continue
			}
			target := dep.Key()
			if _, exists := r.decls[target]; !exists {
				continue
			}
			switch colors[target] {
			case 1:
				return true
			case 0:
				if visit(target) {
					return true
				}
			}
		}
		colors[key] = 2
		return false
	}

	for key := range r.decls {
		if colors[key] == 0 && visit(key) {
			return true
		}
	}
	return false
}

// Get returns the declaration for a key, or nil if not registered.
func (r *Registry) Get(key string) *hooks.Declaration {
	return r.decls[key]
}

// All returns all declarations in deterministic key order.
func (r *Registry) All() []*hooks.Declaration {
	out := make([]*hooks.Declaration, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.decls[key])
	}
	return out
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	return len(r.decls)
}
