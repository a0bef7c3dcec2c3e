package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// hookFileNames are the locations checked for a plugin's hook file,
// relative to the plugin directory, in priority order.
var hookFileNames = []string{
	"hooks.yaml",
	filepath.Join(".hookline", "hooks.yaml"),
}

// hookFile is the on-disk shape of a plugin's hook declarations.
type hookFile struct {
	Hooks map[string]hookSpec `yaml:"hooks"`
}

// hookSpec is one hook entry in a plugin's hooks.yaml.
type hookSpec struct {
	Command       string              `yaml:"command"`
	Triggers      []hooks.Trigger     `yaml:"triggers"`
	FileFilters   []string            `yaml:"file_filters"`
	Requires      []string            `yaml:"requires"`
	DependsOn     []hooks.Dependency  `yaml:"depends_on"`
	FailurePolicy hooks.FailurePolicy `yaml:"failure_policy"`
	Delivery      hooks.DeliveryMode  `yaml:"delivery"`
	Timeout       string              `yaml:"timeout"`
}

// Loader reads hook declarations from one or more plugin root directories.
// Each immediate subdirectory of a root is a plugin; the directory name is
// the plugin id.
type Loader struct {
	// roots are the plugin root directories, scanned in order.
	roots []string
	// lenient downgrades malformed plugin files from errors to warnings.
	lenient bool
	// warnings collects non-fatal problems from the last Load call.
	warnings []string
}

// NewLoader creates a Loader over the given plugin roots.
func NewLoader(roots []string, lenient bool) *Loader {
	return &Loader{roots: roots, lenient: lenient}
}

// Warnings returns non-fatal problems encountered by the last Load call.
func (l *Loader) Warnings() []string {
	return l.warnings
}

// Load scans every plugin root and returns all declarations found.
// A missing root is not an error; a malformed hook file is fatal unless
// the loader is lenient, in which case the plugin is skipped with a warning.
func (l *Loader) Load() ([]*hooks.Declaration, error) {
	l.warnings = nil
	var decls []*hooks.Declaration

	for _, root := range l.roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("read plugin root %s: %w", root, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}
			pluginDir := filepath.Join(root, entry.Name())
			loaded, err := l.loadPlugin(entry.Name(), pluginDir)
			if err != nil {
				if l.lenient {
					l.warnings = append(l.warnings, fmt.Sprintf("plugin %s: %v", entry.Name(), err))
					continue
				}
				return nil, fmt.Errorf("plugin %s: %w", entry.Name(), err)
			}
			decls = append(decls, loaded...)
		}
	}

	return decls, nil
}

// loadPlugin parses one plugin directory's hook file, if present.
func (l *Loader) loadPlugin(pluginID, pluginDir string) ([]*hooks.Declaration, error) {
	var path string
	for _, name := range hookFileNames {
		candidate := filepath.Join(pluginDir, name)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		// Plugins without hooks are valid; they contribute nothing here.
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var file hookFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	// Sort hook ids so load order is deterministic across runs.
	ids := make([]string, 0, len(file.Hooks))
	for id := range file.Hooks {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var decls []*hooks.Declaration
	for _, id := range ids {
		decl, err := normalize(pluginID, id, pluginDir, file.Hooks[id])
		if err != nil {
			return nil, err
		}
		decls = append(decls, decl)
	}
	return decls, nil
}

// normalize converts a parsed hook spec into a validated Declaration,
// applying defaults for omitted fields.
func normalize(pluginID, hookID, pluginDir string, spec hookSpec) (*hooks.Declaration, error) {
	if spec.Command == "" {
		return nil, fmt.Errorf("hook %s has no command", hookID)
	}
	if len(spec.Triggers) == 0 {
		return nil, fmt.Errorf("hook %s has no triggers", hookID)
	}
	for _, t := range spec.Triggers {
		if !t.Phase.Valid() {
			return nil, fmt.Errorf("hook %s: unknown phase %q", hookID, t.Phase)
		}
	}

	policy := spec.FailurePolicy
	if policy == "" {
		policy = hooks.FailFast
	}
	if !policy.Valid() {
		return nil, fmt.Errorf("hook %s: unknown failure policy %q", hookID, spec.FailurePolicy)
	}

	delivery := spec.Delivery
	if delivery == "" {
		delivery = hooks.DeliveryInline
	}
	if !delivery.Valid() {
		return nil, fmt.Errorf("hook %s: unknown delivery mode %q", hookID, spec.Delivery)
	}

	var timeout time.Duration
	if spec.Timeout != "" {
		var err error
		timeout, err = time.ParseDuration(spec.Timeout)
		if err != nil {
			return nil, fmt.Errorf("hook %s: invalid timeout %q: %w", hookID, spec.Timeout, err)
		}
	}

	return &hooks.Declaration{
		Plugin:                pluginID,
		Hook:                  hookID,
		PluginRoot:            pluginDir,
		Command:               spec.Command,
		Triggers:              spec.Triggers,
		FileFilters:           spec.FileFilters,
		DirectoryRequirements: spec.Requires,
		Dependencies:          spec.DependsOn,
		FailurePolicy:         policy,
		DeliveryMode:          delivery,
		Timeout:               timeout,
	}, nil
}
