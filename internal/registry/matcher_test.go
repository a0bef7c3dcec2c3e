package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// setupRegistry builds a registry from declarations, failing the test on error.
func setupRegistry(t *testing.T, decls ...*hooks.Declaration) *Registry {
	t.Helper()
	reg, err := New(decls)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return reg
}

func matchKeys(reg *Registry, ev *hooks.Event) []string {
	var keys []string
	for _, d := range reg.Match(ev) {
		keys = append(keys, d.Key())
	}
	return keys
}

func TestMatch_ToolAndPhase(t *testing.T) {
	edit := decl("fmt", "format")
	edit.Triggers = []hooks.Trigger{{ToolPattern: "Edit|Write", Phase: hooks.PhasePost}}
	any := decl("log", "audit")
	any.Triggers = []hooks.Trigger{{ToolPattern: hooks.Wildcard, Phase: hooks.PhasePost}}
	pre := decl("guard", "precheck")
	pre.Triggers = []hooks.Trigger{{ToolPattern: hooks.Wildcard, Phase: hooks.PhasePre}}

	reg := setupRegistry(t, edit, any, pre)

	got := matchKeys(reg, &hooks.Event{ToolName: "Edit", Phase: hooks.PhasePost})
	want := []string{"fmt:format", "log:audit"}
	if len(got) != len(want) {
		t.Fatalf("Match returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Match[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	got = matchKeys(reg, &hooks.Event{ToolName: "Bash", Phase: hooks.PhasePost})
	if len(got) != 1 || got[0] != "log:audit" {
		t.Errorf("Match(Bash/post) = %v, want [log:audit]", got)
	}

	got = matchKeys(reg, &hooks.Event{ToolName: "Edit", Phase: hooks.PhasePre})
	if len(got) != 1 || got[0] != "guard:precheck" {
		t.Errorf("Match(Edit/pre) = %v, want [guard:precheck]", got)
	}
}

func TestMatch_FileFilters(t *testing.T) {
	goHook := decl("go", "vet")
	goHook.FileFilters = []string{"*.go"}
	anyHook := decl("log", "audit")

	reg := setupRegistry(t, goHook, anyHook)

	got := matchKeys(reg, &hooks.Event{
		ToolName:     "Edit",
		Phase:        hooks.PhasePost,
		ChangedFiles: []string{"docs/readme.md"},
	})
	if len(got) != 1 || got[0] != "log:audit" {
		t.Errorf("Match with no matching files = %v, want [log:audit]", got)
	}

	got = matchKeys(reg, &hooks.Event{
		ToolName:     "Edit",
		Phase:        hooks.PhasePost,
		ChangedFiles: []string{"docs/readme.md", "main.go"},
	})
	if len(got) != 2 {
		t.Errorf("Match with one matching file = %v, want both hooks", got)
	}
}

func TestMatch_EmptyChangedFilesSelectsFilterless(t *testing.T) {
	filtered := decl("go", "vet")
	filtered.FileFilters = []string{"*.go"}
	filtered.Triggers = []hooks.Trigger{{ToolPattern: hooks.Wildcard, Phase: hooks.PhaseSessionEnd}}
	full := decl("test", "suite")
	full.Triggers = []hooks.Trigger{{ToolPattern: hooks.Wildcard, Phase: hooks.PhaseSessionEnd}}

	reg := setupRegistry(t, filtered, full)

	got := matchKeys(reg, &hooks.Event{ToolName: "Stop", Phase: hooks.PhaseSessionEnd})
	if len(got) != 1 || got[0] != "test:suite" {
		t.Errorf("session-end Match = %v, want [test:suite]", got)
	}
}

func TestMatch_DirectoryRequirements(t *testing.T) {
	dir := t.TempDir()

	needsConfig := decl("lint", "check")
	needsConfig.DirectoryRequirements = []string{".lintrc"}

	reg := setupRegistry(t, needsConfig)

	ev := &hooks.Event{ToolName: "Edit", Phase: hooks.PhasePost, WorkingDir: dir}
	if got := matchKeys(reg, ev); len(got) != 0 {
		t.Errorf("Match without marker = %v, want none", got)
	}

	if err := os.WriteFile(filepath.Join(dir, ".lintrc"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := matchKeys(reg, ev); len(got) != 1 {
		t.Errorf("Match with marker = %v, want [lint:check]", got)
	}
}

func TestFilterFiles(t *testing.T) {
	d := decl("go", "vet")
	d.FileFilters = []string{"*.go", "go.mod"}

	got := FilterFiles(d, []string{"main.go", "readme.md", "go.mod"})
	want := []string{"main.go", "go.mod"}
	if len(got) != len(want) {
		t.Fatalf("FilterFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("FilterFiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	noFilters := decl("log", "audit")
	all := []string{"a.md", "b.go"}
	if got := FilterFiles(noFilters, all); len(got) != 2 {
		t.Errorf("FilterFiles without filters = %v, want all paths", got)
	}
}
