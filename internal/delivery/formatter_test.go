package delivery

import (
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

func TestFormatInline(t *testing.T) {
	results := []*hooks.Result{
		{Plugin: "fmt", Hook: "format", Status: hooks.StatusSuccess, Duration: time.Second},
		{Plugin: "lint", Hook: "check", Status: hooks.StatusFailure, Stderr: "main.go:3: unused var"},
		{Plugin: "go", Hook: "vet", Status: hooks.StatusSkippedCache},
		{Plugin: "test", Hook: "unit", Status: hooks.StatusSkippedDependency},
	}

	block := FormatInline(results)

	if !strings.HasPrefix(block, "<validation-results>") {
		t.Errorf("block does not open with wrapper tag:\n%s", block)
	}
	if !strings.HasSuffix(block, "</validation-results>") {
		t.Errorf("block does not close with wrapper tag:\n%s", block)
	}

	wantLines := []string{
		`<hook plugin="fmt" hook="format" status="passed"></hook>`,
		`<hook plugin="lint" hook="check" status="failed">main.go:3: unused var</hook>`,
		`<hook plugin="go" hook="vet" status="skipped-cache"></hook>`,
		`<hook plugin="test" hook="unit" status="skipped-dependency"></hook>`,
	}
	for _, want := range wantLines {
		if !strings.Contains(block, want) {
			t.Errorf("block missing %q:\n%s", want, block)
		}
	}
}

func TestFormatInline_Empty(t *testing.T) {
	if got := FormatInline(nil); got != "" {
		t.Errorf("FormatInline(nil) = %q, want empty", got)
	}
}

func TestFormatInline_EscapesDiagnostics(t *testing.T) {
	results := []*hooks.Result{
		{Plugin: "p", Hook: "h", Status: hooks.StatusFailure, Stderr: "expected <nil> & got >0"},
	}
	block := FormatInline(results)
	if !strings.Contains(block, "expected &lt;nil&gt; &amp; got &gt;0") {
		t.Errorf("diagnostics not escaped:\n%s", block)
	}
}

func TestFormatInline_StdoutFallbackAndTruncation(t *testing.T) {
	long := strings.Repeat("x", excerptLimit+500)
	results := []*hooks.Result{
		{Plugin: "p", Hook: "h", Status: hooks.StatusFailure, Stdout: long},
	}
	block := FormatInline(results)
	if !strings.Contains(block, "x") {
		t.Error("stdout fallback not included")
	}
	if strings.Count(block, "x") != excerptLimit {
		t.Errorf("diagnostic has %d chars, want truncated to %d", strings.Count(block, "x"), excerptLimit)
	}
}

func TestFormatInline_SuccessOutputOmitted(t *testing.T) {
	results := []*hooks.Result{
		{Plugin: "p", Hook: "h", Status: hooks.StatusSuccess, Stdout: "noise"},
	}
	block := FormatInline(results)
	if strings.Contains(block, "noise") {
		t.Errorf("passing hook output leaked into block:\n%s", block)
	}
}

func TestSummarize(t *testing.T) {
	results := []*hooks.Result{
		{Status: hooks.StatusSuccess},
		{Status: hooks.StatusSuccess},
		{Status: hooks.StatusFailure},
		{Status: hooks.StatusSkippedCache},
		{Status: hooks.StatusSkippedDependency},
	}
	got := Summarize(results)
	want := "2 passed, 1 failed, 2 skipped"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}
}
