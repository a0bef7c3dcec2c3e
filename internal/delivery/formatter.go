// Package delivery turns raw hook results into structured outcomes and
// routes them to the inline or async channel.
package delivery

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/hookline/pkg/hooks"
)

// excerptLimit bounds the diagnostic text included per failed hook.
// Enough for a tool's file:line diagnostics without flooding the agent.
const excerptLimit = 2000

// statusLabels map engine statuses to the labels agents parse. Cache-skip
// and dependency-skip stay distinguishable from genuine success so an
// agent never conflates "validated and passed" with "not run".
var statusLabels = map[hooks.Status]string{
	hooks.StatusSuccess:           "passed",
	hooks.StatusFailure:           "failed",
	hooks.StatusSkippedCache:      "skipped-cache",
	hooks.StatusSkippedDependency: "skipped-dependency",
}

// FormatInline renders results into the tagged block appended to the tool
// return value. The structure is stable so the initiating agent can parse
// pass/fail per hook:
//
//	<validation-results>
//	  <hook plugin="X" hook="Y" status="failed">…diagnostics…</hook>
//	</validation-results>
func FormatInline(results []*hooks.Result) string {
	if len(results) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("<validation-results>\n")
	for _, res := range results {
		sb.WriteString(fmt.Sprintf("  <hook plugin=%q hook=%q status=%q>",
			res.Plugin, res.Hook, statusLabels[res.Status]))
		if text := diagnostic(res); text != "" {
			sb.WriteString(escape(text))
		}
		sb.WriteString("</hook>\n")
	}
	sb.WriteString("</validation-results>")
	return sb.String()
}

// diagnostic selects the text an agent needs to act on a result without
// further queries: stderr first (tools put file:line there), stdout as
// fallback, nothing for passing or skipped hooks.
func diagnostic(res *hooks.Result) string {
	if res.Status != hooks.StatusFailure {
		return ""
	}
	text := strings.TrimSpace(res.Stderr)
	if text == "" {
		text = strings.TrimSpace(res.Stdout)
	}
	if len(text) > excerptLimit {
		text = text[:excerptLimit] + "…"
	}
	return text
}

// escaper protects the tagged structure from diagnostic text.
var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return escaper.Replace(s)
}

// Summarize builds the one-line summary used in async payloads.
func Summarize(results []*hooks.Result) string {
	var passed, failed, skipped int
	for _, res := range results {
		switch {
		case res.Status == hooks.StatusSuccess:
			passed++
		case res.Status == hooks.StatusFailure:
			failed++
		default:
			skipped++
		}
	}
	return fmt.Sprintf("%d passed, %d failed, %d skipped", passed, failed, skipped)
}
