package executor

import (
	"strings"

	"github.com/kballard/go-shellquote"
)

// filesPlaceholder is replaced in command templates by the quoted set of
// changed file paths relevant to the hook.
const filesPlaceholder = "{files}"

// RenderCommand substitutes the changed-file-set placeholder into a
// command template. Paths are shell-quoted so spaces and metacharacters
// survive the round trip through command parsing.
func RenderCommand(template string, files []string) string {
	if !strings.Contains(template, filesPlaceholder) {
		return template
	}
	return strings.ReplaceAll(template, filesPlaceholder, shellquote.Join(files...))
}
