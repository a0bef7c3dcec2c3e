package registry

import (
	"path/filepath"
	"strings"
)

// matchGlob matches a slash-normalized path against a glob pattern.
// Supports "*" within a segment and "**" spanning any number of segments.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	// A pattern without a separator matches against the base name, so
	// "*.go" applies anywhere in the tree.
	if !strings.Contains(pattern, "/") {
		return matchSegments([]string{filepath.Base(path)}, []string{pattern})
	}

	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

// matchSegments recursively matches path segments against pattern segments.
func matchSegments(path, pattern []string) bool {
	if len(pattern) == 0 {
		return len(path) == 0
	}

	head := pattern[0]
	rest := pattern[1:]

	if head == "**" {
		if len(rest) == 0 {
			return true
		}
		for i := 0; i <= len(path); i++ {
			if matchSegments(path[i:], rest) {
				return true
			}
		}
		return false
	}

	if len(path) == 0 {
		return false
	}
	if !matchSegment(path[0], head) {
		return false
	}
	return matchSegments(path[1:], rest)
}

// matchSegment matches a single path segment against a pattern segment.
func matchSegment(segment, pattern string) bool {
	if pattern == "*" || pattern == segment {
		return true
	}
	if strings.Contains(pattern, "*") {
		return matchWildcard(segment, pattern)
	}
	return false
}

// matchWildcard matches a segment against a pattern containing * wildcards.
func matchWildcard(s, pattern string) bool {
	parts := strings.Split(pattern, "*")
	pos := 0

	for i, part := range parts {
		if part == "" {
			continue
		}

		if i == 0 {
			if !strings.HasPrefix(s, part) {
				return false
			}
			pos = len(part)
			continue
		}

		if i == len(parts)-1 && !strings.HasSuffix(pattern, "*") {
			// The trailing literal must not reuse bytes already consumed
			// by the prefix or an earlier middle part.
			if len(s)-len(part) < pos || !strings.HasSuffix(s, part) {
				return false
			}
			continue
		}

		idx := strings.Index(s[pos:], part)
		if idx == -1 {
			return false
		}
		pos += idx + len(part)
	}

	return true
}
