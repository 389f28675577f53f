package throttle

import (
	"regexp"
	"strings"
)

var (
	sentenceEnd = regexp.MustCompile(`[。！？.!?]`)
	heading     = regexp.MustCompile(`^#{1,6}\s`)
	listItem    = regexp.MustCompile(`^(\s*[-*+]\s|\s*\d+\.\s)`)
)

// IsBoundary reports whether a content delta ends a semantic unit of
// markdown: a line, a code fence, a sentence, or the start of a heading or
// list item.
func IsBoundary(delta string) bool {
	return strings.Contains(delta, "\n") ||
		strings.Contains(delta, "```") ||
		sentenceEnd.MatchString(delta) ||
		heading.MatchString(delta) ||
		listItem.MatchString(delta)
}

// ModeFor returns the render mode for a content delta.
func ModeFor(delta string) Mode {
	if IsBoundary(delta) {
		return Boundary
	}
	return Normal
}
