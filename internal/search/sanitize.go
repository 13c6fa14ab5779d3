package search

import (
	"regexp"
	"strings"
)

var ftsStrip = regexp.MustCompile(`[?()":^~{}!+\-\\]`)
var standaloneStar = regexp.MustCompile(`(^|\s)\*+`)
var multiSpace = regexp.MustCompile(`\s+`)

// SanitizeFTSQuery strips FTS5 special-operator characters per §4.9,
// preserving a trailing "*" on a word (prefix search) and underscores.
// Sanitize is idempotent: Sanitize(Sanitize(q)) == Sanitize(q).
func SanitizeFTSQuery(q string) string {
	s := ftsStrip.ReplaceAllString(q, " ")
	s = standaloneStar.ReplaceAllString(s, "$1")
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
