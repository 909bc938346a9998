package normalize

import (
	"strings"

	"golang.org/x/text/width"
)

// Text collapses all whitespace/newline runs in raw page text into single
// spaces and folds full-width characters (digits, colons, at-signs common on
// Taiwanese pages) to their ASCII forms so the pattern battery matches them.
// Empty or absent content is a valid outcome: empty in, empty out.
func Text(raw string) string {
	if raw == "" {
		return ""
	}
	folded := width.Narrow.String(raw)
	return strings.Join(strings.Fields(folded), " ")
}
