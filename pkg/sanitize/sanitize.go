// Package sanitize turns user-entered text into plain text before it is
// written to documents or indexed.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.StrictPolicy()

// Text strips markup, unescapes entities and trims surrounding space.
// Line breaks inside the text are kept.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(policy.Sanitize(s)))
}

// Flatten is Text with all whitespace runs collapsed to single spaces,
// which is what the search index stores.
func Flatten(s string) string {
	s = strings.ReplaceAll(s, "</p>", " ")
	s = strings.ReplaceAll(s, "<br>", " ")
	s = strings.ReplaceAll(s, "</div>", " ")
	return strings.Join(strings.Fields(Text(s)), " ")
}
