// Package htmlsanitize strips markup from user-supplied text.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag. Script and style contents are dropped as well.
var strict = bluemonday.StrictPolicy()

// maxPasses bounds how many layers of entity encoding are peeled off.
const maxPasses = 8

// PlainText returns s with all markup removed and surrounding whitespace
// trimmed. Entities are decoded so "AT&T" round-trips; the result is plain
// text and must still be escaped on output.
//
// Decoding can expose markup that was entity-encoded, so sanitize and decode
// repeat until the text stops changing. Input that is still changing after
// maxPasses yields "". The result is a fixed point: PlainText(PlainText(s))
// equals PlainText(s).
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	for i := 0; i < maxPasses; i++ {
		if s == "" {
			return ""
		}
		next := strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
		if next == s {
			return s
		}
		s = next
	}
	return ""
}
