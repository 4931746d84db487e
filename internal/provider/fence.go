package provider

import (
	"strings"
	"unicode"
)

const fence = "```"

// stripCodeFence removes a leading ``` (with an optional language tag) and
// a trailing ``` around model output. Unfenced text is only trimmed.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)

	if rest, ok := strings.CutPrefix(s, fence); ok {
		tagEnd := strings.IndexFunc(rest, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-' && r != '_' && r != '+'
		})
		if tagEnd < 0 {
			tagEnd = len(rest)
		}
		s = rest[tagEnd:]
	}
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutSuffix(s, fence); ok {
		s = rest
	}
	return strings.TrimSpace(s)
}
