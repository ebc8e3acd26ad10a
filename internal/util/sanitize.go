package util

import "strings"

// SanitizeText normalizes untrusted free text: leading/trailing whitespace is
// trimmed, angle brackets are stripped, and the result is capped at max runes.
// Applying it twice yields the same text.
func SanitizeText(s string, max int) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "<", "")
	s = strings.ReplaceAll(s, ">", "")
	if max > 0 {
		runes := []rune(s)
		if len(runes) > max {
			s = string(runes[:max])
		}
	}
	// Truncation can expose trailing whitespace that was mid-string before
	return strings.TrimSpace(s)
}
