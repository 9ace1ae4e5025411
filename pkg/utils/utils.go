package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CapitalizeWords capitalizes the first letter of each word in a string.
func CapitalizeWords(s string) string {
	// strings.Title is deprecated; x/text/cases handles this robustly.
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// TruncateForDisplay shortens long output for terminal display. The full
// text is always persisted elsewhere; this only affects what is shown.
func TruncateForDisplay(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	// Back up to a rune boundary so a multi-byte character is never split.
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	cut := s[:max]
	// Prefer breaking at a line boundary when one is close.
	if idx := strings.LastIndex(cut, "\n"); idx > max/2 {
		cut = cut[:idx]
	}
	return cut + "\n... (truncated)"
}
