package chat

import (
	"strings"
	"unicode/utf8"
)

// DeriveTitle builds a session title from the first user message: the first
// four whitespace-separated words joined by single spaces, with "..." appended
// when the original text runs past 20 characters. Returns "" when the message
// contains no words.
func DeriveTitle(content string) string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return ""
	}
	if len(words) > 4 {
		words = words[:4]
	}

	title := strings.Join(words, " ")
	if utf8.RuneCountInString(content) > 20 {
		title += "..."
	}
	return title
}
