package utils

import (
	"html/template"
	"strings"
	"unicode/utf8"
)

// Linebreaks escapes text and turns newlines into <br> tags.
func Linebreaks(text string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(text, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// Truncate cuts text to at most n runes, ending in an ellipsis when shortened.
func Truncate(text string, n int) string {
	if n <= 0 || utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:n])) + "…"
}
