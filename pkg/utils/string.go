package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultTitle is shown for conversations without a title.
	DefaultTitle = "New conversation"

	ListTitleLen  = 16
	TopicTitleLen = 24
)

// Truncate cuts s to maxLen runes and appends "..." when it was longer.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	r := []rune(s)
	return string(r[:maxLen]) + "..."
}

// FormatTitle collapses runs of whitespace in a conversation title and
// truncates it to maxLen runes. Blank titles become DefaultTitle.
func FormatTitle(title string, maxLen int) string {
	t := strings.Join(strings.Fields(title), " ")
	if t == "" {
		return DefaultTitle
	}
	return Truncate(t, maxLen)
}
