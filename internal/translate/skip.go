package translate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Skip patterns. Text matching any of them is never sent to the remote
// service and keeps its original form.
var (
	urlPattern      = regexp.MustCompile(`(?i)^(https?://|www\.)\S+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	punctDigitsOnly = regexp.MustCompile(`^[\d\s\p{P}\p{S}]+$`)
)

// ShouldSkip reports whether the text is not worth translating.
func ShouldSkip(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return true
	}
	if utf8.RuneCountInString(trimmed) < 2 {
		return true
	}
	if punctDigitsOnly.MatchString(trimmed) {
		return true
	}
	if urlPattern.MatchString(trimmed) {
		return true
	}
	if emailPattern.MatchString(trimmed) {
		return true
	}
	return false
}
