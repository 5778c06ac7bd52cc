// Package textutil provides Unicode-codepoint-safe string helpers shared by
// the action executor: truncating message/thread content to the platform's
// limits and deriving a thread name from a source message.
package textutil

import "strings"

// ellipsis is the sentinel appended when truncate cuts content short.
const ellipsis = "…"

// Truncate shortens s to at most max Unicode codepoints (not bytes). If s
// already fits, it is returned unchanged. Otherwise the result ends in the
// "…" sentinel and counts exactly max codepoints.
//
// max must be >= 1; callers never pass less (content caps at 2000, names at
// 100, both well above the floor where an ellipsis-only result would be
// degenerate).
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + ellipsis
}

// TruncateName shortens s to at most max codepoints like Truncate, but
// without appending a sentinel — used for thread names, where the spec
// requires preserving user input verbatim up to the cut rather than
// signaling truncation.
func TruncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// CodepointCount returns the number of Unicode codepoints in s.
func CodepointCount(s string) int {
	return len([]rune(s))
}

// defaultThreadName is used when a message has no non-empty line to derive a
// thread name from.
const defaultThreadName = "Thread"

// DeriveThreadName returns a thread name derived from the first non-empty
// line of content, trimmed of surrounding whitespace and truncated to 100
// codepoints. Falls back to "Thread" when content has no non-empty line.
func DeriveThreadName(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return TruncateName(trimmed, 100)
		}
	}
	return defaultThreadName
}
