package validate

import (
	"strings"
	"unicode"
)

// SanitizeName trims a record name and removes control characters.
func SanitizeName(name string) string {
	name = strings.TrimSpace(name)

	var sb strings.Builder
	for _, r := range name {
		if !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// SanitizeNote cleans a note/description for safe storage.
func SanitizeNote(note string) string {
	note = strings.TrimSpace(note)

	// Remove null bytes
	note = strings.ReplaceAll(note, "\x00", "")

	// Normalize line endings
	note = strings.ReplaceAll(note, "\r\n", "\n")
	note = strings.ReplaceAll(note, "\r", "\n")

	return StripControlChars(note)
}

// StripControlChars removes all control characters except newlines and tabs.
func StripControlChars(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// TruncateString truncates a string to maxLen runes, adding "..." if truncated.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
