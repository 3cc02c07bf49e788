package util

import "strings"

// CollapseWhitespace normalizes character data for the text buffer.
//
// Spaces and newlines collapse to a single space, and that space is dropped
// when the preceding character is already a space or newline. prev is the
// last rune in the buffer; pass '\n' at the start of the document.
func CollapseWhitespace(text string, prev rune) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, c := range text {
		if c == ' ' || c == '\n' {
			if prev != ' ' && prev != '\n' {
				sb.WriteByte(' ')
				prev = ' '
			}
			continue
		}
		sb.WriteRune(c)
		prev = c
	}
	return sb.String()
}
