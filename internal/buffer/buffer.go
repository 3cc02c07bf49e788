package buffer

// TextBuffer accumulates the document text as runes and tracks the current
// offset used for span boundaries.
type TextBuffer struct {
	runes []rune
}

// New creates a new TextBuffer.
func New() *TextBuffer {
	return &TextBuffer{
		runes: make([]rune, 0, 64),
	}
}

// Write appends text to the buffer.
func (tb *TextBuffer) Write(text string) {
	for _, r := range text {
		tb.runes = append(tb.runes, r)
	}
}

// WriteRune appends a single rune.
func (tb *TextBuffer) WriteRune(r rune) {
	tb.runes = append(tb.runes, r)
}

// Len returns the current offset in runes.
func (tb *TextBuffer) Len() int {
	return len(tb.runes)
}

// Last returns the last rune, or ok=false when the buffer is empty.
func (tb *TextBuffer) Last() (r rune, ok bool) {
	if len(tb.runes) == 0 {
		return 0, false
	}
	return tb.runes[len(tb.runes)-1], true
}

// At returns the rune at offset i.
func (tb *TextBuffer) At(i int) rune {
	return tb.runes[i]
}

// TrailingNewlineCount counts trailing newline characters in the buffer.
func (tb *TextBuffer) TrailingNewlineCount() int {
	count := 0
	for i := len(tb.runes) - 1; i >= 0 && tb.runes[i] == '\n'; i-- {
		count++
	}
	return count
}

// EnsureTrailingNewlines appends newlines until the buffer ends with at least
// n of them. An empty buffer is left alone.
func (tb *TextBuffer) EnsureTrailingNewlines(n int) {
	if len(tb.runes) == 0 {
		return
	}
	for i := tb.TrailingNewlineCount(); i < n; i++ {
		tb.runes = append(tb.runes, '\n')
	}
}

// Runes returns a copy of the accumulated text.
func (tb *TextBuffer) Runes() []rune {
	return append([]rune(nil), tb.runes...)
}

// String returns the accumulated text.
func (tb *TextBuffer) String() string {
	return string(tb.runes)
}

// Reset clears the buffer.
func (tb *TextBuffer) Reset() {
	tb.runes = tb.runes[:0]
}
