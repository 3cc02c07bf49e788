package util

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"golang.org/x/net/html"

	"github.com/riverfjs/enriched-go/internal/types"
)

// EscapeText writes text[start:end] to out as markup text.
//
//   - < > & become entities
//   - a UTF-16 surrogate pair becomes one numeric reference; a lone surrogate is dropped
//   - anything below ' ' or above '~' becomes a numeric reference
//   - the zero-width placeholder is dropped
//   - in a run of spaces all but the last become &nbsp;
func EscapeText(out *strings.Builder, text []rune, start, end int) {
	for i := start; i < end; i++ {
		c := text[i]
		switch {
		case c == types.ZWS:
			continue
		case c == '<':
			out.WriteString("&lt;")
		case c == '>':
			out.WriteString("&gt;")
		case c == '&':
			out.WriteString("&amp;")
		case utf16.IsSurrogate(c):
			if c < 0xDC00 && i+1 < end {
				if d := text[i+1]; d >= 0xDC00 && d <= 0xDFFF {
					i++
					writeCharRef(out, utf16.DecodeRune(c, d))
				}
			}
		case c > 0x7E || c < ' ':
			writeCharRef(out, c)
		case c == ' ':
			for i+1 < end && text[i+1] == ' ' {
				out.WriteString("&nbsp;")
				i++
			}
			out.WriteByte(' ')
		default:
			out.WriteRune(c)
		}
	}
}

// Escape returns the markup-escaped form of text.
func Escape(text string) string {
	runes := []rune(text)
	var out strings.Builder
	EscapeText(&out, runes, 0, len(runes))
	return out.String()
}

// EscapeAttr escapes an attribute value for use inside double quotes.
func EscapeAttr(value string) string {
	return html.EscapeString(value)
}

func writeCharRef(out *strings.Builder, r rune) {
	out.WriteString("&#")
	out.WriteString(strconv.Itoa(int(r)))
	out.WriteByte(';')
}
