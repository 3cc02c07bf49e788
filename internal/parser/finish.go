package parser

import (
	"github.com/riverfjs/enriched-go/internal/types"
)

// finish runs the end-of-document passes and returns the document.
func (p *state) finish() *types.Document {
	text := p.buf.Runes()

	// If the last line of a paragraph or block range is blank, back off by one.
	kept := p.spans[:0]
	for _, s := range p.spans {
		if s.Kind.Category() != types.CategoryInline {
			if s.End-2 >= 0 && text[s.End-1] == '\n' && text[s.End-2] == '\n' {
				s.End--
			}
			if s.End == s.Start {
				continue
			}
		}
		kept = append(kept, s)
	}

	doc := &types.Document{Text: text, Spans: make([]types.Span, len(kept))}
	var needsPlaceholder []int
	for i, s := range kept {
		doc.Spans[i] = s.Span
		if s.placeholder {
			needsPlaceholder = append(needsPlaceholder, i)
		}
	}

	// Every placeholder span starts with the zero-width placeholder.
	for _, i := range needsPlaceholder {
		start, end := doc.Spans[i].Start, doc.Spans[i].End
		if start < len(doc.Text) && doc.Text[start] == types.ZWS {
			continue
		}
		doc.InsertRune(start, types.ZWS)
		doc.Spans[i].Start = start
		doc.Spans[i].End = end + 1
	}

	// Newlines after the last element only separate it from a sibling that
	// never came.
	n := len(doc.Text)
	for n > 0 && doc.Text[n-1] == '\n' {
		n--
	}
	doc.Truncate(n)
	return doc
}
