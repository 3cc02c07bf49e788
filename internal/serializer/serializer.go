// Package serializer turns a span document back into markup.
//
// The document is walked in three levels: block spans (blockquote, code
// block) split the buffer into segments, each segment is split into lines
// that become paragraphs, headings or list items, and each line is split at
// inline span transitions into nested inline tags.
package serializer

import (
	"strings"

	"github.com/riverfjs/enriched-go/internal/types"
)

// EmptyDocument is the markup for a document with no text.
const EmptyDocument = "<html>\n<p></p>\n</html>"

var blockBreakFixes = strings.NewReplacer(
	"</codeblock>\n<br>", "</codeblock>",
	"</blockquote>\n<br>", "</blockquote>",
)

type writer struct {
	out  strings.Builder
	doc  *types.Document
	mode types.ParagraphMode
}

// Serialize 将 span 文档序列化为标记文本
func Serialize(doc *types.Document, cfg *types.Config) (string, error) {
	if cfg == nil {
		cfg = types.DefaultConfig()
	}
	if doc == nil {
		return EmptyDocument, nil
	}
	if err := doc.Validate(); err != nil {
		return "", err
	}
	if doc.Len() == 0 {
		return EmptyDocument, nil
	}

	w := &writer{doc: doc, mode: cfg.ParagraphMode}
	w.withinDiv(0, doc.Len())
	// Blocks end with a newline of their own; drop the line break that
	// would otherwise follow them.
	body := blockBreakFixes.Replace(w.out.String())
	return "<html>\n" + body + "</html>", nil
}

// withinDiv splits [start, end) at block span transitions.
func (w *writer) withinDiv(start, end int) {
	for i := start; i < end; {
		next := w.doc.NextTransition(i, end, types.CategoryBlock)
		blocks := w.doc.SpansIn(types.CategoryBlock, i, next)

		// Each block appends a newline by default; a new segment starts
		// after it, so the line break it produced is dropped.
		w.trimSuffix("<br>\n")

		for _, b := range blocks {
			w.out.WriteString("<" + b.Kind.Tag() + ">\n")
		}
		w.withinBlock(i, next)
		for j := len(blocks) - 1; j >= 0; j-- {
			w.out.WriteString("</" + blocks[j].Kind.Tag() + ">\n")
		}
		i = next
	}
}

func (w *writer) trimSuffix(suffix string) {
	s := w.out.String()
	if strings.HasSuffix(s, suffix) {
		trimmed := s[:len(s)-len(suffix)]
		w.out.Reset()
		w.out.WriteString(trimmed)
	}
}
