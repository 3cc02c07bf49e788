package serializer

import (
	"github.com/riverfjs/enriched-go/internal/types"
	"github.com/riverfjs/enriched-go/internal/util"
)

// listTag is the enclosing element of a run of list items.
type listTag int

const (
	noList listTag = iota
	ulList
	olList
	checkboxList
)

func (l listTag) open() string {
	switch l {
	case ulList:
		return "<ul>\n"
	case olList:
		return "<ol>\n"
	case checkboxList:
		return "<ul data-type=\"checkbox\">\n"
	}
	return ""
}

func (l listTag) close() string {
	switch l {
	case ulList, checkboxList:
		return "</ul>\n"
	case olList:
		return "</ol>\n"
	}
	return ""
}

// paragraphPriority is the order in which paragraph kinds claim a line.
var paragraphPriority = []types.Kind{
	types.KindUnorderedList,
	types.KindOrderedList,
	types.KindCheckboxList,
	types.KindH1,
	types.KindH2,
	types.KindH3,
	types.KindH4,
	types.KindH5,
	types.KindH6,
}

// lineKind picks the paragraph span that decides the tag of [start, end).
// ok is false for a plain paragraph.
func (w *writer) lineKind(start, end int) (types.Span, bool) {
	spans := w.doc.SpansIn(types.CategoryParagraph, start, end)
	for _, k := range paragraphPriority {
		for _, s := range spans {
			if s.Kind == k {
				return s, true
			}
		}
	}
	return types.Span{}, false
}

// alignAttr returns the style attribute for the alignment of [start, end).
// The alignment starting last wins; on a tie the one closed first, which is
// the inner element.
func (w *writer) alignAttr(start, end int) string {
	var best *types.Span
	for _, s := range w.doc.SpansIn(types.CategoryAlignment, start, end) {
		s := s // per-iteration copy (pre-Go 1.22 loop semantics)
		if s.Payload.Align == "" {
			continue
		}
		if best == nil || s.Start > best.Start {
			best = &s
		}
	}
	if best == nil {
		return ""
	}
	return ` style="text-align:` + util.EscapeAttr(string(best.Payload.Align)) + `"`
}

func listOf(k types.Kind) listTag {
	switch k {
	case types.KindUnorderedList:
		return ulList
	case types.KindOrderedList:
		return olList
	case types.KindCheckboxList:
		return checkboxList
	}
	return noList
}

// withinBlock writes the lines of [start, end) as paragraphs, headings and
// list items. The loop runs through end inclusive so a segment ending in a
// newline produces a trailing line break.
func (w *writer) withinBlock(start, end int) {
	if w.mode == types.ParagraphConsecutive {
		w.withinBlockConsecutive(start, end)
		return
	}

	list := noList
	for i := start; i <= end; i++ {
		next := w.doc.IndexRune('\n', i, end)
		if next < 0 {
			next = end
		}

		if next == i {
			w.out.WriteString(list.close())
			list = noList
			w.out.WriteString("<br>\n")
			i = next
			continue
		}

		span, ok := w.lineKind(i, next)
		itemList := noList
		if ok {
			itemList = listOf(span.Kind)
		}
		if list != itemList {
			w.out.WriteString(list.close())
			w.out.WriteString(itemList.open())
			list = itemList
		}

		tag := "p"
		if ok {
			tag = span.Kind.Tag()
		}
		w.out.WriteString("<" + tag)
		if ok && span.Kind == types.KindCheckboxList && span.Payload.Checked {
			w.out.WriteString(" checked")
		}
		w.out.WriteString(w.alignAttr(i, next))
		w.out.WriteString(">")
		w.withinParagraph(i, next)
		w.out.WriteString("</" + tag + ">\n")

		if next == end {
			w.out.WriteString(list.close())
			list = noList
		}
		i = next
	}
}

// withinBlockConsecutive groups adjacent plain lines into one paragraph
// separated by line breaks. A blank line ends the group.
func (w *writer) withinBlockConsecutive(start, end int) {
	list := noList
	inParagraph := false
	paragraphAlign := ""
	closeParagraph := func() {
		if inParagraph {
			w.out.WriteString("</p>\n")
			inParagraph = false
		}
	}

	for i := start; i < end; {
		next := w.doc.IndexRune('\n', i, end)
		if next < 0 {
			next = end
		}

		if next == i {
			closeParagraph()
			w.out.WriteString(list.close())
			list = noList
			i = next + 1
			continue
		}

		span, ok := w.lineKind(i, next)
		itemList := noList
		if ok {
			itemList = listOf(span.Kind)
		}

		if !ok {
			w.out.WriteString(list.close())
			list = noList
			align := w.alignAttr(i, next)
			if inParagraph && align != paragraphAlign {
				closeParagraph()
			}
			if inParagraph {
				w.out.WriteString("<br>\n")
			} else {
				w.out.WriteString("<p" + align + ">")
				inParagraph = true
				paragraphAlign = align
			}
			w.withinParagraph(i, next)
			i = next + 1
			continue
		}

		closeParagraph()
		if list != itemList {
			w.out.WriteString(list.close())
			w.out.WriteString(itemList.open())
			list = itemList
		}
		tag := span.Kind.Tag()
		w.out.WriteString("<" + tag)
		if span.Kind == types.KindCheckboxList && span.Payload.Checked {
			w.out.WriteString(" checked")
		}
		w.out.WriteString(w.alignAttr(i, next))
		w.out.WriteString(">")
		w.withinParagraph(i, next)
		w.out.WriteString("</" + tag + ">\n")
		i = next + 1
	}
	closeParagraph()
	w.out.WriteString(list.close())
}
