package serializer

import (
	"sort"
	"strconv"

	"github.com/riverfjs/enriched-go/internal/types"
	"github.com/riverfjs/enriched-go/internal/util"
)

// withinParagraph writes [start, end) with nested inline tags.
//
// Open tags live on a stack. At every inline transition the stack is popped
// down to the first span that is no longer active, then every active span
// not on the stack is opened, spans ending later first. Tags are therefore
// always closed in the reverse of their opening order, and a span that
// outlives its neighbours is only split when it has to be.
func (w *writer) withinParagraph(start, end int) {
	var stack []int
	for i := start; i < end; {
		next := w.doc.NextTransition(i, end, types.CategoryInline)

		active := make(map[int]bool)
		for idx, s := range w.doc.Spans {
			if s.Kind.Category() == types.CategoryInline && s.Overlaps(i, next) {
				active[idx] = true
			}
		}

		cut := len(stack)
		for j, idx := range stack {
			if !active[idx] {
				cut = j
				break
			}
		}
		for j := len(stack) - 1; j >= cut; j-- {
			w.closeTag(w.doc.Spans[stack[j]])
		}
		stack = stack[:cut]

		onStack := make(map[int]bool, len(stack))
		for _, idx := range stack {
			onStack[idx] = true
		}
		var opening []int
		for idx := range active {
			if !onStack[idx] {
				opening = append(opening, idx)
			}
		}
		w.sortOpening(opening)

		image := false
		for _, idx := range opening {
			s := w.doc.Spans[idx]
			if s.Kind == types.KindImage {
				w.writeImage(s)
				image = true
				continue
			}
			w.openTag(s)
			stack = append(stack, idx)
		}

		// The image placeholder is never written as text.
		if !image {
			util.EscapeText(&w.out, w.doc.Text, i, next)
		}
		i = next
	}
	for j := len(stack) - 1; j >= 0; j-- {
		w.closeTag(w.doc.Spans[stack[j]])
	}
}

// sortOpening orders spans opening at the same offset: the one ending later
// goes outside, ties fall back to kind order and then to insertion order.
func (w *writer) sortOpening(idxs []int) {
	sort.Slice(idxs, func(a, b int) bool {
		sa, sb := w.doc.Spans[idxs[a]], w.doc.Spans[idxs[b]]
		if sa.End != sb.End {
			return sa.End > sb.End
		}
		if sa.Kind != sb.Kind {
			return sa.Kind < sb.Kind
		}
		return idxs[a] < idxs[b]
	})
}

func (w *writer) openTag(s types.Span) {
	switch s.Kind {
	case types.KindLink:
		w.out.WriteString(`<a href="` + util.EscapeAttr(s.Payload.URL) + `">`)
	case types.KindMention:
		w.out.WriteString(`<mention text="` + util.EscapeAttr(s.Payload.Text) + `"`)
		w.out.WriteString(` indicator="` + util.EscapeAttr(s.Payload.Indicator) + `"`)
		for _, attr := range s.Payload.Attributes {
			w.out.WriteString(" " + attr.Key + `="` + util.EscapeAttr(attr.Val) + `"`)
		}
		w.out.WriteString(">")
	case types.KindForegroundColor:
		w.out.WriteString(`<span style="color:` + util.EscapeAttr(s.Payload.Color) + `">`)
	case types.KindBackgroundColor:
		w.out.WriteString(`<span style="background-color:` + util.EscapeAttr(s.Payload.Color) + `">`)
	default:
		w.out.WriteString("<" + s.Kind.Tag() + ">")
	}
}

func (w *writer) closeTag(s types.Span) {
	w.out.WriteString("</" + s.Kind.Tag() + ">")
}

func (w *writer) writeImage(s types.Span) {
	w.out.WriteString(`<img src="` + util.EscapeAttr(s.Payload.Source) + `"`)
	w.out.WriteString(` width="` + strconv.Itoa(s.Payload.Width) + `"`)
	w.out.WriteString(` height="` + strconv.Itoa(s.Payload.Height) + `"/>`)
}
