package parser

import (
	"github.com/riverfjs/enriched-go/internal/types"
)

type listKind int

const (
	listNone listKind = iota
	listUnordered
	listOrdered
	listCheckbox
)

// listContext tracks the innermost <ul>/<ol>.
type listContext struct {
	kind  listKind
	index int
}

// marker is an open tag waiting for its end tag.
type marker struct {
	start   int
	list    listKind
	index   int
	checked bool
	payload types.Payload
	// valid is false for tags missing a required attribute (<a> without
	// href, <mention> without text); closing them produces no span.
	valid bool
}

// markerStacks holds one LIFO stack per span kind.
type markerStacks [types.NumKinds][]marker

func (ms *markerStacks) push(k types.Kind, m marker) {
	ms[k] = append(ms[k], m)
}

// pop removes the most recently opened marker of kind k.
func (ms *markerStacks) pop(k types.Kind) (marker, bool) {
	stack := ms[k]
	if len(stack) == 0 {
		return marker{}, false
	}
	m := stack[len(stack)-1]
	ms[k] = stack[:len(stack)-1]
	return m, true
}

// cssGroup records the markers opened by one <span style> or <font color>
// so the matching end tag closes exactly those.
type cssGroup struct {
	kinds []types.Kind
}

var inlineTags = map[string]types.Kind{
	"b":       types.KindBold,
	"i":       types.KindItalic,
	"u":       types.KindUnderline,
	"s":       types.KindStrikethrough,
	"strike":  types.KindStrikethrough,
	"code":    types.KindInlineCode,
	"a":       types.KindLink,
	"mention": types.KindMention,
}

var blockTags = map[string]types.Kind{
	"p":          types.KindParagraph,
	"blockquote": types.KindBlockQuote,
	"codeblock":  types.KindCodeBlock,
}

var headingTags = map[string]int{
	"h1": 1,
	"h2": 2,
	"h3": 3,
	"h4": 4,
	"h5": 5,
	"h6": 6,
}
