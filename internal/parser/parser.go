// Package parser builds a span document from markup.
//
// The parser is a state machine driven by tokenizer events. Every start tag
// pushes an open marker at the current buffer offset; the matching end tag
// pops the most recent marker of the same kind and turns it into a span.
// All state lives in one value per call, so concurrent parses never share
// anything.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riverfjs/enriched-go/internal/buffer"
	"github.com/riverfjs/enriched-go/internal/tokenizer"
	"github.com/riverfjs/enriched-go/internal/types"
	"github.com/riverfjs/enriched-go/internal/util"
)

// EventSource yields tokenizer events until EndOfDocument.
type EventSource interface {
	Next() (tokenizer.Event, error)
}

// pendingSpan is a finished span plus whether it was given a placeholder
// because its element had no content.
type pendingSpan struct {
	types.Span
	placeholder bool
}

type state struct {
	cfg     *types.Config
	buf     *buffer.TextBuffer
	spans   []pendingSpan
	markers markerStacks
	lists   []listContext
	css     map[string][]cssGroup
	aligned map[string][]bool

	// pendingEmpty is true while the innermost paragraph or block element
	// has not received any text yet.
	pendingEmpty bool
}

// Parse 将标记文本解析为 span 文档
func Parse(markup string, cfg *types.Config) (*types.Document, error) {
	return ParseEvents(tokenizer.FromString(markup), cfg)
}

// ParseEvents runs the state machine over events from src.
func ParseEvents(src EventSource, cfg *types.Config) (*types.Document, error) {
	if cfg == nil {
		cfg = types.DefaultConfig()
	}
	p := &state{
		cfg: cfg,
		buf: buffer.New(),
		css:     make(map[string][]cssGroup),
		aligned: make(map[string][]bool),
	}

	for {
		ev, err := src.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenize: %w", err)
		}
		switch ev.Type {
		case tokenizer.StartTag:
			err = p.onStartTag(ev)
		case tokenizer.EndTag:
			err = p.onEndTag(ev.Name)
		case tokenizer.Characters:
			p.onCharacters(ev.Text)
		case tokenizer.EndOfDocument:
			return p.finish(), nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// --- Start tags ---

func (p *state) onStartTag(ev tokenizer.Event) error {
	name := ev.Name
	if kind, ok := blockTags[name]; ok {
		p.startBlock(kind, name)
		p.startAlign(ev)
		return nil
	}
	if level, ok := headingTags[name]; ok {
		kind, err := types.HeadingKind(level)
		if err != nil {
			return err
		}
		p.startBlock(kind, name)
		p.startAlign(ev)
		return nil
	}
	if kind, ok := inlineTags[name]; ok {
		p.startInline(kind, ev)
		return nil
	}

	switch name {
	case "ul":
		list := listUnordered
		if dataType, _ := ev.Attr("data-type"); dataType == "checkbox" && p.cfg.CheckboxLists {
			list = listCheckbox
		}
		p.buf.EnsureTrailingNewlines(p.minNewlines(name))
		p.lists = append(p.lists, listContext{kind: list})
	case "ol":
		p.buf.EnsureTrailingNewlines(p.minNewlines(name))
		p.lists = append(p.lists, listContext{kind: listOrdered})
	case "li":
		p.startListItem(ev)
		p.startAlign(ev)
	case "div":
		if p.cfg.CSSColors {
			p.buf.EnsureTrailingNewlines(p.minNewlines(name))
			p.startAlign(ev)
		}
	case "img":
		return p.onImage(ev)
	case "span":
		if p.cfg.CSSColors {
			style, _ := ev.Attr("style")
			p.startCSS(name, style, "")
		}
	case "font":
		if p.cfg.CSSColors {
			color, _ := ev.Attr("color")
			p.startCSS(name, "", color)
		}
	}
	// br waits for its end tag; anything else is ignored.
	return nil
}

func (p *state) startBlock(kind types.Kind, tag string) {
	p.buf.EnsureTrailingNewlines(p.minNewlines(tag))
	p.markers.push(kind, marker{start: p.buf.Len(), valid: true})
	p.pendingEmpty = true
}

func (p *state) startListItem(ev tokenizer.Event) {
	p.buf.EnsureTrailingNewlines(p.minNewlines("li"))

	m := marker{start: p.buf.Len(), list: listUnordered, valid: true}
	if n := len(p.lists); n > 0 {
		ctx := &p.lists[n-1]
		m.list = ctx.kind
		if ctx.kind == listOrdered {
			ctx.index++
			m.index = ctx.index
		}
	}
	if m.list == listCheckbox {
		if v, ok := ev.Attr("checked"); ok && !strings.EqualFold(v, "false") {
			m.checked = true
		}
	}
	p.markers.push(types.KindUnorderedList, m)
	p.pendingEmpty = true
}

func (p *state) startInline(kind types.Kind, ev tokenizer.Event) {
	m := marker{start: p.buf.Len(), valid: true}
	switch kind {
	case types.KindLink:
		m.payload.URL, m.valid = ev.Attr("href")
	case types.KindMention:
		m.payload.Text, m.valid = ev.Attr("text")
		m.payload.Indicator, _ = ev.Attr("indicator")
		for _, attr := range ev.Attrs {
			if attr.Key != "text" && attr.Key != "indicator" {
				m.payload.Attributes = append(m.payload.Attributes, attr)
			}
		}
	}
	p.markers.push(kind, m)
}

func (p *state) onImage(ev tokenizer.Event) error {
	src, _ := ev.Attr("src")
	width, height, err := p.imageSize(ev, src)
	if err != nil {
		return err
	}
	start := p.buf.Len()
	p.buf.WriteRune(types.ORC)
	p.pendingEmpty = false
	return p.attach(types.KindImage, start, start+1, types.Payload{
		Source: src,
		Width:  width,
		Height: height,
	}, false)
}

func (p *state) imageSize(ev tokenizer.Event, src string) (int, int, error) {
	ws, hasWidth := ev.Attr("width")
	hs, hasHeight := ev.Attr("height")

	var width, height int
	var err error
	if hasWidth {
		if width, err = strconv.Atoi(strings.TrimSpace(ws)); err != nil {
			return 0, 0, fmt.Errorf("%w: image width %q", types.ErrMalformedInput, ws)
		}
	}
	if hasHeight {
		if height, err = strconv.Atoi(strings.TrimSpace(hs)); err != nil {
			return 0, 0, fmt.Errorf("%w: image height %q", types.ErrMalformedInput, hs)
		}
	}
	if hasWidth && hasHeight {
		return width, height, nil
	}

	if p.cfg.ImageResolver == nil {
		return 0, 0, fmt.Errorf("%w: image %q has no dimensions", types.ErrMalformedInput, src)
	}
	rw, rh, err := p.cfg.ImageResolver.Resolve(src)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve image %q: %w", src, err)
	}
	if !hasWidth {
		width = rw
	}
	if !hasHeight {
		height = rh
	}
	return width, height, nil
}

// --- Characters ---

func (p *state) onCharacters(text string) {
	prev, ok := p.buf.Last()
	if !ok {
		prev = '\n'
	}
	normalized := util.CollapseWhitespace(text, prev)
	if normalized == "" {
		return
	}
	p.buf.Write(normalized)
	p.pendingEmpty = false
}

// --- End tags ---

func (p *state) onEndTag(name string) error {
	if kind, ok := blockTags[name]; ok {
		if err := p.endBlock(kind, name); err != nil {
			return err
		}
		return p.endAlign(name)
	}
	if level, ok := headingTags[name]; ok {
		kind, err := types.HeadingKind(level)
		if err != nil {
			return err
		}
		if err := p.endBlock(kind, name); err != nil {
			return err
		}
		return p.endAlign(name)
	}
	if kind, ok := inlineTags[name]; ok {
		return p.endInline(kind)
	}

	switch name {
	case "br":
		// A line break counts as content: an element holding only <br>
		// gets its placeholder before the newline.
		if p.pendingEmpty {
			p.buf.WriteRune(types.ZWS)
			p.pendingEmpty = false
		}
		p.buf.WriteRune('\n')
	case "ul", "ol":
		p.buf.EnsureTrailingNewlines(p.minNewlines(name))
		if n := len(p.lists); n > 0 {
			p.lists = p.lists[:n-1]
		}
	case "li":
		if err := p.endListItem(); err != nil {
			return err
		}
		return p.endAlign(name)
	case "div":
		if p.cfg.CSSColors {
			if err := p.endAlign(name); err != nil {
				return err
			}
			p.buf.EnsureTrailingNewlines(p.minNewlines(name))
		}
	case "span", "font":
		return p.endCSS(name)
	}
	return nil
}

func (p *state) endBlock(kind types.Kind, tag string) error {
	m, ok := p.markers.pop(kind)
	if !ok {
		return nil
	}
	placeholder := p.fillEmpty()
	end := p.paragraphEnd()
	if err := p.attach(kind, m.start, end, types.Payload{}, placeholder); err != nil {
		return err
	}
	p.buf.EnsureTrailingNewlines(p.minNewlines(tag))
	return nil
}

func (p *state) endListItem() error {
	m, ok := p.markers.pop(types.KindUnorderedList)
	if !ok {
		return nil
	}
	placeholder := p.fillEmpty()
	// close the implicit paragraph wrapping the item
	p.buf.EnsureTrailingNewlines(p.minNewlines("li"))
	end := p.paragraphEnd()

	kind := types.KindUnorderedList
	var payload types.Payload
	switch m.list {
	case listOrdered:
		kind = types.KindOrderedList
		payload.Index = m.index
	case listCheckbox:
		kind = types.KindCheckboxList
		payload.Checked = m.checked
	}
	if err := p.attach(kind, m.start, end, payload, placeholder); err != nil {
		return err
	}
	p.buf.EnsureTrailingNewlines(p.minNewlines("li"))
	return nil
}

func (p *state) endInline(kind types.Kind) error {
	m, ok := p.markers.pop(kind)
	if !ok || !m.valid {
		return nil
	}
	end := p.buf.Len()
	if end == m.start {
		return nil
	}
	return p.attach(kind, m.start, end, m.payload, false)
}

// fillEmpty appends the zero-width placeholder when the element being
// closed never received text.
func (p *state) fillEmpty() bool {
	if !p.pendingEmpty {
		return false
	}
	p.buf.WriteRune(types.ZWS)
	p.pendingEmpty = false
	return true
}

// paragraphEnd is the buffer length, excluding a trailing newline.
func (p *state) paragraphEnd() int {
	end := p.buf.Len()
	if r, ok := p.buf.Last(); ok && r == '\n' {
		end--
	}
	return end
}

func (p *state) attach(kind types.Kind, start, end int, payload types.Payload, placeholder bool) error {
	if end <= start {
		return nil
	}
	span, err := types.NewSpan(p.cfg, kind, start, end, payload)
	if err != nil {
		return err
	}
	p.spans = append(p.spans, pendingSpan{Span: span, placeholder: placeholder})
	return nil
}

// minNewlines is the block separation required before and after tag.
func (p *state) minNewlines(tag string) int {
	if p.cfg.Separator == types.SeparatorLegacy && tag != "li" {
		return 2
	}
	return 1
}
