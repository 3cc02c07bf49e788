package parser

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	"github.com/riverfjs/enriched-go/internal/tokenizer"
	"github.com/riverfjs/enriched-go/internal/types"
)

// Declarations are separated by ';' with optional whitespace.
var (
	foregroundColorRe = regexp.MustCompile(`(?:^|[\s;])color\s*:\s*([^\s;]*)`)
	backgroundColorRe = regexp.MustCompile(`(?:^|[\s;])background(?:-color)?\s*:\s*([^\s;]*)`)
	textDecorationRe  = regexp.MustCompile(`(?:^|[\s;])text-decoration\s*:\s*([^\s;]*)`)
	textAlignRe       = regexp.MustCompile(`(?:^|[\s;])text-align\s*:\s*([^\s;]*)`)
)

// startCSS opens color and strikethrough markers for <span style> and
// <font color>. Unknown colors are skipped.
func (p *state) startCSS(tag, style, fontColor string) {
	var group cssGroup
	open := func(kind types.Kind, value string) {
		color, ok := ParseColor(value)
		if !ok {
			p.cfg.Logf("ignoring unsupported color %q", value)
			return
		}
		p.markers.push(kind, marker{
			start:   p.buf.Len(),
			payload: types.Payload{Color: color},
			valid:   true,
		})
		group.kinds = append(group.kinds, kind)
	}

	if fontColor != "" {
		open(types.KindForegroundColor, fontColor)
	}
	if m := foregroundColorRe.FindStringSubmatch(style); m != nil {
		open(types.KindForegroundColor, m[1])
	}
	if m := backgroundColorRe.FindStringSubmatch(style); m != nil {
		open(types.KindBackgroundColor, m[1])
	}
	if m := textDecorationRe.FindStringSubmatch(style); m != nil && strings.EqualFold(m[1], "line-through") {
		p.markers.push(types.KindStrikethrough, marker{start: p.buf.Len(), valid: true})
		group.kinds = append(group.kinds, types.KindStrikethrough)
	}
	p.css[tag] = append(p.css[tag], group)
}

func (p *state) endCSS(tag string) error {
	groups := p.css[tag]
	if len(groups) == 0 {
		return nil
	}
	group := groups[len(groups)-1]
	p.css[tag] = groups[:len(groups)-1]
	for i := len(group.kinds) - 1; i >= 0; i-- {
		if err := p.endInline(group.kinds[i]); err != nil {
			return err
		}
	}
	return nil
}

// ParseColor normalizes a CSS color (named, #rgb or #rrggbb) to #rrggbb.
func ParseColor(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", false
	}
	if rgba, ok := colornames.Map[value]; ok {
		c, _ := colorful.MakeColor(rgba)
		return c.Hex(), true
	}
	if !strings.HasPrefix(value, "#") {
		return "", false
	}
	c, err := colorful.Hex(value)
	if err != nil {
		return "", false
	}
	return c.Hex(), true
}

// startAlign opens an alignment marker for a block element with
// style="text-align:..." or align="...". Every call records whether a marker
// was opened so that the matching end tag closes only its own.
func (p *state) startAlign(ev tokenizer.Event) {
	if !p.cfg.CSSColors {
		return
	}
	align, ok := alignOf(ev)
	if ok {
		p.markers.push(types.KindAlignment, marker{
			start:   p.buf.Len(),
			payload: types.Payload{Align: align},
			valid:   true,
		})
	}
	p.aligned[ev.Name] = append(p.aligned[ev.Name], ok)
}

func (p *state) endAlign(tag string) error {
	stack := p.aligned[tag]
	if len(stack) == 0 {
		return nil
	}
	opened := stack[len(stack)-1]
	p.aligned[tag] = stack[:len(stack)-1]
	if !opened {
		return nil
	}
	m, ok := p.markers.pop(types.KindAlignment)
	if !ok {
		return nil
	}
	return p.attach(types.KindAlignment, m.start, p.paragraphEnd(), m.payload, false)
}

// alignOf reads text-align from the style attribute, falling back to the
// align attribute.
func alignOf(ev tokenizer.Event) (types.Align, bool) {
	if style, ok := ev.Attr("style"); ok {
		if m := textAlignRe.FindStringSubmatch(style); m != nil {
			if align, ok := types.ParseAlign(m[1]); ok {
				return align, true
			}
		}
	}
	if value, ok := ev.Attr("align"); ok {
		return types.ParseAlign(value)
	}
	return "", false
}
