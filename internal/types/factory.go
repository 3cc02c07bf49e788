package types

import "fmt"

// SpanFactory builds host-specific span objects. Every method receives the
// opaque style from Config.Style and returns an opaque handle that is stored
// on the span.
type SpanFactory interface {
	Bold(style any) any
	Italic(style any) any
	Underline(style any) any
	Strikethrough(style any) any
	InlineCode(style any) any
	ForegroundColor(color string, style any) any
	BackgroundColor(color string, style any) any
	Link(url string, style any) any
	Mention(text, indicator string, attrs []Attr, style any) any
	Image(source string, width, height int) any
	Paragraph(style any) any
	Heading(level int, style any) any
	OrderedList(index int, style any) any
	UnorderedList(style any) any
	CheckboxList(checked bool, style any) any
	BlockQuote(style any) any
	CodeBlock(style any) any
	Alignment(align Align, style any) any
}

// NopSpanFactory returns nil handles. It is the default when the host does
// not need its own span objects.
type NopSpanFactory struct{}

func (NopSpanFactory) Bold(any) any { return nil }
func (NopSpanFactory) Italic(any) any { return nil }
func (NopSpanFactory) Underline(any) any { return nil }
func (NopSpanFactory) Strikethrough(any) any { return nil }
func (NopSpanFactory) InlineCode(any) any { return nil }
func (NopSpanFactory) ForegroundColor(string, any) any { return nil }
func (NopSpanFactory) BackgroundColor(string, any) any { return nil }
func (NopSpanFactory) Link(string, any) any { return nil }
func (NopSpanFactory) Mention(string, string, []Attr, any) any { return nil }
func (NopSpanFactory) Image(string, int, int) any { return nil }
func (NopSpanFactory) Paragraph(any) any { return nil }
func (NopSpanFactory) Heading(int, any) any { return nil }
func (NopSpanFactory) OrderedList(int, any) any { return nil }
func (NopSpanFactory) UnorderedList(any) any { return nil }
func (NopSpanFactory) CheckboxList(bool, any) any { return nil }
func (NopSpanFactory) BlockQuote(any) any { return nil }
func (NopSpanFactory) CodeBlock(any) any { return nil }
func (NopSpanFactory) Alignment(Align, any) any { return nil }

type buildFunc func(f SpanFactory, p Payload, style any) any

var builders = [kindCount]buildFunc{
	KindBold:            func(f SpanFactory, _ Payload, s any) any { return f.Bold(s) },
	KindItalic:          func(f SpanFactory, _ Payload, s any) any { return f.Italic(s) },
	KindUnderline:       func(f SpanFactory, _ Payload, s any) any { return f.Underline(s) },
	KindStrikethrough:   func(f SpanFactory, _ Payload, s any) any { return f.Strikethrough(s) },
	KindInlineCode:      func(f SpanFactory, _ Payload, s any) any { return f.InlineCode(s) },
	KindForegroundColor: func(f SpanFactory, p Payload, s any) any { return f.ForegroundColor(p.Color, s) },
	KindBackgroundColor: func(f SpanFactory, p Payload, s any) any { return f.BackgroundColor(p.Color, s) },
	KindLink:            func(f SpanFactory, p Payload, s any) any { return f.Link(p.URL, s) },
	KindMention: func(f SpanFactory, p Payload, s any) any {
		return f.Mention(p.Text, p.Indicator, p.Attributes, s)
	},
	KindImage:         func(f SpanFactory, p Payload, _ any) any { return f.Image(p.Source, p.Width, p.Height) },
	KindParagraph:     func(f SpanFactory, _ Payload, s any) any { return f.Paragraph(s) },
	KindUnorderedList: func(f SpanFactory, _ Payload, s any) any { return f.UnorderedList(s) },
	KindOrderedList:   func(f SpanFactory, p Payload, s any) any { return f.OrderedList(p.Index, s) },
	KindCheckboxList:  func(f SpanFactory, p Payload, s any) any { return f.CheckboxList(p.Checked, s) },
	KindH1:            heading(1),
	KindH2:            heading(2),
	KindH3:            heading(3),
	KindH4:            heading(4),
	KindH5:            heading(5),
	KindH6:            heading(6),
	KindBlockQuote:    func(f SpanFactory, _ Payload, s any) any { return f.BlockQuote(s) },
	KindCodeBlock:     func(f SpanFactory, _ Payload, s any) any { return f.CodeBlock(s) },
	KindAlignment:     func(f SpanFactory, p Payload, s any) any { return f.Alignment(p.Align, s) },
}

func heading(level int) buildFunc {
	return func(f SpanFactory, _ Payload, s any) any { return f.Heading(level, s) }
}

// NewSpan builds a span of kind k over [start, end) and asks the configured
// factory for its handle.
func NewSpan(cfg *Config, k Kind, start, end int, p Payload) (Span, error) {
	if !k.Valid() {
		return Span{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidSpan, int(k))
	}
	var style any
	if cfg != nil {
		style = cfg.Style
	}
	return Span{
		Start:   start,
		End:     end,
		Kind:    k,
		Payload: p,
		Handle:  builders[k](cfg.Factory(), p, style),
	}, nil
}
