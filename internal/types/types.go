package types

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
)

// Placeholder runes used in the text buffer.
const (
	// ZWS 零宽空格，为空的段落/块元素占位
	ZWS = '\u200B'
	// ORC 对象替换字符，图片占位
	ORC = '\uFFFC'
)

var (
	// ErrMalformedInput is returned for input that cannot be parsed, such as
	// non-integer image dimensions.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnsupportedHeading is returned for heading levels outside 1..6.
	ErrUnsupportedHeading = errors.New("unsupported heading level")
	// ErrInvalidSpan is returned when a document span violates the range invariant.
	ErrInvalidSpan = errors.New("invalid span")
)

// Attr 表示一个有序的标签属性
type Attr struct {
	Key string `json:"key"`
	Val string `json:"val"`
}

// Payload carries kind-specific span data. Only the fields relevant to the
// span kind are set.
type Payload struct {
	URL        string `json:"url,omitempty"`
	Text       string `json:"text,omitempty"`
	Indicator  string `json:"indicator,omitempty"`
	Attributes []Attr `json:"attributes,omitempty"`
	Source     string `json:"source,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Index      int    `json:"index,omitempty"`
	Checked    bool   `json:"checked,omitempty"`
	Color      string `json:"color,omitempty"`
	Align      Align  `json:"align,omitempty"`
}

// Align is the text alignment of an alignment span.
type Align string

const (
	AlignStart  Align = "start"
	AlignCenter Align = "center"
	AlignEnd    Align = "end"
)

// ParseAlign maps a CSS text-align value or an HTML align attribute to an
// Align. left/right are accepted as start/end.
func ParseAlign(value string) (Align, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "start", "left":
		return AlignStart, true
	case "center":
		return AlignCenter, true
	case "end", "right":
		return AlignEnd, true
	}
	return "", false
}

// Span 表示文本缓冲区上的一个半开区间 [Start, End)
type Span struct {
	Start   int     `json:"start"`
	End     int     `json:"end"`
	Kind    Kind    `json:"kind"`
	Payload Payload `json:"payload"`

	// Handle is the host object built by the SpanFactory. The converter never
	// looks inside it.
	Handle any `json:"-"`
}

// Len returns the number of runes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Overlaps reports whether s shares at least one rune with [start, end).
func (s Span) Overlaps(start, end int) bool {
	return s.Start < end && s.End > start
}

func (s Span) String() string {
	return fmt.Sprintf("%s[%d,%d)", s.Kind, s.Start, s.End)
}

// SeparatorMode selects how many newlines separate block elements while parsing.
type SeparatorMode int

const (
	// SeparatorCompact separates every block element with a single newline.
	SeparatorCompact SeparatorMode = iota
	// SeparatorLegacy separates paragraphs, headings, lists and blocks with a
	// blank line and list items with a single newline.
	SeparatorLegacy
)

// ParagraphMode selects how plain lines are grouped when serializing.
type ParagraphMode int

const (
	// ParagraphPerLine emits one <p> per line.
	ParagraphPerLine ParagraphMode = iota
	// ParagraphConsecutive joins consecutive plain lines into one <p> with <br>.
	ParagraphConsecutive
)

// ImageResolver 解析图片来源的显示尺寸
type ImageResolver interface {
	Resolve(source string) (width, height int, err error)
}

// Config 转换配置
type Config struct {
	SpanFactory   SpanFactory
	Style         any
	ImageResolver ImageResolver
	Separator     SeparatorMode
	CheckboxLists bool
	CSSColors     bool
	ParagraphMode ParagraphMode
	Logger        *log.Logger
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		SpanFactory:   NopSpanFactory{},
		Separator:     SeparatorCompact,
		CheckboxLists: true,
		ParagraphMode: ParagraphPerLine,
		Logger:        log.New(os.Stderr, "[enriched] ", log.LstdFlags),
	}
}

// Factory returns the configured span factory, falling back to NopSpanFactory.
func (c *Config) Factory() SpanFactory {
	if c == nil || c.SpanFactory == nil {
		return NopSpanFactory{}
	}
	return c.SpanFactory
}

// Logf logs through the configured logger, if any.
func (c *Config) Logf(format string, args ...any) {
	if c == nil || c.Logger == nil {
		return
	}
	c.Logger.Printf(format, args...)
}
