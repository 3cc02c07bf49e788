package enriched

import (
	"sync"

	"github.com/riverfjs/enriched-go/internal/types"
)

// 导出类型别名
type (
	Document        = types.Document
	Span            = types.Span
	Kind            = types.Kind
	Category        = types.Category
	Payload         = types.Payload
	Attr            = types.Attr
	Config          = types.Config
	SpanFactory     = types.SpanFactory
	NopSpanFactory  = types.NopSpanFactory
	ImageResolver   = types.ImageResolver
	SeparatorMode   = types.SeparatorMode
	ParagraphMode   = types.ParagraphMode
	ValidationError = types.ValidationError
	UTF16Span       = types.UTF16Span
	Align           = types.Align
)

// Span kinds.
const (
	KindBold            = types.KindBold
	KindItalic          = types.KindItalic
	KindUnderline       = types.KindUnderline
	KindInlineCode      = types.KindInlineCode
	KindStrikethrough   = types.KindStrikethrough
	KindForegroundColor = types.KindForegroundColor
	KindBackgroundColor = types.KindBackgroundColor
	KindLink            = types.KindLink
	KindMention         = types.KindMention
	KindImage           = types.KindImage
	KindParagraph       = types.KindParagraph
	KindUnorderedList   = types.KindUnorderedList
	KindOrderedList     = types.KindOrderedList
	KindCheckboxList    = types.KindCheckboxList
	KindH1              = types.KindH1
	KindH2              = types.KindH2
	KindH3              = types.KindH3
	KindH4              = types.KindH4
	KindH5              = types.KindH5
	KindH6              = types.KindH6
	KindBlockQuote      = types.KindBlockQuote
	KindCodeBlock       = types.KindCodeBlock
	KindAlignment       = types.KindAlignment
)

// Text alignments.
const (
	AlignStart  = types.AlignStart
	AlignCenter = types.AlignCenter
	AlignEnd    = types.AlignEnd
)

const (
	SeparatorCompact     = types.SeparatorCompact
	SeparatorLegacy      = types.SeparatorLegacy
	ParagraphPerLine     = types.ParagraphPerLine
	ParagraphConsecutive = types.ParagraphConsecutive
)

// Placeholder runes in the document text.
const (
	ZWS = types.ZWS
	ORC = types.ORC
)

// Errors.
var (
	ErrMalformedInput     = types.ErrMalformedInput
	ErrUnsupportedHeading = types.ErrUnsupportedHeading
	ErrInvalidSpan        = types.ErrInvalidSpan
)

var (
	defaultConfig     *Config
	defaultConfigOnce sync.Once
)

// DefaultConfig returns the default configuration (singleton). Treat it as
// read-only; options work on a copy.
func DefaultConfig() *Config {
	defaultConfigOnce.Do(func() {
		defaultConfig = types.DefaultConfig()
		defaultConfig.Logger = nil
	})
	return defaultConfig
}

// NewDocument creates a document over text with no spans.
func NewDocument(text string) *Document {
	return types.NewDocument(text)
}

// HeadingKind maps a heading level (1..6) to its span kind.
func HeadingKind(level int) (Kind, error) {
	return types.HeadingKind(level)
}
