package types

import (
	"fmt"
)

// Category groups span kinds by the level at which they are serialized.
type Category int

const (
	CategoryInline Category = iota
	CategoryParagraph
	CategoryBlock
	// CategoryAlignment spans carry text alignment over whole lines and are
	// serialized as an attribute of the line's element.
	CategoryAlignment
)

// Kind is the span kind.
type Kind int

const (
	KindBold Kind = iota
	KindItalic
	KindUnderline
	KindInlineCode
	KindStrikethrough
	KindForegroundColor
	KindBackgroundColor
	KindLink
	KindMention
	KindImage

	KindParagraph
	KindUnorderedList
	KindOrderedList
	KindCheckboxList
	KindH1
	KindH2
	KindH3
	KindH4
	KindH5
	KindH6

	KindBlockQuote
	KindCodeBlock

	KindAlignment

	kindCount
)

// NumKinds is the number of span kinds.
const NumKinds = int(kindCount)

type kindInfo struct {
	name     string
	category Category
	tag      string
}

// kinds is indexed by Kind. Inline kinds are listed in the order their tags
// open at a shared start offset.
var kinds = [kindCount]kindInfo{
	KindBold:            {"bold", CategoryInline, "b"},
	KindItalic:          {"italic", CategoryInline, "i"},
	KindUnderline:       {"underline", CategoryInline, "u"},
	KindInlineCode:      {"inline_code", CategoryInline, "code"},
	KindStrikethrough:   {"strikethrough", CategoryInline, "s"},
	KindForegroundColor: {"foreground_color", CategoryInline, "span"},
	KindBackgroundColor: {"background_color", CategoryInline, "span"},
	KindLink:            {"link", CategoryInline, "a"},
	KindMention:         {"mention", CategoryInline, "mention"},
	KindImage:           {"image", CategoryInline, "img"},

	KindParagraph:     {"paragraph", CategoryParagraph, "p"},
	KindUnorderedList: {"unordered_list", CategoryParagraph, "li"},
	KindOrderedList:   {"ordered_list", CategoryParagraph, "li"},
	KindCheckboxList:  {"checkbox_list", CategoryParagraph, "li"},
	KindH1:            {"h1", CategoryParagraph, "h1"},
	KindH2:            {"h2", CategoryParagraph, "h2"},
	KindH3:            {"h3", CategoryParagraph, "h3"},
	KindH4:            {"h4", CategoryParagraph, "h4"},
	KindH5:            {"h5", CategoryParagraph, "h5"},
	KindH6:            {"h6", CategoryParagraph, "h6"},

	KindBlockQuote: {"blockquote", CategoryBlock, "blockquote"},
	KindCodeBlock:  {"codeblock", CategoryBlock, "codeblock"},

	KindAlignment: {"alignment", CategoryAlignment, "div"},
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k >= 0 && k < kindCount
}

// Category returns the serialization level of k.
func (k Kind) Category() Category {
	if !k.Valid() {
		return CategoryInline
	}
	return kinds[k].category
}

// Tag returns the element name used for k.
func (k Kind) Tag() string {
	if !k.Valid() {
		return ""
	}
	return kinds[k].tag
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kinds[k].name
}

// IsList reports whether k is one of the list item kinds.
func (k Kind) IsList() bool {
	return k == KindUnorderedList || k == KindOrderedList || k == KindCheckboxList
}

// HeadingLevel returns 1..6 for heading kinds and 0 otherwise.
func (k Kind) HeadingLevel() int {
	if k >= KindH1 && k <= KindH6 {
		return int(k-KindH1) + 1
	}
	return 0
}

// HeadingKind maps a heading level to its kind.
func HeadingKind(level int) (Kind, error) {
	if level < 1 || level > 6 {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedHeading, level)
	}
	return KindH1 + Kind(level-1), nil
}

// ParseKind looks a kind up by name.
func ParseKind(name string) (Kind, error) {
	for k := Kind(0); k < kindCount; k++ {
		if kinds[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown span kind %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("unknown span kind %d", int(k))
	}
	return []byte(kinds[k].name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
