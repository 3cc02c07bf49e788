package converter

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/riverfjs/enriched-go/internal/types"
)

func span(k types.Kind, start, end int) types.Span {
	return types.Span{Start: start, End: end, Kind: k}
}

func withPayload(s types.Span, p types.Payload) types.Span {
	s.Payload = p
	return s
}

type fixedResolver struct{}

func (fixedResolver) Resolve(string) (int, int, error) {
	return 64, 32, nil
}

// TestFromMarkdown 测试 Markdown 导入
func TestFromMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		markdown string
		text     string
		spans    []types.Span
	}{
		{
			name:     "bold in paragraph",
			markdown: "Hello **world**",
			text:     "Hello world",
			spans: []types.Span{
				span(types.KindBold, 6, 11),
				span(types.KindParagraph, 0, 11),
			},
		},
		{
			name:     "italic and strikethrough",
			markdown: "*a* ~~b~~",
			text:     "a b",
			spans: []types.Span{
				span(types.KindItalic, 0, 1),
				span(types.KindStrikethrough, 2, 3),
				span(types.KindParagraph, 0, 3),
			},
		},
		{
			name:     "heading then paragraph",
			markdown: "# Title\n\nbody",
			text:     "Title\nbody",
			spans: []types.Span{
				span(types.KindH1, 0, 5),
				span(types.KindParagraph, 6, 10),
			},
		},
		{
			name:     "soft break is a space",
			markdown: "a\nb",
			text:     "a b",
			spans:    []types.Span{span(types.KindParagraph, 0, 3)},
		},
		{
			name:     "ordered list keeps start number",
			markdown: "3. a\n4. b",
			text:     "a\nb",
			spans: []types.Span{
				withPayload(span(types.KindOrderedList, 0, 1), types.Payload{Index: 3}),
				withPayload(span(types.KindOrderedList, 2, 3), types.Payload{Index: 4}),
			},
		},
		{
			name:     "task list",
			markdown: "- [x] done\n- [ ] todo",
			text:     "done\ntodo",
			spans: []types.Span{
				withPayload(span(types.KindCheckboxList, 0, 4), types.Payload{Checked: true}),
				span(types.KindCheckboxList, 5, 9),
			},
		},
		{
			name:     "nested list",
			markdown: "- a\n  - b",
			text:     "a\nb",
			spans: []types.Span{
				span(types.KindUnorderedList, 0, 1),
				span(types.KindUnorderedList, 2, 3),
			},
		},
		{
			name:     "blockquote",
			markdown: "> quote",
			text:     "quote",
			spans: []types.Span{
				span(types.KindParagraph, 0, 5),
				span(types.KindBlockQuote, 0, 5),
			},
		},
		{
			name:     "fenced code",
			markdown: "```go\nfmt.Println()\n```",
			text:     "fmt.Println()",
			spans:    []types.Span{span(types.KindCodeBlock, 0, 13)},
		},
		{
			name:     "code span and link",
			markdown: "`x` and [link](https://a.b)",
			text:     "x and link",
			spans: []types.Span{
				span(types.KindInlineCode, 0, 1),
				withPayload(span(types.KindLink, 6, 10), types.Payload{URL: "https://a.b"}),
				span(types.KindParagraph, 0, 10),
			},
		},
		{
			name:     "underline and highlight",
			markdown: "a ++b++ ==c==",
			text:     "a b c",
			spans: []types.Span{
				span(types.KindUnderline, 2, 3),
				withPayload(span(types.KindBackgroundColor, 4, 5), types.Payload{Color: "#ffff00"}),
				span(types.KindParagraph, 0, 5),
			},
		},
		{
			name:     "image without resolver",
			markdown: "![alt](x.png)",
			text:     "\uFFFC",
			spans: []types.Span{
				withPayload(span(types.KindImage, 0, 1), types.Payload{Source: "x.png"}),
				span(types.KindParagraph, 0, 1),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := types.DefaultConfig()
			cfg.Logger = nil
			doc, err := FromMarkdown(tt.markdown, cfg)
			if err != nil {
				t.Fatalf("FromMarkdown() error = %v", err)
			}
			if got := doc.String(); got != tt.text {
				t.Errorf("FromMarkdown() text = %q, want %q", got, tt.text)
			}
			if diff := cmp.Diff(tt.spans, doc.Spans); diff != "" {
				t.Errorf("FromMarkdown() spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestFromMarkdown_ImageResolver 测试图片尺寸解析
func TestFromMarkdown_ImageResolver(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.ImageResolver = fixedResolver{}
	doc, err := FromMarkdown("![](y.png)", cfg)
	if err != nil {
		t.Fatalf("FromMarkdown() error = %v", err)
	}
	want := types.Payload{Source: "y.png", Width: 64, Height: 32}
	if diff := cmp.Diff(want, doc.Spans[0].Payload); diff != "" {
		t.Errorf("image payload mismatch (-want +got):\n%s", diff)
	}
}

// TestFromMarkdown_Table 测试表格转为代码块
func TestFromMarkdown_Table(t *testing.T) {
	doc, err := FromMarkdown("| a | b |\n|---|---|\n| 1 | 22 |", nil)
	if err != nil {
		t.Fatalf("FromMarkdown() error = %v", err)
	}
	text := doc.String()
	if !strings.Contains(text, "22") || !strings.Contains(text, "-+-") {
		t.Errorf("FromMarkdown() text = %q, want formatted table", text)
	}
	if len(doc.Spans) != 1 || doc.Spans[0].Kind != types.KindCodeBlock {
		t.Fatalf("FromMarkdown() spans = %v, want one codeblock", doc.Spans)
	}
	if doc.Spans[0].Start != 0 || doc.Spans[0].End != doc.Len() {
		t.Errorf("codeblock = %v, want whole buffer [0,%d)", doc.Spans[0], doc.Len())
	}
}

// TestFromMarkdown_Valid 测试导入结果满足区间约束
func TestFromMarkdown_Valid(t *testing.T) {
	inputs := []string{
		"",
		"- \n- b",
		"> # quoted heading\n>\n> text",
		"Term\n: definition",
		"Note[^1]\n\n[^1]: footnote text",
		"***\n\n<div>block html</div>\n\nafter",
	}
	for _, in := range inputs {
		doc, err := FromMarkdown(in, nil)
		if err != nil {
			t.Errorf("FromMarkdown(%q) error = %v", in, err)
			continue
		}
		if err := doc.Validate(); err != nil {
			t.Errorf("FromMarkdown(%q) invalid document: %v", in, err)
		}
	}
}

// TestPreprocessDelimiters 测试分隔符预处理
func TestPreprocessDelimiters(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a ++b++ c", "a <u>b</u> c"},
		{"==x==", "<mark>x</mark>"},
		{"`++x++`", "`++x++`"},
		{"++open", "++open"},
		{"Title\n===", "Title\n==="},
		{`\++x++`, `\++x++`},
		{"==a\n\nb==", "==a\n\nb=="},
	}
	for _, tt := range tests {
		if got := PreprocessDelimiters(tt.in); got != tt.want {
			t.Errorf("PreprocessDelimiters(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
