package parser

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/riverfjs/enriched-go/internal/tokenizer"
	"github.com/riverfjs/enriched-go/internal/types"
)

func span(k types.Kind, start, end int) types.Span {
	return types.Span{Start: start, End: end, Kind: k}
}

func withPayload(s types.Span, p types.Payload) types.Span {
	s.Payload = p
	return s
}

func quietConfig() *types.Config {
	cfg := types.DefaultConfig()
	cfg.Logger = nil
	return cfg
}

// TestParse_Documents 测试解析结果的文本和 span
func TestParse_Documents(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		text   string
		spans  []types.Span
	}{
		{
			name:   "paragraph with bold",
			markup: "<p>Hello <b>world</b></p>",
			text:   "Hello world",
			spans: []types.Span{
				span(types.KindBold, 6, 11),
				span(types.KindParagraph, 0, 11),
			},
		},
		{
			name:   "ordered list",
			markup: "<ol><li>One</li><li>Two</li></ol>",
			text:   "One\nTwo",
			spans: []types.Span{
				withPayload(span(types.KindOrderedList, 0, 3), types.Payload{Index: 1}),
				withPayload(span(types.KindOrderedList, 4, 7), types.Payload{Index: 2}),
			},
		},
		{
			name:   "image",
			markup: `<img src="x.png" width="10" height="20">`,
			text:   "\uFFFC",
			spans: []types.Span{
				withPayload(span(types.KindImage, 0, 1), types.Payload{Source: "x.png", Width: 10, Height: 20}),
			},
		},
		{
			name:   "empty paragraph gets a placeholder",
			markup: "<p></p>",
			text:   "\u200b",
			spans:  []types.Span{span(types.KindParagraph, 0, 1)},
		},
		{
			name:   "paragraph holding only a line break",
			markup: "<p>a</p><p><br></p>",
			text:   "a\n\u200b",
			spans: []types.Span{
				span(types.KindParagraph, 0, 1),
				span(types.KindParagraph, 2, 3),
			},
		},
		{
			name:   "empty list item gets a placeholder",
			markup: "<ul><li>a</li><li></li></ul>",
			text:   "a\n\u200b",
			spans: []types.Span{
				span(types.KindUnorderedList, 0, 1),
				span(types.KindUnorderedList, 2, 3),
			},
		},
		{
			name:   "whitespace collapses",
			markup: "<p>  a \n  b</p>",
			text:   "a b",
			spans:  []types.Span{span(types.KindParagraph, 0, 3)},
		},
		{
			name:   "whitespace between blocks is dropped",
			markup: "<html>\n<p>a</p>\n<p>b</p>\n</html>",
			text:   "a\nb",
			spans: []types.Span{
				span(types.KindParagraph, 0, 1),
				span(types.KindParagraph, 2, 3),
			},
		},
		{
			name:   "heading",
			markup: "<h2>Title</h2><p>body</p>",
			text:   "Title\nbody",
			spans: []types.Span{
				span(types.KindH2, 0, 5),
				span(types.KindParagraph, 6, 10),
			},
		},
		{
			name:   "blockquote around paragraph",
			markup: "<blockquote><p>quote</p></blockquote><p>after</p>",
			text:   "quote\nafter",
			spans: []types.Span{
				span(types.KindParagraph, 0, 5),
				span(types.KindBlockQuote, 0, 5),
				span(types.KindParagraph, 6, 11),
			},
		},
		{
			name:   "codeblock with line breaks",
			markup: "<codeblock>a<br>b</codeblock>",
			text:   "a\nb",
			spans:  []types.Span{span(types.KindCodeBlock, 0, 3)},
		},
		{
			name:   "checkbox list",
			markup: `<ul data-type="checkbox"><li checked>Done</li><li>Todo</li></ul>`,
			text:   "Done\nTodo",
			spans: []types.Span{
				withPayload(span(types.KindCheckboxList, 0, 4), types.Payload{Checked: true}),
				span(types.KindCheckboxList, 5, 9),
			},
		},
		{
			name:   "nested list restores outer context",
			markup: "<ol><li>a</li><ul><li>b</li></ul><li>c</li></ol>",
			text:   "a\nb\nc",
			spans: []types.Span{
				withPayload(span(types.KindOrderedList, 0, 1), types.Payload{Index: 1}),
				span(types.KindUnorderedList, 2, 3),
				withPayload(span(types.KindOrderedList, 4, 5), types.Payload{Index: 2}),
			},
		},
		{
			name:   "link and mention",
			markup: `<p><a href="https://x.dev">site</a> <mention text="Ann" indicator="@" id="7">@Ann</mention></p>`,
			text:   "site @Ann",
			spans: []types.Span{
				withPayload(span(types.KindLink, 0, 4), types.Payload{URL: "https://x.dev"}),
				withPayload(span(types.KindMention, 5, 9), types.Payload{
					Text:       "Ann",
					Indicator:  "@",
					Attributes: []types.Attr{{Key: "id", Val: "7"}},
				}),
				span(types.KindParagraph, 0, 9),
			},
		},
		{
			name:   "link without href is plain text",
			markup: "<a>x</a>",
			text:   "x",
		},
		{
			name:   "orphan end tags are ignored",
			markup: "</b>hi</i></p>",
			text:   "hi",
		},
		{
			name:   "unknown tags are ignored",
			markup: "<div>x<strike>y</strike></div>",
			text:   "xy",
			spans:  []types.Span{span(types.KindStrikethrough, 1, 2)},
		},
		{
			name:   "same kind nests LIFO",
			markup: "<b>a<b>b</b>c</b>",
			text:   "abc",
			spans: []types.Span{
				span(types.KindBold, 1, 2),
				span(types.KindBold, 0, 3),
			},
		},
		{
			name:   "empty inline produces no span",
			markup: "<p>a<i></i></p>",
			text:   "a",
			spans:  []types.Span{span(types.KindParagraph, 0, 1)},
		},
		{
			name:   "color span ignored by default",
			markup: `<span style="color:red">r</span>`,
			text:   "r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.markup, quietConfig())
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := doc.String(); got != tt.text {
				t.Errorf("Parse() text = %q, want %q", got, tt.text)
			}
			if diff := cmp.Diff(tt.spans, doc.Spans, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
			}
			if err := doc.Validate(); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

// TestParse_CSSColors 测试 CSS 颜色解析
func TestParse_CSSColors(t *testing.T) {
	cfg := quietConfig()
	cfg.CSSColors = true

	tests := []struct {
		name   string
		markup string
		spans  []types.Span
	}{
		{
			name:   "named foreground",
			markup: `<span style="color: red">x</span>`,
			spans: []types.Span{
				withPayload(span(types.KindForegroundColor, 0, 1), types.Payload{Color: "#ff0000"}),
			},
		},
		{
			name:   "background hex",
			markup: `<span style="background-color:#123456">x</span>`,
			spans: []types.Span{
				withPayload(span(types.KindBackgroundColor, 0, 1), types.Payload{Color: "#123456"}),
			},
		},
		{
			name:   "font color short hex",
			markup: `<font color="#0f0">x</font>`,
			spans: []types.Span{
				withPayload(span(types.KindForegroundColor, 0, 1), types.Payload{Color: "#00ff00"}),
			},
		},
		{
			name:   "line-through",
			markup: `<span style="text-decoration: line-through">x</span>`,
			spans:  []types.Span{span(types.KindStrikethrough, 0, 1)},
		},
		{
			name:   "unknown color skipped",
			markup: `<span style="color: nope">x</span>`,
		},
		{
			name:   "declarations separated by semicolon",
			markup: `<span style="color:red;background-color:blue">x</span>`,
			spans: []types.Span{
				withPayload(span(types.KindBackgroundColor, 0, 1), types.Payload{Color: "#0000ff"}),
				withPayload(span(types.KindForegroundColor, 0, 1), types.Payload{Color: "#ff0000"}),
			},
		},
		{
			name:   "background declared first",
			markup: `<span style="background-color:blue;color:red;">x</span>`,
			spans: []types.Span{
				withPayload(span(types.KindBackgroundColor, 0, 1), types.Payload{Color: "#0000ff"}),
				withPayload(span(types.KindForegroundColor, 0, 1), types.Payload{Color: "#ff0000"}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.markup, cfg)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if diff := cmp.Diff(tt.spans, doc.Spans, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParse_Alignment 测试 text-align 和 align 属性
func TestParse_Alignment(t *testing.T) {
	cfg := quietConfig()
	cfg.CSSColors = true

	align := func(a types.Align, start, end int) types.Span {
		return withPayload(span(types.KindAlignment, start, end), types.Payload{Align: a})
	}
	tests := []struct {
		name   string
		markup string
		text   string
		spans  []types.Span
	}{
		{
			name:   "paragraph style",
			markup: `<p style="text-align:center">a</p>`,
			text:   "a",
			spans:  []types.Span{span(types.KindParagraph, 0, 1), align(types.AlignCenter, 0, 1)},
		},
		{
			name:   "div align covers its paragraphs",
			markup: `<div align="right"><p>a</p><p>b</p></div>`,
			text:   "a\nb",
			spans: []types.Span{
				span(types.KindParagraph, 0, 1),
				span(types.KindParagraph, 2, 3),
				align(types.AlignEnd, 0, 3),
			},
		},
		{
			name:   "list item",
			markup: `<ul><li style="text-align:end">x</li><li>y</li></ul>`,
			text:   "x\ny",
			spans: []types.Span{
				span(types.KindUnorderedList, 0, 1),
				align(types.AlignEnd, 0, 1),
				span(types.KindUnorderedList, 2, 3),
			},
		},
		{
			name:   "heading with other declarations",
			markup: `<h1 style="color:red; text-align: start">T</h1>`,
			text:   "T",
			spans:  []types.Span{span(types.KindH1, 0, 1), align(types.AlignStart, 0, 1)},
		},
		{
			name:   "empty paragraph",
			markup: `<p align="center"></p>`,
			text:   "\u200b",
			spans:  []types.Span{span(types.KindParagraph, 0, 1), align(types.AlignCenter, 0, 1)},
		},
		{
			name:   "nested alignments",
			markup: `<div align="center"><p style="text-align:end">a</p></div>`,
			text:   "a",
			spans: []types.Span{
				span(types.KindParagraph, 0, 1),
				align(types.AlignEnd, 0, 1),
				align(types.AlignCenter, 0, 1),
			},
		},
		{
			name:   "unsupported value",
			markup: `<p style="text-align:justify">a</p>`,
			text:   "a",
			spans:  []types.Span{span(types.KindParagraph, 0, 1)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(tt.markup, cfg)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := doc.String(); got != tt.text {
				t.Errorf("Parse() text = %q, want %q", got, tt.text)
			}
			if diff := cmp.Diff(tt.spans, doc.Spans, cmpopts.EquateEmpty()); diff != "" {
				t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
			}
		})
	}

	doc, err := Parse(`<div align="center"><p style="text-align:center">a</p></div>`, quietConfig())
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []types.Span{span(types.KindParagraph, 0, 1)}
	if diff := cmp.Diff(want, doc.Spans); diff != "" {
		t.Errorf("alignment without CSS option (-want +got):\n%s", diff)
	}
}

// TestParseColor 测试颜色规范化
func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"red", "#ff0000", true},
		{" Blue ", "#0000ff", true},
		{"#abc", "#aabbcc", true},
		{"#A1B2C3", "#a1b2c3", true},
		{"abc", "", false},
		{"#zzzzzz", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseColor(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseColor(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

// TestParse_CheckboxListsDisabled 测试关闭复选框列表时按无序列表处理
func TestParse_CheckboxListsDisabled(t *testing.T) {
	cfg := quietConfig()
	cfg.CheckboxLists = false
	doc, err := Parse(`<ul data-type="checkbox"><li checked>a</li></ul>`, cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []types.Span{span(types.KindUnorderedList, 0, 1)}
	if diff := cmp.Diff(want, doc.Spans); diff != "" {
		t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
	}
}

// TestParse_LegacySeparator 测试旧版双换行分隔
func TestParse_LegacySeparator(t *testing.T) {
	cfg := quietConfig()
	cfg.Separator = types.SeparatorLegacy
	doc, err := Parse("<p>a</p><p>b</p><ul><li>c</li><li>d</li></ul>", cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got, want := doc.String(), "a\n\nb\n\nc\nd"; got != want {
		t.Errorf("Parse() text = %q, want %q", got, want)
	}
	want := []types.Span{
		span(types.KindParagraph, 0, 1),
		span(types.KindParagraph, 3, 4),
		span(types.KindUnorderedList, 6, 7),
		span(types.KindUnorderedList, 8, 9),
	}
	if diff := cmp.Diff(want, doc.Spans); diff != "" {
		t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
	}
}

type stubResolver struct {
	width, height int
	err           error
}

func (r stubResolver) Resolve(string) (int, int, error) {
	return r.width, r.height, r.err
}

// TestParse_ImageErrors 测试图片尺寸错误
func TestParse_ImageErrors(t *testing.T) {
	errBroken := errors.New("broken")
	tests := []struct {
		name     string
		markup   string
		resolver types.ImageResolver
		wantErr  error
	}{
		{"non-numeric width", `<img src="x.png" width="abc" height="20">`, nil, types.ErrMalformedInput},
		{"non-numeric height", `<img src="x.png" width="1" height="2.5">`, nil, types.ErrMalformedInput},
		{"missing size without resolver", `<img src="x.png">`, nil, types.ErrMalformedInput},
		{"resolver failure", `<img src="x.png">`, stubResolver{err: errBroken}, errBroken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := quietConfig()
			cfg.ImageResolver = tt.resolver
			_, err := Parse(tt.markup, cfg)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestParse_ImageResolver 测试缺失尺寸由解析器补全
func TestParse_ImageResolver(t *testing.T) {
	cfg := quietConfig()
	cfg.ImageResolver = stubResolver{width: 100, height: 50}

	doc, err := Parse(`<img src="y.png" width="10">`, cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []types.Span{
		withPayload(span(types.KindImage, 0, 1), types.Payload{Source: "y.png", Width: 10, Height: 50}),
	}
	if diff := cmp.Diff(want, doc.Spans); diff != "" {
		t.Errorf("Parse() spans mismatch (-want +got):\n%s", diff)
	}
}

type recordingFactory struct {
	types.NopSpanFactory
}

func (recordingFactory) Bold(style any) any {
	return fmt.Sprintf("bold:%v", style)
}

func (recordingFactory) OrderedList(index int, style any) any {
	return fmt.Sprintf("ol:%d:%v", index, style)
}

// TestParse_SpanFactory 测试 span 工厂和样式上下文
func TestParse_SpanFactory(t *testing.T) {
	cfg := quietConfig()
	cfg.SpanFactory = recordingFactory{}
	cfg.Style = "dark"

	doc, err := Parse("<ol><li><b>x</b></li></ol>", cfg)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var handles []any
	for _, s := range doc.Spans {
		handles = append(handles, s.Handle)
	}
	want := []any{"bold:dark", "ol:1:dark"}
	if diff := cmp.Diff(want, handles); diff != "" {
		t.Errorf("handles mismatch (-want +got):\n%s", diff)
	}
}

type failingSource struct {
	events []tokenizer.Event
}

func (s *failingSource) Next() (tokenizer.Event, error) {
	if len(s.events) == 0 {
		return tokenizer.Event{}, errors.New("read failed")
	}
	ev := s.events[0]
	s.events = s.events[1:]
	return ev, nil
}

// TestParseEvents_SourceError 测试事件源错误向上传递
func TestParseEvents_SourceError(t *testing.T) {
	src := &failingSource{events: []tokenizer.Event{{Type: tokenizer.StartTag, Name: "p"}}}
	if _, err := ParseEvents(src, nil); err == nil {
		t.Fatal("ParseEvents() should fail when the source fails")
	}
}

// TestParse_Concurrent 测试并发解析互不干扰
func TestParse_Concurrent(t *testing.T) {
	inputs := []string{
		"<ol><li>One</li><li>Two</li><li>Three</li></ol>",
		"<ul><li>a</li></ul><ol><li>b</li></ol>",
		"<p>x <b>y <i>z</i></b></p>",
	}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		doc, err := Parse(in, quietConfig())
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", in, err)
		}
		want[i] = fmt.Sprint(doc.Spans)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for n := 0; n < 16; n++ {
		for i, in := range inputs {
			wg.Add(1)
			go func(i int, in string) {
				defer wg.Done()
				doc, err := Parse(in, quietConfig())
				if err != nil {
					errs <- err.Error()
					return
				}
				if got := fmt.Sprint(doc.Spans); got != want[i] {
					errs <- fmt.Sprintf("Parse(%q) spans = %s, want %s", in, got, want[i])
				}
			}(i, in)
		}
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}
