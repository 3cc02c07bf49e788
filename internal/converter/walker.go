package converter

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/riverfjs/enriched-go/internal/buffer"
	"github.com/riverfjs/enriched-go/internal/tokenizer"
	"github.com/riverfjs/enriched-go/internal/types"
)

// scope 跟踪未闭合的内联 span
type scope struct {
	kind    types.Kind
	start   int
	payload types.Payload
}

// itemScope 跟踪未闭合的列表项
type itemScope struct {
	kind    types.Kind
	start   int
	payload types.Payload
	closed  bool
}

// listFrame is one open list. next is the index of the next ordered item.
type listFrame struct {
	ordered bool
	next    int
}

// EventWalker 遍历 goldmark AST 并生成 span 文档
type EventWalker struct {
	buf    *buffer.TextBuffer
	source []byte
	config *types.Config
	spans  []types.Span

	entityStack []scope

	// Block-level state
	listStack      []listFrame
	itemStack      []itemScope
	paragraphStart []int
	quoteStarts    []int
	trimLeading    bool
	footnoteLabel  string

	// Table state
	tableRows   [][]string
	currentRow  []string
	cellParts   []string
	inTableCell bool
}

// NewEventWalker 创建新的 EventWalker
func NewEventWalker(source []byte, config *types.Config) *EventWalker {
	if config == nil {
		config = types.DefaultConfig()
	}
	return &EventWalker{
		buf:    buffer.New(),
		source: source,
		config: config,
	}
}

// Walk 遍历 AST 节点
func (w *EventWalker) Walk(node ast.Node, entering bool) (ast.WalkStatus, error) {
	var err error
	switch n := node.(type) {
	// --- Inline elements ---
	case *ast.Text:
		if entering {
			w.onText(n.Segment, n.SoftLineBreak(), n.HardLineBreak())
		}

	case *ast.String:
		if entering {
			w.write(string(n.Value))
		}

	case *ast.CodeSpan:
		if entering {
			err = w.onInlineCode(n)
			// Skip children to avoid processing the text content twice
			return ast.WalkSkipChildren, err
		}

	case *ast.Emphasis:
		kind := types.KindItalic
		if n.Level == 2 {
			kind = types.KindBold
		}
		if entering {
			w.pushEntity(kind, types.Payload{})
		} else {
			err = w.popEntity(kind)
		}

	case *east.Strikethrough:
		if entering {
			w.pushEntity(types.KindStrikethrough, types.Payload{})
		} else {
			err = w.popEntity(types.KindStrikethrough)
		}

	// --- Links & Images ---
	case *ast.Link:
		if entering {
			w.onStartLink(n)
		} else {
			err = w.popEntity(types.KindLink)
		}

	case *ast.Image:
		if entering {
			err = w.onImage(n)
			return ast.WalkSkipChildren, err
		}

	case *ast.AutoLink:
		if entering {
			url := string(n.URL(w.source))
			w.pushEntity(types.KindLink, types.Payload{URL: url})
			w.write(url)
			err = w.popEntity(types.KindLink)
			return ast.WalkSkipChildren, err
		}

	case *ast.RawHTML:
		if entering {
			err = w.onInlineHTML(n)
		}

	// --- Block elements ---
	case *ast.Paragraph:
		if entering {
			w.onStartParagraph()
		} else {
			err = w.onEndParagraph()
		}

	case *ast.Heading:
		if entering {
			w.onStartHeading()
		} else {
			err = w.onEndHeading(n)
		}

	case *ast.Blockquote:
		if entering {
			w.buf.EnsureTrailingNewlines(1)
			w.quoteStarts = append(w.quoteStarts, w.buf.Len())
		} else {
			start := w.quoteStarts[len(w.quoteStarts)-1]
			w.quoteStarts = w.quoteStarts[:len(w.quoteStarts)-1]
			err = w.closeBlock(types.KindBlockQuote, start, types.Payload{})
		}

	case *ast.List:
		if entering {
			w.onStartList(n)
		} else {
			w.onEndList()
		}

	case *ast.ListItem:
		if entering {
			w.onStartItem()
		} else {
			err = w.onEndItem()
		}

	case *east.TaskCheckBox:
		if entering {
			w.onTaskCheckBox(n.IsChecked)
		}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if entering {
			err = w.onCodeBlock(n)
			return ast.WalkSkipChildren, err
		}

	case *ast.HTMLBlock:
		// Block HTML ignored
		return ast.WalkSkipChildren, nil

	// --- Definition lists & footnotes ---
	case *east.DefinitionTerm:
		if entering {
			w.onStartParagraph()
			w.pushEntity(types.KindBold, types.Payload{})
		} else {
			if err = w.popEntity(types.KindBold); err == nil {
				err = w.onEndParagraph()
			}
		}

	case *east.DefinitionDescription:
		w.buf.EnsureTrailingNewlines(1)

	case *east.FootnoteLink:
		if entering {
			w.write(fmt.Sprintf("[%d]", n.Index))
		}

	case *east.FootnoteBacklink:
		return ast.WalkSkipChildren, nil

	case *east.Footnote:
		if entering {
			w.footnoteLabel = fmt.Sprintf("[%d] ", n.Index)
		}

	// --- Table ---
	case *east.Table:
		if entering {
			w.tableRows = nil
		} else {
			err = w.onEndTable()
		}

	case *east.TableHeader, *east.TableRow:
		if entering {
			w.currentRow = make([]string, 0)
		} else {
			w.tableRows = append(w.tableRows, w.currentRow)
			w.currentRow = nil
		}

	case *east.TableCell:
		if entering {
			w.cellParts = make([]string, 0)
			w.inTableCell = true
		} else {
			w.currentRow = append(w.currentRow, strings.Join(w.cellParts, ""))
			w.cellParts = nil
			w.inTableCell = false
		}
	}

	if err != nil {
		return ast.WalkStop, err
	}
	return ast.WalkContinue, nil
}

// Result 返回转换结果
func (w *EventWalker) Result() *types.Document {
	doc := &types.Document{Text: w.buf.Runes(), Spans: w.spans}
	n := doc.Len()
	for n > 0 && doc.Text[n-1] == '\n' {
		n--
	}
	doc.Truncate(n)
	return doc
}

// --- Text handling ---

func (w *EventWalker) onText(seg text.Segment, softBreak bool, hardBreak bool) {
	textContent := string(seg.Value(w.source))

	// A soft break is a space in the flat buffer; newlines separate paragraphs.
	if softBreak {
		textContent += " "
	}
	if w.inTableCell {
		w.cellParts = append(w.cellParts, textContent)
		return
	}
	w.write(textContent)
	if hardBreak {
		w.buf.WriteRune('\n')
	}
}

func (w *EventWalker) write(s string) {
	if w.inTableCell {
		w.cellParts = append(w.cellParts, s)
		return
	}
	if w.trimLeading {
		s = strings.TrimLeft(s, " ")
		if s == "" {
			return
		}
		w.trimLeading = false
	}
	w.buf.Write(s)
}

func (w *EventWalker) onInlineCode(n *ast.CodeSpan) error {
	code := extractCodeSpanText(n, w.source)
	if w.inTableCell {
		w.cellParts = append(w.cellParts, code)
		return nil
	}
	start := w.buf.Len()
	w.write(code)
	return w.attach(types.KindInlineCode, start, w.buf.Len(), types.Payload{})
}

// htmlInline maps inline HTML tags allowed in Markdown to span kinds.
var htmlInline = map[string]types.Kind{
	"b":       types.KindBold,
	"strong":  types.KindBold,
	"i":       types.KindItalic,
	"em":      types.KindItalic,
	"u":       types.KindUnderline,
	"ins":     types.KindUnderline,
	"s":       types.KindStrikethrough,
	"strike":  types.KindStrikethrough,
	"del":     types.KindStrikethrough,
	"code":    types.KindInlineCode,
	"mark":    types.KindBackgroundColor,
	"mention": types.KindMention,
}

// highlightColor is the background color of <mark>.
const highlightColor = "#ffff00"

func (w *EventWalker) onInlineHTML(n *ast.RawHTML) error {
	events, err := tokenizer.FromString(string(n.Segments.Value(w.source))).All()
	if err != nil {
		return err
	}
	for _, ev := range events {
		kind, ok := htmlInline[ev.Name]
		if !ok {
			// Other inline HTML is ignored
			continue
		}
		switch ev.Type {
		case tokenizer.StartTag:
			var payload types.Payload
			switch kind {
			case types.KindBackgroundColor:
				payload.Color = highlightColor
			case types.KindMention:
				payload.Text, _ = ev.Attr("text")
				payload.Indicator, _ = ev.Attr("indicator")
				for _, attr := range ev.Attrs {
					if attr.Key != "text" && attr.Key != "indicator" {
						payload.Attributes = append(payload.Attributes, attr)
					}
				}
			}
			w.pushEntity(kind, payload)
		case tokenizer.EndTag:
			if err := w.popEntity(kind); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- Paragraph ---

func (w *EventWalker) onStartParagraph() {
	w.buf.EnsureTrailingNewlines(1)
	w.paragraphStart = append(w.paragraphStart, w.buf.Len())
	if w.footnoteLabel != "" {
		w.buf.Write(w.footnoteLabel)
		w.footnoteLabel = ""
	}
}

func (w *EventWalker) onEndParagraph() error {
	start := w.paragraphStart[len(w.paragraphStart)-1]
	w.paragraphStart = w.paragraphStart[:len(w.paragraphStart)-1]
	if len(w.itemStack) > 0 {
		// 列表项中的段落不单独生成段落 span
		w.buf.EnsureTrailingNewlines(1)
		return nil
	}
	return w.closeBlock(types.KindParagraph, start, types.Payload{})
}

// --- Heading ---

func (w *EventWalker) onStartHeading() {
	w.buf.EnsureTrailingNewlines(1)
	w.paragraphStart = append(w.paragraphStart, w.buf.Len())
}

func (w *EventWalker) onEndHeading(n *ast.Heading) error {
	start := w.paragraphStart[len(w.paragraphStart)-1]
	w.paragraphStart = w.paragraphStart[:len(w.paragraphStart)-1]
	kind, err := types.HeadingKind(n.Level)
	if err != nil {
		return err
	}
	return w.closeBlock(kind, start, types.Payload{})
}

// --- Code block ---

func (w *EventWalker) onCodeBlock(n ast.Node) error {
	var parts []string
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		parts = append(parts, string(line.Value(w.source)))
	}
	rawCode := strings.TrimSuffix(strings.Join(parts, ""), "\n")
	return w.writeCodeBlock(rawCode)
}

func (w *EventWalker) writeCodeBlock(code string) error {
	w.buf.EnsureTrailingNewlines(1)
	start := w.buf.Len()
	w.buf.Write(code)
	return w.closeBlock(types.KindCodeBlock, start, types.Payload{})
}

// --- Links & Images ---

func (w *EventWalker) onStartLink(n *ast.Link) {
	// Empty URL links are rendered as plain text (no span); the zero-length
	// check in attach drops the popped scope's range if it never had text.
	w.pushEntity(types.KindLink, types.Payload{URL: string(n.Destination)})
}

func (w *EventWalker) onImage(n *ast.Image) error {
	src := string(n.Destination)
	payload := types.Payload{Source: src}
	if r := w.config.ImageResolver; r != nil {
		width, height, err := r.Resolve(src)
		if err != nil {
			w.config.Logf("image %q: %v", src, err)
		} else {
			payload.Width, payload.Height = width, height
		}
	}
	if w.inTableCell {
		return nil
	}
	w.trimLeading = false
	start := w.buf.Len()
	w.buf.WriteRune(types.ORC)
	return w.attach(types.KindImage, start, start+1, payload)
}

// --- Lists ---

func (w *EventWalker) onStartList(n *ast.List) {
	// 嵌套列表：父项在子列表开始前结束
	if len(w.itemStack) > 0 {
		top := &w.itemStack[len(w.itemStack)-1]
		if !top.closed {
			_ = w.closeItem(top)
		}
	}
	w.buf.EnsureTrailingNewlines(1)
	w.listStack = append(w.listStack, listFrame{ordered: n.IsOrdered(), next: n.Start})
}

func (w *EventWalker) onEndList() {
	if len(w.listStack) > 0 {
		w.listStack = w.listStack[:len(w.listStack)-1]
	}
}

func (w *EventWalker) onStartItem() {
	w.buf.EnsureTrailingNewlines(1)
	item := itemScope{kind: types.KindUnorderedList, start: w.buf.Len()}
	if len(w.listStack) > 0 {
		frame := &w.listStack[len(w.listStack)-1]
		if frame.ordered {
			item.kind = types.KindOrderedList
			item.payload.Index = frame.next
			frame.next++
		}
	}
	w.itemStack = append(w.itemStack, item)
}

func (w *EventWalker) onEndItem() error {
	top := w.itemStack[len(w.itemStack)-1]
	w.itemStack = w.itemStack[:len(w.itemStack)-1]
	if top.closed {
		return nil
	}
	return w.closeItem(&top)
}

func (w *EventWalker) closeItem(item *itemScope) error {
	item.closed = true
	return w.closeBlock(item.kind, item.start, item.payload)
}

// onTaskCheckBox 将当前列表项改为复选框列表项
func (w *EventWalker) onTaskCheckBox(checked bool) {
	if len(w.itemStack) == 0 || !w.config.CheckboxLists {
		return
	}
	top := &w.itemStack[len(w.itemStack)-1]
	top.kind = types.KindCheckboxList
	top.payload = types.Payload{Checked: checked}
	w.trimLeading = true
}

// --- Tables ---

// onEndTable writes the table as aligned plain text inside a code block.
func (w *EventWalker) onEndTable() error {
	tableText := w.formatTable(w.tableRows)
	w.tableRows = nil
	if tableText == "" {
		return nil
	}
	return w.writeCodeBlock(tableText)
}

func (w *EventWalker) formatTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	// Compute column widths
	numCols := 0
	for _, row := range rows {
		if len(row) > numCols {
			numCols = len(row)
		}
	}

	colWidths := make([]int, numCols)
	for _, row := range rows {
		for i, cell := range row {
			if n := len([]rune(cell)); n > colWidths[i] {
				colWidths[i] = n
			}
		}
	}

	var lines []string
	for rowIdx, row := range rows {
		cells := make([]string, numCols)
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			// Left-justify
			cells[i] = cell + strings.Repeat(" ", colWidths[i]-len([]rune(cell)))
		}
		lines = append(lines, strings.TrimRight(strings.Join(cells, " | "), " "))

		// Add separator after header
		if rowIdx == 0 && len(rows) > 1 {
			sepCells := make([]string, numCols)
			for i := 0; i < numCols; i++ {
				sepCells[i] = strings.Repeat("-", colWidths[i])
			}
			lines = append(lines, strings.Join(sepCells, "-+-"))
		}
	}

	return strings.Join(lines, "\n")
}

// --- Span helpers ---

func (w *EventWalker) pushEntity(kind types.Kind, payload types.Payload) {
	w.entityStack = append(w.entityStack, scope{
		kind:    kind,
		start:   w.buf.Len(),
		payload: payload,
	})
}

func (w *EventWalker) popEntity(kind types.Kind) error {
	// Find the matching scope (search from top)
	for i := len(w.entityStack) - 1; i >= 0; i-- {
		if w.entityStack[i].kind == kind {
			s := w.entityStack[i]
			w.entityStack = append(w.entityStack[:i], w.entityStack[i+1:]...)
			if kind == types.KindLink && s.payload.URL == "" {
				return nil
			}
			if kind == types.KindMention && s.payload.Text == "" {
				return nil
			}
			return w.attach(kind, s.start, w.buf.Len(), s.payload)
		}
	}
	return nil
}

// closeBlock attaches a paragraph or block span from start to the end of
// the buffer, excluding trailing newlines. An element without text gets the
// zero-width placeholder.
func (w *EventWalker) closeBlock(kind types.Kind, start int, payload types.Payload) error {
	end := w.buf.Len()
	for end > start && w.buf.At(end-1) == '\n' {
		end--
	}
	if end <= start {
		start = w.buf.Len()
		w.buf.WriteRune(types.ZWS)
		end = start + 1
	}
	w.trimLeading = false
	if err := w.attach(kind, start, end, payload); err != nil {
		return err
	}
	w.buf.EnsureTrailingNewlines(1)
	return nil
}

func (w *EventWalker) attach(kind types.Kind, start, end int, payload types.Payload) error {
	if end <= start {
		return nil
	}
	span, err := types.NewSpan(w.config, kind, start, end, payload)
	if err != nil {
		return err
	}
	w.spans = append(w.spans, span)
	return nil
}

// --- Utilities ---

func extractCodeSpanText(n *ast.CodeSpan, source []byte) string {
	var buf strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			_, _ = buf.Write(t.Segment.Value(source))
		case *ast.String:
			_, _ = buf.Write(t.Value)
		}
	}
	return buf.String()
}
