// Package converter imports Markdown into the span document model.
package converter

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/riverfjs/enriched-go/internal/types"
)

// StandardOptions goldmark 扩展配置
var StandardOptions = []goldmark.Option{
	goldmark.WithExtensions(
		extension.GFM,            // GitHub Flavored Markdown (tables, strikethrough, tasklists)
		extension.DefinitionList, // 定义列表
		extension.Footnote,       // 脚注
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(), // 自动生成标题 ID
	),
}

// FromMarkdown 解析 Markdown 并遍历 AST 生成 span 文档
func FromMarkdown(markdown string, config *types.Config) (*types.Document, error) {
	if config == nil {
		config = types.DefaultConfig()
	}
	source := []byte(PreprocessDelimiters(markdown))
	node := parseSource(source)

	walker := NewEventWalker(source, config)
	err := ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		return walker.Walk(n, entering)
	})
	if err != nil {
		return nil, err
	}
	return walker.Result(), nil
}

// ParseAST 仅解析为 AST，不遍历
func ParseAST(markdown string) ast.Node {
	return parseSource([]byte(markdown))
}

func parseSource(source []byte) ast.Node {
	md := goldmark.New(StandardOptions...)
	return md.Parser().Parse(text.NewReader(source))
}
