package enriched

import (
	"io"
	"net/http"

	"github.com/riverfjs/enriched-go/internal/converter"
	"github.com/riverfjs/enriched-go/internal/imagemeta"
	"github.com/riverfjs/enriched-go/internal/parser"
	"github.com/riverfjs/enriched-go/internal/serializer"
	"github.com/riverfjs/enriched-go/internal/tokenizer"
	"github.com/riverfjs/enriched-go/internal/util"
)

// Parse 将标记文本解析为 span 文档
//
// 参数:
//   - markup: 标记文本
//   - opts: 转换选项
//
// 返回:
//   - *Document: 文本缓冲区和 span
//   - error: 图片尺寸非法、标题级别不支持或图片解析失败时返回
func Parse(markup string, opts ...Option) (*Document, error) {
	return parser.Parse(markup, applyOptions(opts...))
}

// ParseReader is Parse over a reader.
func ParseReader(r io.Reader, opts ...Option) (*Document, error) {
	return parser.ParseEvents(tokenizer.New(r), applyOptions(opts...))
}

// Serialize 将 span 文档序列化为标记文本
//
// 空文档序列化为 "<html>\n<p></p>\n</html>"。区间非法的 span 返回
// *ValidationError，可用 errors.Is(err, ErrInvalidSpan) 判断。
func Serialize(doc *Document, opts ...Option) (string, error) {
	return serializer.Serialize(doc, applyOptions(opts...))
}

// FromMarkdown 将 Markdown 导入为 span 文档
//
// 支持 GFM（表格、删除线、任务列表）、定义列表和脚注。表格转为代码块，
// ++text++ 转为下划线，==text== 转为高亮背景色。
func FromMarkdown(markdown string, opts ...Option) (*Document, error) {
	return converter.FromMarkdown(markdown, applyOptions(opts...))
}

// EscapeHTML returns text escaped the way Serialize escapes document text.
func EscapeHTML(text string) string {
	return util.Escape(text)
}

// NewImageResolver returns an ImageResolver that reads image headers from
// local paths (relative to baseDir), file:// and data: URIs, and http(s)
// URLs fetched with client. A nil client uses a client with a 10s timeout.
func NewImageResolver(baseDir string, client *http.Client) ImageResolver {
	opts := []imagemeta.Option{imagemeta.WithBaseDir(baseDir)}
	if client != nil {
		opts = append(opts, imagemeta.WithHTTPClient(client))
	}
	return imagemeta.New(opts...)
}
