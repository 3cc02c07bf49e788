// Package enriched 在 HTML 风格的富文本标记与扁平的 span 文档之间双向转换
//
// 文档由一段纯文本缓冲区和若干 span 组成，每个 span 以半开区间 [Start, End)
// 标注一种样式（粗体、链接、提及、图片）或结构（段落、标题、列表项、引用、代码块）。
//
// 核心功能：
//   - Parse(): 将标记解析为 span 文档
//   - Serialize(): 将 span 文档序列化回标记
//   - FromMarkdown(): 将 Markdown 导入为 span 文档
//   - SplitDocument(): 按 UTF-16 长度在换行处拆分文档
//
// 示例：
//
//	doc, err := enriched.Parse("<p>Hello <b>world</b></p>")
//	if err != nil {
//	    return err
//	}
//	// doc.String() == "Hello world"
//	markup, err := enriched.Serialize(doc)
//	// markup == "<html>\n<p>Hello <b>world</b></p>\n</html>"
//
// 宿主可以通过 WithSpanFactory 为每个 span 构造自己的对象，
// 通过 WithImageResolver 为缺少宽高的图片补全尺寸。
package enriched
