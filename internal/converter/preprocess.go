package converter

import (
	"regexp"
	"strings"
)

var (
	// codeRegionRe 匹配代码块和行内代码
	codeRegionRe = regexp.MustCompile("(```[\\s\\S]*?```|`[^`\\n]+`)")
)

// delimiter is an inline marker that Markdown lacks and is rewritten to
// inline HTML before parsing.
type delimiter struct {
	marker string
	open   string
	close  string
}

var delimiters = []delimiter{
	{marker: "++", open: "<u>", close: "</u>"},
	{marker: "==", open: "<mark>", close: "</mark>"},
}

// PreprocessDelimiters 将 ++underline++ 替换为 <u>，==highlight== 替换为 <mark>
// 跳过代码块和行内代码中的内容
func PreprocessDelimiters(text string) string {
	parts := codeRegionRe.Split(text, -1)
	matches := codeRegionRe.FindAllString(text, -1)

	var result strings.Builder
	for i, part := range parts {
		// 非代码区域，进行替换
		for _, d := range delimiters {
			part = replaceDelimited(part, d)
		}
		result.WriteString(part)

		// 添加回代码区域
		if i < len(matches) {
			result.WriteString(matches[i])
		}
	}

	return result.String()
}

// replaceDelimited 将成对的分隔符替换为标签，未闭合的分隔符保持原样
func replaceDelimited(text string, d delimiter) string {
	// 使用状态机手动处理，避免转义字符问题
	var result strings.Builder
	i := 0
	open := -1

	for i < len(text) {
		// 整行只有分隔符字符（如 setext 标题下划线）时原样保留
		if i == 0 || text[i-1] == '\n' {
			line, _, _ := strings.Cut(text[i:], "\n")
			if isRuleLine(line, d.marker[0]) {
				result.WriteString(line)
				i += len(line)
				continue
			}
		}

		// 检查是否是转义的分隔符
		if text[i] == '\\' && strings.HasPrefix(text[i+1:], d.marker) {
			result.WriteString(text[i : i+1+len(d.marker)])
			i += 1 + len(d.marker)
			continue
		}

		if strings.HasPrefix(text[i:], d.marker) {
			if open >= 0 {
				result.WriteString(d.close)
				open = -1
			} else {
				open = result.Len()
				result.WriteString(d.open)
			}
			i += len(d.marker)
			continue
		}

		// 分隔符不跨段落
		if text[i] == '\n' && i+1 < len(text) && text[i+1] == '\n' && open >= 0 {
			out := result.String()
			result.Reset()
			result.WriteString(out[:open] + d.marker + out[open+len(d.open):])
			open = -1
		}
		result.WriteByte(text[i])
		i++
	}

	if open >= 0 {
		out := result.String()
		return out[:open] + d.marker + out[open+len(d.open):]
	}
	return result.String()
}

// isRuleLine reports whether line is made only of c and spaces.
func isRuleLine(line string, c byte) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed != "" && strings.Trim(trimmed, string(c)) == ""
}
