package enriched

// UTF16Len returns the length of text measured in UTF-16 code units.
//
// Hosts backed by UTF-16 strings measure text this way: characters outside
// the BMP (codepoint > 0xFFFF) take 2 code units (a surrogate pair); all
// others take 1.
func UTF16Len(text string) int {
	count := 0
	for _, r := range text {
		if r > 0xFFFF {
			count += 2
		} else {
			count++
		}
	}
	return count
}

// CountText 计算文档文本的 UTF-16 长度
func CountText(doc *Document) int {
	if doc == nil {
		return 0
	}
	return UTF16Len(doc.String())
}

// buildUTF16OffsetTable returns, for each rune index i, the UTF-16 offset of
// rune i. The extra last entry is the total length.
func buildUTF16OffsetTable(text []rune) []int {
	offsets := make([]int, len(text)+1)
	cum := 0
	for i, r := range text {
		offsets[i] = cum
		if r > 0xFFFF {
			cum += 2
		} else {
			cum++
		}
	}
	offsets[len(text)] = cum
	return offsets
}

// SplitDocument splits doc into documents not exceeding maxUTF16Len UTF-16
// code units.
//
// Tries to split at newline boundaries. Spans that cross a split boundary
// are clipped into both chunks. Newlines at the edges of a chunk are
// dropped.
func SplitDocument(doc *Document, maxUTF16Len int) []*Document {
	if doc == nil || doc.Len() == 0 {
		return nil
	}
	text := doc.Text
	offsets := buildUTF16OffsetTable(text)
	if offsets[len(text)] <= maxUTF16Len || maxUTF16Len <= 0 {
		return []*Document{doc}
	}

	// Candidate split points: right after each newline
	var splitPoints []int
	for i, r := range text {
		if r == '\n' {
			splitPoints = append(splitPoints, i+1)
		}
	}

	var result []*Document
	start := 0
	for start < len(text) {
		budget := offsets[start] + maxUTF16Len
		end := len(text)

		if offsets[len(text)] > budget {
			// Find the last split point that fits within budget
			end = -1
			for _, sp := range splitPoints {
				if sp <= start {
					continue
				}
				if offsets[sp] > budget {
					break
				}
				end = sp
			}

			if end == -1 {
				// No newline split fits -- hard split at the budget
				end = start
				for end < len(text) && offsets[end+1] <= budget {
					end++
				}
				if end == start {
					end = start + 1 // Force progress
				}
			}
		}

		if chunk := trimNewlines(doc.Slice(start, end)); chunk.Len() > 0 {
			result = append(result, chunk)
		}
		start = end
	}
	return result
}

// trimNewlines strips leading and trailing newlines and shifts spans.
func trimNewlines(doc *Document) *Document {
	return trimFunc(doc, func(r rune) bool { return r == '\n' })
}

// TrimSpace removes leading and trailing whitespace while adjusting spans.
func TrimSpace(doc *Document) *Document {
	return trimFunc(doc, isSpace)
}

func trimFunc(doc *Document, cut func(rune) bool) *Document {
	start, end := 0, doc.Len()
	for start < end && cut(doc.Text[start]) {
		start++
	}
	for end > start && cut(doc.Text[end-1]) {
		end--
	}
	if start == 0 && end == doc.Len() {
		return doc
	}
	return doc.Slice(start, end)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
