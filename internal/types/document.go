package types

import (
	"fmt"
	"sort"
)

// Document is a flat text buffer annotated with spans.
type Document struct {
	Text  []rune `json:"text"`
	Spans []Span `json:"spans"`
}

// NewDocument creates a document over text with no spans.
func NewDocument(text string) *Document {
	return &Document{Text: []rune(text)}
}

// Len returns the buffer length in runes.
func (d *Document) Len() int {
	return len(d.Text)
}

// String returns the buffer as a string.
func (d *Document) String() string {
	return string(d.Text)
}

// AddSpan appends a span.
func (d *Document) AddSpan(s Span) {
	d.Spans = append(d.Spans, s)
}

// ValidationError describes a span that breaks the range invariant.
type ValidationError struct {
	Index  int
	Span   Span
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("span %d %v: %s", e.Index, e.Span, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidSpan
}

// Validate checks 0 <= start <= end <= len for every span and that every
// kind is known.
func (d *Document) Validate() error {
	n := len(d.Text)
	for i, s := range d.Spans {
		var reason string
		switch {
		case !s.Kind.Valid():
			reason = "unknown kind"
		case s.Start < 0:
			reason = "negative start"
		case s.Start > s.End:
			reason = "start after end"
		case s.End > n:
			reason = fmt.Sprintf("end beyond buffer length %d", n)
		}
		if reason != "" {
			return &ValidationError{Index: i, Span: s, Reason: reason}
		}
	}
	return nil
}

// SpansIn returns the spans of category c overlapping [start, end), in
// insertion order.
func (d *Document) SpansIn(c Category, start, end int) []Span {
	var result []Span
	for _, s := range d.Spans {
		if s.Kind.Category() == c && s.Overlaps(start, end) {
			result = append(result, s)
		}
	}
	return result
}

// NextTransition returns the first offset in (start, limit] where a span of
// category c begins or ends, or limit if there is none.
func (d *Document) NextTransition(start, limit int, c Category) int {
	next := limit
	for _, s := range d.Spans {
		if s.Kind.Category() != c {
			continue
		}
		if s.Start > start && s.Start < next {
			next = s.Start
		}
		if s.End > start && s.End < next {
			next = s.End
		}
	}
	return next
}

// IndexRune returns the first index of r in [start, end), or -1.
func (d *Document) IndexRune(r rune, start, end int) int {
	for i := start; i < end && i < len(d.Text); i++ {
		if d.Text[i] == r {
			return i
		}
	}
	return -1
}

// InsertRune inserts r at pos. Spans starting at or after pos move right;
// spans running across pos grow by one.
func (d *Document) InsertRune(pos int, r rune) {
	d.Text = append(d.Text, 0)
	copy(d.Text[pos+1:], d.Text[pos:])
	d.Text[pos] = r
	for i := range d.Spans {
		s := &d.Spans[i]
		if s.Start >= pos {
			s.Start++
		}
		if s.End > pos {
			s.End++
		}
	}
}

// Truncate cuts the buffer to n runes, clipping spans and dropping the ones
// left empty.
func (d *Document) Truncate(n int) {
	if n >= len(d.Text) {
		return
	}
	d.Text = d.Text[:n]
	kept := d.Spans[:0]
	for _, s := range d.Spans {
		if s.End > n {
			s.End = n
		}
		if s.Start < s.End {
			kept = append(kept, s)
		}
	}
	d.Spans = kept
}

// Slice 提取 [start, end) 子文档，跨越边界的 span 会被裁剪
func (d *Document) Slice(start, end int) *Document {
	start = max(start, 0)
	end = min(end, len(d.Text))
	if start >= end {
		return &Document{}
	}
	out := &Document{Text: append([]rune(nil), d.Text[start:end]...)}
	for _, s := range d.Spans {
		if !s.Overlaps(start, end) {
			continue
		}
		s.Start = max(s.Start, start) - start
		s.End = min(s.End, end) - start
		out.Spans = append(out.Spans, s)
	}
	return out
}

// SortSpans orders spans by start offset, longer spans first, keeping the
// insertion order for ties.
func (d *Document) SortSpans() {
	sort.SliceStable(d.Spans, func(i, j int) bool {
		a, b := d.Spans[i], d.Spans[j]
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.End > b.End
	})
}

// UTF16Span is a span expressed in UTF-16 code units.
type UTF16Span struct {
	Offset int
	Length int
	Span   Span
}

// UTF16Spans converts span offsets to UTF-16 code units.
//
// Hosts backed by UTF-16 strings (Android, iOS, JavaScript) index text this
// way: characters outside the BMP take two code units.
func (d *Document) UTF16Spans() []UTF16Span {
	offsets := make([]int, len(d.Text)+1)
	cum := 0
	for i, r := range d.Text {
		offsets[i] = cum
		if r > 0xFFFF {
			cum += 2
		} else {
			cum++
		}
	}
	offsets[len(d.Text)] = cum

	result := make([]UTF16Span, 0, len(d.Spans))
	for _, s := range d.Spans {
		if s.Start < 0 || s.End > len(d.Text) || s.Start > s.End {
			continue
		}
		result = append(result, UTF16Span{
			Offset: offsets[s.Start],
			Length: offsets[s.End] - offsets[s.Start],
			Span:   s,
		})
	}
	return result
}
