// Package tokenizer turns markup into a flat stream of start tag, end tag,
// characters and end-of-document events.
//
// It sits on the lenient tokenizer from golang.org/x/net/html: tag names are
// lower-cased, entities are decoded, comments and doctypes are dropped. Void
// elements (<br>, <img>) and self-closing tags are reported as a start tag
// immediately followed by an end tag, so consumers can treat every element
// the same way.
package tokenizer

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
	a "golang.org/x/net/html/atom"

	"github.com/riverfjs/enriched-go/internal/types"
)

// EventType is the kind of a tokenizer event.
type EventType int

const (
	StartTag EventType = iota
	EndTag
	Characters
	EndOfDocument
)

func (t EventType) String() string {
	switch t {
	case StartTag:
		return "start"
	case EndTag:
		return "end"
	case Characters:
		return "characters"
	case EndOfDocument:
		return "eof"
	default:
		return "unknown"
	}
}

// Event is a single tokenizer event.
type Event struct {
	Type  EventType
	Name  string
	Attrs []types.Attr
	Text  string
}

// Attr returns the value of the named attribute and whether it is present.
func (e Event) Attr(key string) (string, bool) {
	for _, attr := range e.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Tokenizer produces events from markup.
type Tokenizer struct {
	z       *html.Tokenizer
	pending []Event
	done    bool
}

// New creates a tokenizer reading from r.
func New(r io.Reader) *Tokenizer {
	return &Tokenizer{z: html.NewTokenizer(r)}
}

// FromString creates a tokenizer over markup.
func FromString(markup string) *Tokenizer {
	return New(strings.NewReader(markup))
}

// Next returns the next event. After the input is exhausted it keeps
// returning EndOfDocument.
func (t *Tokenizer) Next() (Event, error) {
	for {
		if len(t.pending) > 0 {
			ev := t.pending[0]
			t.pending = t.pending[1:]
			return ev, nil
		}
		if t.done {
			return Event{Type: EndOfDocument}, nil
		}

		tt := t.z.Next()
		switch tt {
		case html.ErrorToken:
			if err := t.z.Err(); !errors.Is(err, io.EOF) {
				return Event{}, err
			}
			t.done = true

		case html.TextToken:
			return Event{Type: Characters, Text: string(t.z.Text())}, nil

		case html.StartTagToken:
			tok := t.z.Token()
			start := Event{Type: StartTag, Name: tok.Data, Attrs: convertAttrs(tok.Attr)}
			if isVoid(tok.DataAtom) {
				t.pending = append(t.pending, Event{Type: EndTag, Name: tok.Data})
			}
			return start, nil

		case html.SelfClosingTagToken:
			tok := t.z.Token()
			t.pending = append(t.pending, Event{Type: EndTag, Name: tok.Data})
			return Event{Type: StartTag, Name: tok.Data, Attrs: convertAttrs(tok.Attr)}, nil

		case html.EndTagToken:
			tok := t.z.Token()
			return Event{Type: EndTag, Name: tok.Data}, nil

		default:
			// comments and doctypes
		}
	}
}

// All drains the tokenizer, EndOfDocument included.
func (t *Tokenizer) All() ([]Event, error) {
	var events []Event
	for {
		ev, err := t.Next()
		if err != nil {
			return events, err
		}
		events = append(events, ev)
		if ev.Type == EndOfDocument {
			return events, nil
		}
	}
}

func isVoid(atom a.Atom) bool {
	return atom == a.Br || atom == a.Img
}

func convertAttrs(attrs []html.Attribute) []types.Attr {
	if len(attrs) == 0 {
		return nil
	}
	result := make([]types.Attr, 0, len(attrs))
	for _, attr := range attrs {
		if attr.Namespace != "" {
			continue
		}
		result = append(result, types.Attr{Key: attr.Key, Val: attr.Val})
	}
	return result
}
