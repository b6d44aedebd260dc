package schema

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Rendered is the printable form of a schema: String, List or *Map.
type Rendered interface {
	isRendered()
}

// String is a leaf such as "string" or "string | ['ok', 'failed']".
type String string

// List is the body of an array schema. The renderer always produces one item.
type List []Rendered

// Map maps labels to rendered bodies and keeps insertion order.
type Map struct {
	pairs *orderedmap.OrderedMap[string, Rendered]
}

func (String) isRendered() {}
func (List) isRendered()   {}
func (*Map) isRendered()   {}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{pairs: orderedmap.New[string, Rendered]()}
}

// Set stores v under k. An existing key keeps its position.
func (m *Map) Set(k string, v Rendered) {
	m.pairs.Set(k, v)
}

func (m *Map) Get(k string) (Rendered, bool) {
	return m.pairs.Get(k)
}

func (m *Map) Keys() []string {
	keys := make([]string, 0, m.pairs.Len())
	for p := m.pairs.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

func (m *Map) Len() int {
	if m == nil || m.pairs == nil {
		return 0
	}
	return m.pairs.Len()
}

// Pretty prints r as indented JSON (two spaces), keeping key order and leaving
// non-ASCII text and HTML characters unescaped.
func Pretty(r Rendered) string {
	var b strings.Builder
	write(&b, r, "  ", 0)
	return b.String()
}

// Compact prints r on one line, with ", " and ": " separators.
func Compact(r Rendered) string {
	var b strings.Builder
	write(&b, r, "", 0)
	return b.String()
}

func write(b *strings.Builder, r Rendered, indent string, depth int) {
	switch v := r.(type) {
	case String:
		b.WriteString(Quote(string(v)))
	case List:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteByte('[')
		for i, item := range v {
			separate(b, i, indent, depth+1)
			write(b, item, indent, depth+1)
		}
		closing(b, indent, depth)
		b.WriteByte(']')
	case *Map:
		if v.Len() == 0 {
			b.WriteString("{}")
			return
		}
		b.WriteByte('{')
		i := 0
		for p := v.pairs.Oldest(); p != nil; p = p.Next() {
			separate(b, i, indent, depth+1)
			b.WriteString(Quote(p.Key))
			b.WriteString(": ")
			write(b, p.Value, indent, depth+1)
			i++
		}
		closing(b, indent, depth)
		b.WriteByte('}')
	default:
		b.WriteString("null")
	}
}

func separate(b *strings.Builder, i int, indent string, depth int) {
	if indent == "" {
		if i > 0 {
			b.WriteString(", ")
		}
		return
	}
	if i > 0 {
		b.WriteByte(',')
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indent, depth))
}

func closing(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indent, depth))
}

// Quote returns s as a JSON string literal. HTML characters and the line and
// paragraph separators U+2028/U+2029 are written as is; only quotes,
// backslashes and control characters are escaped.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for {
		i := strings.IndexAny(s, "\u2028\u2029")
		if i < 0 {
			b.WriteString(quoteBody(s))
			break
		}
		b.WriteString(quoteBody(s[:i]))
		r, size := utf8.DecodeRuneInString(s[i:])
		b.WriteRune(r)
		s = s[i+size:]
	}
	b.WriteByte('"')
	return b.String()
}

// quoteBody encodes s with encoding/json and strips the surrounding quotes.
func quoteBody(s string) string {
	if s == "" {
		return ""
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return ""
	}
	out := strings.TrimSuffix(buf.String(), "\n")
	return out[1 : len(out)-1]
}
