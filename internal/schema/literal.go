package schema

import (
	"strings"

	"github.com/mark3labs/openapi2md/internal/spec"
)

// EnumLiteral prints enum values as a list literal, e.g. ['ok', 'failed'].
// Strings are single-quoted (double-quoted when they contain a single quote
// and no double quote); other scalars print bare, null as null.
func EnumLiteral(values []*spec.Value) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, literal(v))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func literal(v *spec.Value) string {
	if s, ok := v.String(); ok {
		return quoteLiteral(s)
	}
	return v.Text()
}

func quoteLiteral(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
