package schema

import (
	"strings"

	"github.com/mark3labs/openapi2md/internal/spec"
)

const labelSep = " | "

// Render turns a node into its label and rendered body. The label joins name
// and description with " | " and drops empty parts, so an anonymous node
// without description has an empty label.
//
// For allOf the label is name followed by each member's label, and the body
// is the members' objects merged in order; a later member overwrites an
// earlier key in place.
func Render(name string, n Node) (string, Rendered) {
	switch node := n.(type) {
	case *AllOf:
		parts := []string{name}
		merged := NewMap()
		for _, member := range node.Members {
			l, body := Render("", member)
			parts = append(parts, l)
			if obj, ok := body.(*Map); ok {
				for _, k := range obj.Keys() {
					v, _ := obj.Get(k)
					merged.Set(k, v)
				}
			}
		}
		return joinLabel(parts...), merged
	case *Object:
		return joinLabel(name, node.Description), RenderFields(node.Properties)
	case *Array:
		_, item := Render("", node.Items)
		return joinLabel(name, node.Description), List{item}
	case *Scalar:
		text := node.Type
		if node.Enum != nil {
			text += labelSep + EnumLiteral(node.Enum)
		}
		return joinLabel(name, node.Description), String(text)
	default:
		return name, String("")
	}
}

// RenderFields renders properties into a map keyed by property label, in
// property order.
func RenderFields(fields []Property) *Map {
	out := NewMap()
	for _, f := range fields {
		label, body := Render(f.Name, f.Schema)
		out.Set(label, body)
	}
	return out
}

// RenderProperties parses and renders a properties mapping in one step.
func RenderProperties(props *spec.Value) (*Map, error) {
	fields, err := ParseProperties(props)
	if err != nil {
		return nil, err
	}
	return RenderFields(fields), nil
}

// RenderSchema parses and renders a single Schema Object without a name.
func RenderSchema(v *spec.Value) (string, Rendered, error) {
	n, err := Parse(v)
	if err != nil {
		return "", nil, err
	}
	label, body := Render("", n)
	return label, body, nil
}

func joinLabel(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, labelSep)
}
