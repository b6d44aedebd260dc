// Package schema turns JSON Schema fragments of an OpenAPI document into the
// nested, human-readable structure printed in the generated markdown.
//
// Parsing and rendering are separate steps: Parse checks the shape of a
// Schema Object once and produces a Node (Scalar, Object, Array or AllOf);
// Render walks a Node and cannot fail.
package schema

import (
	"errors"
	"fmt"

	"github.com/mark3labs/openapi2md/internal/spec"
)

var (
	// ErrInvalidSchema is the parent of every schema shape error.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrMissingType is returned for a schema with neither "type" nor "allOf".
	ErrMissingType = fmt.Errorf("%w: missing type", ErrInvalidSchema)
	// ErrMissingItems is returned for an array schema without "items".
	ErrMissingItems = fmt.Errorf("%w: array without items", ErrInvalidSchema)
	// ErrAllOfMember is returned when an allOf member does not describe an object.
	ErrAllOfMember = fmt.Errorf("%w: allOf member is not an object", ErrInvalidSchema)
)

// Node is a validated Schema Object: one of *Scalar, *Object, *Array, *AllOf.
type Node interface {
	isNode()
}

// Scalar is any type other than object and array.
type Scalar struct {
	Type        string
	Description string
	// Enum is nil when the schema has no enum.
	Enum []*spec.Value
}

// Object is a schema of type object. Properties keep document order.
type Object struct {
	Description string
	Properties  []Property
}

// Property is a named member of Object.Properties.
type Property struct {
	Name   string
	Schema Node
}

// Array is a schema of type array.
type Array struct {
	Description string
	Items       Node
}

// AllOf composes object-like members. Its own description is not shown; the
// labels of the members are.
type AllOf struct {
	Members []Node
}

func (*Scalar) isNode() {}
func (*Object) isNode() {}
func (*Array) isNode()  {}
func (*AllOf) isNode()  {}

// Parse validates a Schema Object and assigns its shape. allOf takes
// precedence over type.
func Parse(v *spec.Value) (Node, error) {
	return parse(v, "")
}

// ParseProperties parses a properties mapping (name → Schema Object).
func ParseProperties(props *spec.Value) ([]Property, error) {
	return parseProperties(props, "")
}

func parse(v *spec.Value, path string) (Node, error) {
	if !v.IsMapping() {
		return nil, schemaError(path, fmt.Errorf("%w: expected a mapping, got %s", ErrInvalidSchema, v.Kind()))
	}

	if raw, ok := v.Get("allOf"); ok {
		if !raw.IsSequence() {
			return nil, schemaError(path, fmt.Errorf("%w: allOf is a %s, not a list", ErrInvalidSchema, raw.Kind()))
		}
		all := &AllOf{Members: make([]Node, 0, raw.Len())}
		for i, item := range raw.Items() {
			member, err := parse(item, fmt.Sprintf("%s/allOf/%d", path, i))
			if err != nil {
				return nil, err
			}
			switch member.(type) {
			case *Object, *AllOf:
			default:
				return nil, schemaError(fmt.Sprintf("%s/allOf/%d", path, i), ErrAllOfMember)
			}
			all.Members = append(all.Members, member)
		}
		return all, nil
	}

	typeVal, ok := v.Get("type")
	if !ok {
		return nil, schemaError(path, ErrMissingType)
	}
	typ, ok := typeVal.String()
	if !ok {
		return nil, schemaError(path, fmt.Errorf("%w: type is not a string", ErrInvalidSchema))
	}
	desc := description(v)

	switch typ {
	case "object":
		obj := &Object{Description: desc}
		if props, ok := v.Get("properties"); ok && props.Kind() != spec.NullKind {
			fields, err := parseProperties(props, path+"/properties")
			if err != nil {
				return nil, err
			}
			obj.Properties = fields
		}
		return obj, nil
	case "array":
		items, ok := v.Get("items")
		if !ok {
			return nil, schemaError(path, ErrMissingItems)
		}
		item, err := parse(items, path+"/items")
		if err != nil {
			return nil, err
		}
		return &Array{Description: desc, Items: item}, nil
	default:
		s := &Scalar{Type: typ, Description: desc}
		if enum, ok := v.Get("enum"); ok {
			s.Enum = append(make([]*spec.Value, 0, enum.Len()), enum.Items()...)
		}
		return s, nil
	}
}

func parseProperties(props *spec.Value, path string) ([]Property, error) {
	if !props.IsMapping() {
		return nil, schemaError(path, fmt.Errorf("%w: properties is a %s, not a mapping", ErrInvalidSchema, props.Kind()))
	}
	keys := props.Keys()
	fields := make([]Property, 0, len(keys))
	for _, name := range keys {
		raw, _ := props.Get(name)
		node, err := parse(raw, path+"/"+name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Property{Name: name, Schema: node})
	}
	return fields, nil
}

func description(v *spec.Value) string {
	d, ok := v.Get("description")
	if !ok || d.Kind() == spec.NullKind {
		return ""
	}
	if s, ok := d.String(); ok {
		return s
	}
	return d.Text()
}

func schemaError(path string, err error) error {
	if path == "" {
		return err
	}
	return fmt.Errorf("schema %s: %w", path, err)
}
