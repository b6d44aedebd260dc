package spec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Kind identifies the shape of a Value.
type Kind uint8

const (
	NullKind Kind = iota
	ScalarKind
	SequenceKind
	MappingKind
)

func (k Kind) String() string {
	switch k {
	case NullKind:
		return "null"
	case ScalarKind:
		return "scalar"
	case SequenceKind:
		return "sequence"
	case MappingKind:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is one node of a (resolved) OpenAPI document. Mappings keep the key
// order of the source document, which is what the markdown output follows.
//
// A nil *Value behaves like a null value: lookups on it report a miss.
type Value struct {
	kind   Kind
	scalar any
	items  []*Value
	fields *orderedmap.OrderedMap[string, *Value]
}

// NewScalar wraps a string, bool, integer, float or nil.
func NewScalar(v any) *Value {
	if v == nil {
		return &Value{kind: NullKind}
	}
	return &Value{kind: ScalarKind, scalar: v}
}

// NewSequence builds a sequence from items.
func NewSequence(items ...*Value) *Value {
	return &Value{kind: SequenceKind, items: append([]*Value(nil), items...)}
}

// NewMapping returns an empty ordered mapping.
func NewMapping() *Value {
	return &Value{kind: MappingKind, fields: orderedmap.New[string, *Value]()}
}

// Set stores val under key. A new key is appended; an existing key keeps its
// position. Set returns v so calls can be chained when building fixtures.
func (v *Value) Set(key string, val *Value) *Value {
	if v.kind != MappingKind {
		panic(fmt.Sprintf("spec: Set on %s value", v.kind))
	}
	v.fields.Set(key, val)
	return v
}

func (v *Value) Kind() Kind {
	if v == nil {
		return NullKind
	}
	return v.kind
}

func (v *Value) IsMapping() bool  { return v.Kind() == MappingKind }
func (v *Value) IsSequence() bool { return v.Kind() == SequenceKind }

// Get returns the member stored under key. It reports false when v is not a
// mapping or has no such key.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind() != MappingKind {
		return nil, false
	}
	return v.fields.Get(key)
}

// Lookup follows a chain of mapping keys. Any missing step is a miss.
func (v *Value) Lookup(path ...string) (*Value, bool) {
	cur := v
	for _, key := range path {
		next, ok := cur.Get(key)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Keys returns mapping keys in document order.
func (v *Value) Keys() []string {
	if v.Kind() != MappingKind {
		return nil
	}
	keys := make([]string, 0, v.fields.Len())
	for p := v.fields.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Items returns the elements of a sequence.
func (v *Value) Items() []*Value {
	if v.Kind() != SequenceKind {
		return nil
	}
	return v.items
}

// Len is the number of mapping members or sequence items.
func (v *Value) Len() int {
	switch v.Kind() {
	case MappingKind:
		return v.fields.Len()
	case SequenceKind:
		return len(v.items)
	default:
		return 0
	}
}

// Scalar returns the Go value of a scalar node, nil otherwise.
func (v *Value) Scalar() any {
	if v.Kind() != ScalarKind {
		return nil
	}
	return v.scalar
}

// String returns the scalar when it is a string.
func (v *Value) String() (string, bool) {
	s, ok := v.Scalar().(string)
	return s, ok
}

// Bool returns the scalar when it is a boolean.
func (v *Value) Bool() (bool, bool) {
	b, ok := v.Scalar().(bool)
	return b, ok
}

// Text renders a scalar the way it reads in the source document. Null renders
// as "null"; collections render as compact JSON.
func (v *Value) Text() string {
	switch v.Kind() {
	case NullKind:
		return "null"
	case ScalarKind:
		return scalarText(v.scalar)
	default:
		b, err := v.MarshalJSON()
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func scalarText(s any) string {
	switch val := s.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// MarshalJSON encodes v keeping mapping order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v *Value) writeJSON(buf *bytes.Buffer) error {
	switch v.Kind() {
	case NullKind:
		buf.WriteString("null")
	case ScalarKind:
		b, err := json.Marshal(v.scalar)
		if err != nil {
			return err
		}
		buf.Write(b)
	case SequenceKind:
		buf.WriteByte('[')
		for i, item := range v.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case MappingKind:
		buf.WriteByte('{')
		for p := v.fields.Oldest(); p != nil; p = p.Next() {
			if p != v.fields.Oldest() {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(p.Key)
			if err != nil {
				return err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			if err := p.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	return nil
}

// Parse decodes a YAML or JSON document into a Value without resolving
// references.
func Parse(data []byte) (*Value, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return FromNode(&root)
}

// FromNode converts a decoded yaml.Node tree into a Value.
func FromNode(n *yaml.Node) (*Value, error) {
	if n == nil {
		return NewScalar(nil), nil
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return NewScalar(nil), nil
		}
		return FromNode(n.Content[0])
	case yaml.AliasNode:
		return FromNode(n.Alias)
	case yaml.SequenceNode:
		seq := &Value{kind: SequenceKind, items: make([]*Value, 0, len(n.Content))}
		for _, c := range n.Content {
			item, err := FromNode(c)
			if err != nil {
				return nil, err
			}
			seq.items = append(seq.items, item)
		}
		return seq, nil
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			val, err := FromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m.Set(n.Content[i].Value, val)
		}
		return m, nil
	case yaml.ScalarNode:
		return scalarFromNode(n)
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", n.Line, n.Kind)
	}
}

func scalarFromNode(n *yaml.Node) (*Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return NewScalar(nil), nil
	case "!!bool", "!!int", "!!float":
		var out any
		if err := n.Decode(&out); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return NewScalar(out), nil
	default:
		return NewScalar(n.Value), nil
	}
}
