package spec

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func mustYAML(t *testing.T, doc string) *yaml.Node {
	t.Helper()
	var n yaml.Node
	if err := yaml.Unmarshal([]byte(doc), &n); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	return &n
}

func TestParse_KeepsOrderAndScalarTypes(t *testing.T) {
	t.Parallel()
	v, err := Parse([]byte(`
zeta: 1
alpha: "1"
mid: [true, 2.5, null, x]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := strings.Join(v.Keys(), ","); got != "zeta,alpha,mid" {
		t.Fatalf("keys: got %s", got)
	}
	zeta, _ := v.Get("zeta")
	if _, ok := zeta.String(); ok {
		t.Fatalf("expected 1 to decode as a number")
	}
	alpha, _ := v.Get("alpha")
	if s, ok := alpha.String(); !ok || s != "1" {
		t.Fatalf("expected quoted 1 to stay a string")
	}
	mid, _ := v.Get("mid")
	if mid.Len() != 4 || mid.Items()[2].Kind() != NullKind {
		t.Fatalf("unexpected sequence %s", mid.Text())
	}
	if b, ok := mid.Items()[0].Bool(); !ok || !b {
		t.Fatalf("expected true")
	}
}

func TestValue_MarshalJSONKeepsOrder(t *testing.T) {
	t.Parallel()
	v := NewMapping().
		Set("b", NewScalar("x")).
		Set("a", NewSequence(NewScalar(1), NewScalar(nil), NewScalar(true))).
		Set("b", NewScalar("y"))
	got, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(got) != `{"b":"y","a":[1,null,true]}` {
		t.Fatalf("got %s", got)
	}
}

func TestValue_LookupAndNil(t *testing.T) {
	t.Parallel()
	v, err := Parse([]byte(`{a: {b: {c: deep}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c, ok := v.Lookup("a", "b", "c"); !ok || c.Text() != "deep" {
		t.Fatalf("lookup failed")
	}
	if _, ok := v.Lookup("a", "x", "c"); ok {
		t.Fatalf("expected miss")
	}

	var missing *Value
	if missing.Kind() != NullKind || missing.Len() != 0 || missing.Keys() != nil {
		t.Fatalf("nil value should behave like null")
	}
	if _, ok := missing.Get("a"); ok {
		t.Fatalf("nil value has no members")
	}
	if missing.Text() != "null" {
		t.Fatalf("nil value text: %q", missing.Text())
	}
}

func TestValue_TextOfScalars(t *testing.T) {
	t.Parallel()
	cases := map[string]*Value{
		"3":     NewScalar(3),
		"2.5":   NewScalar(2.5),
		"false": NewScalar(false),
		"plain": NewScalar("plain"),
	}
	for want, v := range cases {
		if got := v.Text(); got != want {
			t.Fatalf("got %q want %q", got, want)
		}
	}
}
