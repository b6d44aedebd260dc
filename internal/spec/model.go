package spec

import "strings"

// Endpoint records built from a resolved document. They are derived once by
// Extract and never mutated afterwards.

type HttpMethod string

const (
	GET     HttpMethod = "GET"
	PUT     HttpMethod = "PUT"
	POST    HttpMethod = "POST"
	DELETE  HttpMethod = "DELETE"
	OPTIONS HttpMethod = "OPTIONS"
	HEAD    HttpMethod = "HEAD"
	PATCH   HttpMethod = "PATCH"
	TRACE   HttpMethod = "TRACE"
)

// ParseMethod upper-cases m and reports whether it names an operation of an
// OpenAPI Path Item.
func ParseMethod(m string) (HttpMethod, bool) {
	method := HttpMethod(strings.ToUpper(strings.TrimSpace(m)))
	switch method {
	case GET, PUT, POST, DELETE, OPTIONS, HEAD, PATCH, TRACE:
		return method, true
	}
	return "", false
}

// Endpoint is one operation of the document together with its method and path.
type Endpoint struct {
	Method     HttpMethod
	Path       string
	Parameters []Parameter
	// Operation is the Operation Object as found in the document.
	Operation *Value
}

// ID is "METHOD path".
func (e Endpoint) ID() string { return string(e.Method) + " " + e.Path }

// Summary returns the operation summary. An empty summary counts as absent.
func (e Endpoint) Summary() (string, bool) { return nonEmptyString(e.Operation, "summary") }

// Description returns the operation description. An empty one counts as absent.
func (e Endpoint) Description() (string, bool) { return nonEmptyString(e.Operation, "description") }

// Tags lists the operation tags, skipping blank and non-string entries.
func (e Endpoint) Tags() []string {
	v, ok := e.Operation.Get("tags")
	if !ok {
		return nil
	}
	var tags []string
	for _, item := range v.Items() {
		if s, ok := item.String(); ok && strings.TrimSpace(s) != "" {
			tags = append(tags, strings.TrimSpace(s))
		}
	}
	return tags
}

// RequestBody returns the Request Body Object. An empty mapping counts as
// absent.
func (e Endpoint) RequestBody() (*Value, bool) {
	v, ok := e.Operation.Get("requestBody")
	if !ok || v.Len() == 0 {
		return nil, false
	}
	return v, true
}

// Responses lists the Responses Object members in document order.
func (e Endpoint) Responses() []Response {
	v, ok := e.Operation.Get("responses")
	if !ok {
		return nil
	}
	keys := v.Keys()
	out := make([]Response, 0, len(keys))
	for _, code := range keys {
		r, _ := v.Get(code)
		out = append(out, Response{Status: code, Value: r})
	}
	return out
}

// Parameter is a Parameter Object. Name and In are required by OpenAPI and
// checked by Extract.
type Parameter struct {
	Name        string
	In          string // path|query|header|cookie
	Required    bool
	Description string // empty when absent
	// Schema is nil when the parameter has no schema.
	Schema *Value
}

func (p Parameter) InPath() bool { return p.In == "path" }

func (p Parameter) key() string { return p.In + ":" + p.Name }

// Response is one member of a Responses Object.
type Response struct {
	Status string // 200, 4XX, default
	Value  *Value
}

// Description returns the required response description.
func (r Response) Description() (string, bool) {
	v, ok := r.Value.Get("description")
	if !ok {
		return "", false
	}
	if s, ok := v.String(); ok {
		return s, true
	}
	return v.Text(), true
}

// JSONBodyProperties follows content["application/json"].schema.properties of a
// Request Body or Response Object. A miss anywhere on the way reports false.
func JSONBodyProperties(v *Value) (*Value, bool) {
	props, ok := v.Lookup("content", "application/json", "schema", "properties")
	if !ok || !props.IsMapping() {
		return nil, false
	}
	return props, true
}

func nonEmptyString(v *Value, key string) (string, bool) {
	field, ok := v.Get(key)
	if !ok || field.Kind() == NullKind {
		return "", false
	}
	s, ok := field.String()
	if !ok {
		s = field.Text()
	}
	if s == "" {
		return "", false
	}
	return s, true
}
