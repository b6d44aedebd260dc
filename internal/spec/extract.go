package spec

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrMissingPaths is returned by Extract for a document without "paths".
	ErrMissingPaths = errors.New("spec: document has no paths")
	// ErrMalformed marks a document whose shape breaks a required OpenAPI rule.
	ErrMalformed = errors.New("spec: malformed document")
)

// ExtractOption configures which endpoints Extract keeps.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[HttpMethod]struct{}
	pathRes     []*regexp.Regexp
	err         error
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) ExtractOption {
	return func(c *extractConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

// WithMethods keeps only endpoints using one of the provided HTTP methods
// (case-insensitive). An unknown method makes Extract fail.
func WithMethods(methods []string) ExtractOption {
	return func(c *extractConfig) {
		for _, raw := range methods {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			m, ok := ParseMethod(raw)
			if !ok {
				c.err = fmt.Errorf("spec: unknown HTTP method %q", raw)
				return
			}
			if c.methods == nil {
				c.methods = make(map[HttpMethod]struct{}, len(methods))
			}
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only endpoints whose path matches at least one of the
// given regular expressions. An invalid pattern makes Extract fail.
func WithPathPatterns(patterns []string) ExtractOption {
	return func(c *extractConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				c.err = fmt.Errorf("spec: invalid path pattern %q: %w", p, err)
				return
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

// Extract flattens paths → method → Operation Object into endpoint records,
// one per (path, method) pair, in document order. Path-level parameters are
// merged into each operation; an operation parameter with the same in+name
// replaces the path-level one.
//
// The tree is not modified.
func Extract(tree *Value, opts ...ExtractOption) ([]Endpoint, error) {
	cfg := &extractConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.err != nil {
		return nil, cfg.err
	}

	paths, ok := tree.Get("paths")
	if !ok {
		return nil, ErrMissingPaths
	}
	if paths.Kind() == NullKind {
		return nil, nil
	}
	if !paths.IsMapping() {
		return nil, fmt.Errorf("%w: paths is a %s, not a mapping", ErrMalformed, paths.Kind())
	}

	var endpoints []Endpoint
	for _, path := range paths.Keys() {
		if !cfg.allowPath(path) {
			continue
		}
		item, _ := paths.Get(path)
		if !item.IsMapping() {
			return nil, fmt.Errorf("%w: path item %q is a %s, not a mapping", ErrMalformed, path, item.Kind())
		}

		var shared []Parameter
		if raw, ok := item.Get("parameters"); ok {
			params, err := parseParameters(raw, path)
			if err != nil {
				return nil, err
			}
			shared = params
		}

		for _, key := range item.Keys() {
			method, ok := ParseMethod(key)
			if !ok {
				// parameters, summary, servers, x-* and friends
				continue
			}
			if !cfg.allowMethod(method) {
				continue
			}
			op, _ := item.Get(key)
			if !op.IsMapping() {
				return nil, fmt.Errorf("%w: %s %s is a %s, not an operation", ErrMalformed, method, path, op.Kind())
			}

			ep := Endpoint{Method: method, Path: path, Operation: op}
			if !cfg.allowTags(ep.Tags()) {
				continue
			}
			var own []Parameter
			if raw, ok := op.Get("parameters"); ok {
				params, err := parseParameters(raw, ep.ID())
				if err != nil {
					return nil, err
				}
				own = params
			}
			ep.Parameters = mergeParameters(shared, own)
			endpoints = append(endpoints, ep)
		}
	}
	return endpoints, nil
}

func (c *extractConfig) allowPath(path string) bool {
	if len(c.pathRes) == 0 {
		return true
	}
	for _, re := range c.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (c *extractConfig) allowMethod(m HttpMethod) bool {
	if len(c.methods) == 0 {
		return true
	}
	_, ok := c.methods[m]
	return ok
}

func (c *extractConfig) allowTags(tags []string) bool {
	if len(c.includeTags) > 0 {
		ok := false
		for _, t := range tags {
			if _, yes := c.includeTags[t]; yes {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	for _, t := range tags {
		if _, blocked := c.excludeTags[t]; blocked {
			return false
		}
	}
	return true
}

func parseParameters(raw *Value, where string) ([]Parameter, error) {
	if raw == nil || raw.Kind() == NullKind {
		return nil, nil
	}
	if !raw.IsSequence() {
		return nil, fmt.Errorf("%w: %s: parameters is a %s, not a list", ErrMalformed, where, raw.Kind())
	}
	params := make([]Parameter, 0, raw.Len())
	for i, item := range raw.Items() {
		if !item.IsMapping() {
			return nil, fmt.Errorf("%w: %s: parameter %d is not a mapping", ErrMalformed, where, i)
		}
		name, err := requiredString(item, "name")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: parameter %d: %v", ErrMalformed, where, i, err)
		}
		in, err := requiredString(item, "in")
		if err != nil {
			return nil, fmt.Errorf("%w: %s: parameter %q: %v", ErrMalformed, where, name, err)
		}
		p := Parameter{Name: name, In: in}
		if v, ok := item.Get("required"); ok {
			p.Required, _ = v.Bool()
		}
		p.Description, _ = nonEmptyString(item, "description")
		if v, ok := item.Get("schema"); ok && v.Kind() != NullKind {
			p.Schema = v
		}
		params = append(params, p)
	}
	return params, nil
}

func requiredString(v *Value, key string) (string, error) {
	field, ok := v.Get(key)
	if !ok {
		return "", fmt.Errorf("missing %q", key)
	}
	s, ok := field.String()
	if !ok {
		return "", fmt.Errorf("%q is not a string", key)
	}
	return s, nil
}

// mergeParameters keeps path-level parameters first, in their order, with any
// operation-level override substituted in place; remaining operation
// parameters follow in their own order.
func mergeParameters(shared, own []Parameter) []Parameter {
	if len(shared) == 0 {
		return own
	}
	overrides := make(map[string]int, len(own))
	for i, p := range own {
		overrides[p.key()] = i
	}
	used := make(map[int]bool, len(own))
	out := make([]Parameter, 0, len(shared)+len(own))
	for _, p := range shared {
		if i, ok := overrides[p.key()]; ok {
			out = append(out, own[i])
			used[i] = true
			continue
		}
		out = append(out, p)
	}
	for i, p := range own {
		if !used[i] {
			out = append(out, p)
		}
	}
	return out
}
