package spec

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// resolver inlines $ref pointers in place. Documents are identified by their
// absolute path or URL and parsed at most once.
type resolver struct {
	ctx       context.Context
	settings  Settings
	allowFile bool
	docs      map[string]*yaml.Node
}

func newResolver(ctx context.Context, settings Settings, rootIsFile bool) *resolver {
	return &resolver{
		ctx:       ctx,
		settings:  settings,
		allowFile: settings.AllowFileRefs || rootIsFile,
		docs:      make(map[string]*yaml.Node),
	}
}

// resolveNode replaces every {"$ref": ...} mapping below n with a copy of the
// referenced node. Sibling keys of $ref are dropped, as in OpenAPI 3.0.
// stack holds the refs currently being expanded and detects cycles.
func (r *resolver) resolveNode(n *yaml.Node, base string, stack []string) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := r.resolveNode(c, base, stack); err != nil {
				return err
			}
		}
	case yaml.AliasNode:
		cp := deepCopyNode(n.Alias)
		if err := r.resolveNode(cp, base, stack); err != nil {
			return err
		}
		*n = *cp
	case yaml.MappingNode:
		if ref, ok := refOf(n); ok {
			return r.inline(n, ref, base, stack)
		}
		for i := 1; i < len(n.Content); i += 2 {
			if err := r.resolveNode(n.Content[i], base, stack); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *resolver) inline(n *yaml.Node, ref, base string, stack []string) error {
	docPart, fragment, _ := strings.Cut(ref, "#")
	docLoc := base
	if docPart != "" {
		loc, err := joinLocation(base, docPart)
		if err != nil {
			return &SpecError{Code: ResolveError, Message: fmt.Sprintf("resolve $ref %q: %v", ref, err), Location: base, Cause: err}
		}
		docLoc = loc
	}

	key := docLoc + "#" + fragment
	if slices.Contains(stack, key) {
		return &SpecError{
			Code:        ResolveError,
			Message:     fmt.Sprintf("resolve $ref %q: circular reference", ref),
			Location:    docLoc,
			JSONPointer: "#" + fragment,
		}
	}

	root, err := r.document(docLoc)
	if err != nil {
		return &SpecError{Code: ResolveError, Message: fmt.Sprintf("resolve $ref %q: %v", ref, err), Location: docLoc, Cause: err}
	}
	target, err := followPointer(root, fragment)
	if err != nil {
		return &SpecError{
			Code:        ResolveError,
			Message:     fmt.Sprintf("resolve $ref %q: %v", ref, err),
			Location:    docLoc,
			JSONPointer: "#" + fragment,
			Cause:       err,
		}
	}

	cp := deepCopyNode(target)
	next := append(stack[:len(stack):len(stack)], key)
	if err := r.resolveNode(cp, docLoc, next); err != nil {
		return err
	}
	*n = *cp
	return nil
}

func (r *resolver) document(loc string) (*yaml.Node, error) {
	if doc, ok := r.docs[loc]; ok {
		return doc, nil
	}
	var raw []byte
	if isHTTPLocation(loc) {
		body, err := fetchWithRetry(r.ctx, loc, r.settings)
		if err != nil {
			return nil, err
		}
		raw = body
	} else {
		if !r.allowFile {
			return nil, fmt.Errorf("blocked file ref: %s", loc)
		}
		body, err := os.ReadFile(loc)
		if err != nil {
			return nil, err
		}
		raw = body
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", loc, err)
	}
	r.docs[loc] = &doc
	return &doc, nil
}

func refOf(n *yaml.Node) (string, bool) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Value == "$ref" && v.Kind == yaml.ScalarNode {
			return v.Value, true
		}
	}
	return "", false
}

func isHTTPLocation(loc string) bool {
	lower := strings.ToLower(loc)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// joinLocation resolves a $ref document part against the referring document.
func joinLocation(base, ref string) (string, error) {
	if isHTTPLocation(ref) {
		return ref, nil
	}
	if strings.HasPrefix(strings.ToLower(ref), "file:") {
		return "", fmt.Errorf("file:// refs are not supported")
	}
	if isHTTPLocation(base) {
		bu, err := url.Parse(base)
		if err != nil {
			return "", err
		}
		ru, err := url.Parse(ref)
		if err != nil {
			return "", err
		}
		return bu.ResolveReference(ru).String(), nil
	}
	if filepath.IsAbs(ref) {
		return filepath.Clean(ref), nil
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(ref)), nil
}

// followPointer walks an RFC 6901 JSON Pointer (the part after '#').
func followPointer(root *yaml.Node, fragment string) (*yaml.Node, error) {
	cur := root
	if cur.Kind == yaml.DocumentNode {
		if len(cur.Content) == 0 {
			return nil, fmt.Errorf("empty document")
		}
		cur = cur.Content[0]
	}
	fragment = strings.TrimPrefix(fragment, "/")
	if fragment == "" {
		return cur, nil
	}
	for _, raw := range strings.Split(fragment, "/") {
		token, err := url.PathUnescape(raw)
		if err != nil {
			token = raw
		}
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		if cur.Kind == yaml.AliasNode {
			cur = cur.Alias
		}
		switch cur.Kind {
		case yaml.MappingNode:
			next := mappingValue(cur, token)
			if next == nil {
				return nil, fmt.Errorf("unresolved ref: no member %q", token)
			}
			cur = next
		case yaml.SequenceNode:
			idx, err := strconv.Atoi(token)
			if err != nil || idx < 0 || idx >= len(cur.Content) {
				return nil, fmt.Errorf("unresolved ref: bad index %q", token)
			}
			cur = cur.Content[idx]
		default:
			return nil, fmt.Errorf("unresolved ref: cannot descend into scalar at %q", token)
		}
	}
	return cur, nil
}

func deepCopyNode(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	cp := *n
	if len(n.Content) > 0 {
		cp.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			cp.Content[i] = deepCopyNode(c)
		}
	}
	return &cp
}
