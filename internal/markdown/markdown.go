// Package markdown renders extracted endpoints as API documentation: an
// overview table and a detail section per endpoint.
package markdown

import (
	"github.com/mark3labs/openapi2md/internal/spec"
)

// Document holds the two independent markdown blocks.
type Document struct {
	Summary string
	Detail  string
}

// Options select what Generate renders.
type Options struct {
	Locale  Locale
	Summary bool
	Detail  bool
	Extract []spec.ExtractOption
}

// DefaultOptions renders both blocks in Japanese.
func DefaultOptions() Options {
	return Options{Locale: Japanese, Summary: true, Detail: true}
}

// Generate extracts the endpoints of a resolved document and renders the
// requested blocks. Blocks that are not requested stay empty.
func Generate(tree *spec.Value, opts Options) (*Document, error) {
	endpoints, err := spec.Extract(tree, opts.Extract...)
	if err != nil {
		return nil, err
	}
	return Build(endpoints, opts)
}

// Build renders already extracted endpoints.
func Build(endpoints []spec.Endpoint, opts Options) (*Document, error) {
	doc := &Document{}
	if opts.Summary {
		doc.Summary = Summary(endpoints, opts.Locale)
	}
	if opts.Detail {
		detail, err := Detail(endpoints, opts.Locale)
		if err != nil {
			return nil, err
		}
		doc.Detail = detail
	}
	return doc, nil
}

// String joins the rendered blocks, each followed by a newline, which is how
// the command prints them.
func (d *Document) String() string {
	var out string
	for _, block := range []string{d.Summary, d.Detail} {
		if block != "" {
			out += block + "\n"
		}
	}
	return out
}
