package markdown

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/openapi2md/internal/schema"
	"github.com/mark3labs/openapi2md/internal/spec"
)

// Detail renders one section per endpoint: heading, summary, the parameter
// table and every response, with JSON response bodies printed through the
// schema renderer.
//
// A malformed response schema or a response without description stops rendering and
// is returned wrapped with the endpoint it belongs to.
func Detail(endpoints []spec.Endpoint, loc Locale) (string, error) {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(loc.DetailHeading)
	b.WriteString("\n\n")

	for _, ep := range endpoints {
		request := requestSection(ep, loc)
		response, err := responseSection(ep)
		if err != nil {
			return "", fmt.Errorf("%s: %w", ep.ID(), err)
		}

		fmt.Fprintf(&b, "\n## %s %s\n\n", ep.Method, ep.Path)
		b.WriteString(detailSummary(ep))
		b.WriteString("\n\n")
		b.WriteString(loc.RequestHeading)
		b.WriteString("\n")
		b.WriteString(request)
		b.WriteString("\n\n")
		b.WriteString(loc.ResponseHeading)
		b.WriteString("\n")
		b.WriteString(response)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func detailSummary(ep spec.Endpoint) string {
	if s, ok := ep.Summary(); ok {
		return s
	}
	s, _ := ep.Description()
	return s
}

func requestSection(ep spec.Endpoint, loc Locale) string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(strings.Join(loc.RequestColumns[:], " | "))
	b.WriteString("\n")
	b.WriteString(alignRow(len(loc.RequestColumns), ":---|"))
	b.WriteString("\n")

	rows := make([]string, 0, len(ep.Parameters))
	for _, p := range ep.Parameters {
		cell := schemaCell(p, loc)
		rows = append(rows, strings.Join([]string{
			p.Name,
			p.In,
			strconv.FormatBool(p.Required),
			orDefault(p.Description, loc.NoDesc),
			cell,
		}, " | "))
	}
	b.WriteString(strings.Join(rows, "\n"))
	return b.String()
}

// schemaCell prints a parameter schema on one line. Pipes are escaped so
// enum digests do not split the table cell. A schema the renderer does not
// understand (no type, oneOf, ...) is printed as compact JSON.
func schemaCell(p spec.Parameter, loc Locale) string {
	if p.Schema == nil {
		return loc.NoDesc
	}
	_, body, err := schema.RenderSchema(p.Schema)
	text := p.Schema.Text()
	if err == nil {
		text = schema.Compact(body)
		if s, ok := body.(schema.String); ok {
			text = string(s)
		}
	}
	return strings.ReplaceAll(text, "|", `\|`)
}

func responseSection(ep spec.Endpoint) (string, error) {
	responses := ep.Responses()
	blocks := make([]string, 0, len(responses))
	for _, r := range responses {
		desc, ok := r.Description()
		if !ok {
			return "", fmt.Errorf("%w: response %s has no description", spec.ErrMalformed, r.Status)
		}
		var b strings.Builder
		fmt.Fprintf(&b, "#### %s: %s\n", r.Status, desc)

		if props, ok := spec.JSONBodyProperties(r.Value); ok {
			body, err := schema.RenderProperties(props)
			if err != nil {
				return "", fmt.Errorf("response %s: %w", r.Status, err)
			}
			b.WriteString("\n```\n")
			b.WriteString(schema.Pretty(body))
			b.WriteString("\n```\n")
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n"), nil
}
