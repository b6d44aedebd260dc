package markdown

import (
	"strings"

	"github.com/mark3labs/openapi2md/internal/schema"
	"github.com/mark3labs/openapi2md/internal/spec"
)

// Summary renders the overview table: one row per endpoint with its summary
// and a digest of its parameters and JSON request body.
func Summary(endpoints []spec.Endpoint, loc Locale) string {
	var b strings.Builder
	b.WriteString(loc.SummaryHeading)
	b.WriteString("\n\n")
	b.WriteString(strings.Join(loc.SummaryColumns[:], "|"))
	b.WriteString("\n")
	b.WriteString(alignRow(len(loc.SummaryColumns), ":---|"))
	b.WriteString("\n")

	for _, ep := range endpoints {
		summary, ok := ep.Summary()
		if !ok {
			summary = loc.NoDesc
		}
		b.WriteString(string(ep.Method))
		b.WriteString(" ")
		b.WriteString(ep.Path)
		b.WriteString("|")
		b.WriteString(summary)
		b.WriteString("|")
		b.WriteString(paramDigest(ep, loc))
		b.WriteString("\n")
	}
	return b.String()
}

func paramDigest(ep spec.Endpoint, loc Locale) string {
	body, hasBody := ep.RequestBody()
	if len(ep.Parameters) == 0 && !hasBody {
		return loc.NoParams
	}

	entries := make([]string, 0, len(ep.Parameters)+1)
	for _, p := range ep.Parameters {
		name := p.Name
		if p.InPath() {
			name = "{" + name + "}"
		}
		entries = append(entries, name+": "+orDefault(p.Description, loc.NoDesc))
	}
	if hasBody {
		if props, ok := spec.JSONBodyProperties(body); ok {
			entries = append(entries, "body: "+bodyDigest(props, loc))
		}
	}
	return strings.Join(entries, ", ")
}

// bodyDigest prints {"prop": "description", ...} for the body properties.
func bodyDigest(props *spec.Value, loc Locale) string {
	keys := props.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		prop, _ := props.Get(k)
		desc := loc.NoDesc
		if d, ok := prop.Get("description"); ok {
			desc = d.Text()
			if s, ok := d.String(); ok {
				desc = s
			}
		}
		parts = append(parts, schema.Quote(k)+": "+schema.Quote(desc))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func alignRow(columns int, cell string) string {
	return strings.TrimSuffix(strings.Repeat(cell, columns), "|")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
