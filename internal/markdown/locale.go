package markdown

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale holds the fixed strings of the generated markdown.
type Locale struct {
	Tag language.Tag

	SummaryHeading string
	// SummaryColumns are the API, description and parameter column titles.
	SummaryColumns [3]string
	DetailHeading  string
	RequestHeading string
	// RequestColumns are the name, in, required, description and schema
	// column titles of the parameter table.
	RequestColumns  [5]string
	ResponseHeading string

	// NoParams fills the parameter column of an endpoint with neither
	// parameters nor request body.
	NoParams string
	// NoDesc stands in for a missing summary or description.
	NoDesc string
}

// Japanese is the default catalog.
var Japanese = Locale{
	Tag:             language.Japanese,
	SummaryHeading:  "# 概要",
	SummaryColumns:  [3]string{"API", "概説", "パラメータ"},
	DetailHeading:   "# 詳細",
	RequestHeading:  "### request",
	RequestColumns:  [5]string{"name", "in", "required", "description", "schema"},
	ResponseHeading: "### response",
	NoParams:        "(なし)",
	NoDesc:          "-",
}

var English = Locale{
	Tag:             language.English,
	SummaryHeading:  "# Overview",
	SummaryColumns:  [3]string{"API", "Summary", "Parameters"},
	DetailHeading:   "# Details",
	RequestHeading:  "### request",
	RequestColumns:  [5]string{"name", "in", "required", "description", "schema"},
	ResponseHeading: "### response",
	NoParams:        "(none)",
	NoDesc:          "-",
}

var catalogs = []Locale{Japanese, English}

var matcher = language.NewMatcher([]language.Tag{Japanese.Tag, English.Tag})

// LocaleFor picks the catalog closest to a BCP 47 tag such as "ja", "en-US"
// or "ja_JP.UTF-8". An empty tag selects Japanese; so does a tag that matches
// no catalog.
func LocaleFor(tag string) (Locale, error) {
	tag = strings.TrimSpace(tag)
	if i := strings.IndexAny(tag, ".@"); i >= 0 {
		tag = tag[:i]
	}
	if tag == "" || strings.EqualFold(tag, "C") || strings.EqualFold(tag, "POSIX") {
		return Japanese, nil
	}
	t, err := language.Parse(tag)
	if err != nil {
		return Locale{}, fmt.Errorf("markdown: invalid locale %q: %w", tag, err)
	}
	_, idx, conf := matcher.Match(t)
	if conf == language.No {
		return Japanese, nil
	}
	return catalogs[idx], nil
}
