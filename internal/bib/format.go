package bib

import (
	"fmt"
	"strings"
)

// FieldOrder is the presentation order used when rewriting entries.
// Fields not listed keep their original relative order after these.
var FieldOrder = []string{
	"author", "title", "journal", "booktitle", "year", "volume", "number",
	"pages", "month", "publisher", "doi", "url", "ieeexplore",
	"semanticscholar", "arxiv", "pdf", "openaccesspdf",
	"research_field", "data_type", "dvrk_site", "abstract", "keywords",
}

// FormatEntry renders a structured entry with two-space indentation and
// a trailing comma on every field. The trailing comma keeps the entry
// safe to splice additional fields into later.
func FormatEntry(e *Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "@%s{%s,\n", e.Type, e.Key)
	for _, f := range orderFields(e.Fields) {
		fmt.Fprintf(&b, "  %s = {%s},\n", f.Name, f.Value)
	}
	b.WriteString("}\n")
	return b.String()
}

// orderFields sorts fields into FieldOrder, keeping unknown fields in
// their original relative order at the end.
func orderFields(fields []Field) []Field {
	rank := make(map[string]int, len(FieldOrder))
	for i, name := range FieldOrder {
		rank[name] = i
	}

	ordered := make([]Field, 0, len(fields))
	for _, want := range FieldOrder {
		for _, f := range fields {
			if f.Name == want {
				ordered = append(ordered, f)
			}
		}
	}
	for _, f := range fields {
		if _, known := rank[f.Name]; !known {
			ordered = append(ordered, f)
		}
	}
	return ordered
}
