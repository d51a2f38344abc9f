// Package bib reads, splits, and rewrites BibTeX bibliography files.
//
// The package is deliberately permissive: it splits and scans entries with
// tolerant patterns rather than enforcing the BibTeX grammar, so that a
// hand-maintained file with minor formatting quirks still round-trips.
package bib

import "strings"

// Document is a bibliography file sliced into entry blocks.
// Preamble holds any text before the first entry marker (comments,
// whitespace); it may be empty. Each entry block starts with "@" and
// carries its trailing whitespace, so Preamble + concat(Entries)
// reproduces the original text byte for byte.
type Document struct {
	Preamble string
	Entries  []string
}

// SplitDocument slices raw bibliography text into entry blocks.
// Entries are cut exactly at line-starting "@" markers. A document with
// no markers yields zero entries and the whole text as preamble; this is
// never an error.
func SplitDocument(content string) *Document {
	starts := entryStarts(content)
	if len(starts) == 0 {
		return &Document{Preamble: content}
	}

	doc := &Document{Preamble: content[:starts[0]]}
	for i, start := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		doc.Entries = append(doc.Entries, content[start:end])
	}
	return doc
}

// entryStarts returns the byte offsets of every line-starting "@".
func entryStarts(content string) []int {
	var starts []int
	for i := 0; i < len(content); i++ {
		if content[i] != '@' {
			continue
		}
		if i == 0 || content[i-1] == '\n' {
			starts = append(starts, i)
		}
	}
	return starts
}

// Reassemble joins the document back into a single string without
// modification. It is the inverse of SplitDocument.
func (d *Document) Reassemble() string {
	var b strings.Builder
	b.WriteString(d.Preamble)
	for _, e := range d.Entries {
		b.WriteString(e)
	}
	return b.String()
}

// RenderClean writes the document with each entry trimmed and separated
// by a blank line. The preamble, when present, keeps its place at the top.
func (d *Document) RenderClean() string {
	var b strings.Builder
	if p := strings.TrimSpace(d.Preamble); p != "" {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	for _, e := range d.Entries {
		trimmed := strings.TrimSpace(e)
		if trimmed == "" {
			continue
		}
		b.WriteString(trimmed)
		b.WriteString("\n\n")
	}
	return b.String()
}
