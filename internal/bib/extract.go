package bib

import (
	"regexp"
	"strings"
)

// Tolerant field patterns. Delimiters may be braces or quotes and the
// key is matched case-insensitively. The multiline title pattern anchors
// on the closing delimiter followed by an optional comma and a newline so
// that values spanning lines are captured; the single-line pattern is the
// fallback for entries whose title sits on the last line of the block.
var (
	titleMultilineRegex = regexp.MustCompile(`(?is)title\s*=\s*[{"'](.+?)[}"'],?\s*\n`)
	titleLineRegex      = regexp.MustCompile(`(?i)title\s*=\s*[{"'](.+?)[}"']`)
	doiValueRegex       = regexp.MustCompile(`(?i)doi\s*=\s*[{"'](.+?)[}"']`)
	yearValueRegex      = regexp.MustCompile(`(?i)year\s*=\s*[{"']?(\d{4})[}"']?`)
	entryHeaderRegex    = regexp.MustCompile(`@(\w+)\{([^,\s}]+)\s*,`)

	semanticFieldRegex = regexp.MustCompile(`(?i)semanticscholar\s*=`)
	urlFieldRegex      = regexp.MustCompile(`(?i)url\s*=`)
	abstractFieldRegex = regexp.MustCompile(`(?i)abstract\s*=`)
	arxivFieldRegex    = regexp.MustCompile(`(?i)arxiv\s*=`)

	whitespaceRunRegex = regexp.MustCompile(`\s+`)
)

// EntryFields holds what the extractor could pull out of one entry block.
// Title and DOI carry values; the Has* flags record only that a field
// assignment exists somewhere in the raw text. Presence detection does
// not parse the value and can be satisfied by a malformed or commented
// line mentioning the key; this matches how the file has historically
// been maintained and is kept for compatibility.
type EntryFields struct {
	Title string
	DOI   string

	HasSemanticScholar bool
	HasURL             bool
	HasAbstract        bool
	HasArxiv           bool
}

// ExtractFields scans one entry block for the fields the enrichment
// pipeline cares about. A missing title yields an empty Title; callers
// must treat that as "cannot enrich".
func ExtractFields(entry string) EntryFields {
	f := EntryFields{
		Title: ExtractTitle(entry),
		DOI:   ExtractDOI(entry),

		HasSemanticScholar: semanticFieldRegex.MatchString(entry),
		HasURL:             urlFieldRegex.MatchString(entry),
		HasAbstract:        abstractFieldRegex.MatchString(entry),
		HasArxiv:           arxivFieldRegex.MatchString(entry),
	}
	return f
}

// ExtractTitle pulls a normalized title out of an entry block, or ""
// when no tolerant pattern matches.
func ExtractTitle(entry string) string {
	m := titleMultilineRegex.FindStringSubmatch(entry)
	if m == nil {
		m = titleLineRegex.FindStringSubmatch(entry)
	}
	if m == nil {
		return ""
	}
	return NormalizeTitle(m[1])
}

// ExtractDOI returns the entry's doi field value, or "".
func ExtractDOI(entry string) string {
	m := doiValueRegex.FindStringSubmatch(entry)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// ExtractYear returns the entry's four-digit year, or 0.
func ExtractYear(entry string) int {
	m := yearValueRegex.FindStringSubmatch(entry)
	if m == nil {
		return 0
	}
	year := 0
	for _, c := range m[1] {
		year = year*10 + int(c-'0')
	}
	return year
}

// ExtractKey returns the citation key from the entry header, or "".
func ExtractKey(entry string) string {
	m := entryHeaderRegex.FindStringSubmatch(entry)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[2])
}

// NormalizeTitle collapses internal whitespace runs to single spaces and
// strips surrounding whitespace and delimiter characters.
func NormalizeTitle(title string) string {
	title = whitespaceRunRegex.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	title = strings.Trim(title, "{}")
	title = strings.Trim(title, `"`)
	return title
}

// NormalizeDOI strips URL prefixes and lowercases a DOI for comparison.
func NormalizeDOI(doi string) string {
	doi = strings.TrimSpace(doi)
	doi = strings.TrimPrefix(doi, "https://doi.org/")
	doi = strings.TrimPrefix(doi, "http://doi.org/")
	doi = strings.TrimPrefix(doi, "doi.org/")
	doi = strings.TrimPrefix(doi, "DOI:")
	doi = strings.TrimPrefix(doi, "doi:")
	return strings.ToLower(doi)
}
