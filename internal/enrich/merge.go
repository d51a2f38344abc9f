package enrich

import (
	"context"
	"fmt"
	"strings"

	"github.com/dvrk-community/bibkeep/internal/bib"
	"github.com/dvrk-community/bibkeep/internal/s2"
)

// Needs is the set of tracked fields an entry is missing, derived fresh
// from the raw text at enrichment time and never persisted.
type Needs struct {
	SemanticScholar bool
	DOI             bool
	Abstract        bool
	Arxiv           bool
	URL             bool
}

// needsOf derives the need set from extracted fields.
func needsOf(f bib.EntryFields) Needs {
	return Needs{
		SemanticScholar: !f.HasSemanticScholar,
		DOI:             f.DOI == "",
		Abstract:        !f.HasAbstract,
		Arxiv:           !f.HasArxiv,
		URL:             !f.HasURL,
	}
}

// fetchWorthy reports whether anything justifies a lookup. A missing
// url field alone only counts when no DOI is known: the DOI is the
// canonical link and the open-access url is merely its fallback.
func (n Needs) fetchWorthy(localDOI string) bool {
	return n.SemanticScholar || n.DOI || n.Abstract || n.Arxiv || (n.URL && localDOI == "")
}

// Merger enriches one entry at a time. It has no side effects beyond
// the returned entry text; writing files is the pipeline's job.
type Merger struct {
	Lookup *Lookup
}

// EnrichEntry returns the entry text with any newly obtained fields
// spliced in, and whether the text changed. An entry with no usable
// title, or with all tracked fields already present, passes through
// unmodified. The only returned error is context cancellation.
func (m *Merger) EnrichEntry(ctx context.Context, entry string) (string, bool, error) {
	fields := bib.ExtractFields(entry)
	if fields.Title == "" {
		return entry, false, nil
	}

	needs := needsOf(fields)
	if !needs.fetchWorthy(fields.DOI) {
		return entry, false, nil
	}

	data, err := m.Lookup.Find(ctx, fields.Title, fields.DOI)
	if err != nil {
		return entry, false, err
	}
	if data == nil {
		return entry, false, nil
	}

	changes := fieldChanges(needs, fields.DOI, data)
	if len(changes) == 0 {
		return entry, false, nil
	}
	return spliceFields(entry, changes), true, nil
}

// fieldChanges renders the field assignments to add: one per
// still-missing tracked field the candidate actually has data for.
func fieldChanges(needs Needs, localDOI string, data *s2.Paper) []string {
	var changes []string

	if needs.SemanticScholar && data.URL != "" {
		changes = append(changes, fmt.Sprintf("  semanticscholar = {%s}", data.URL))
	}
	if needs.DOI && data.ExternalIDs.DOI != "" {
		changes = append(changes, fmt.Sprintf("  doi = {%s}", data.ExternalIDs.DOI))
	}
	if needs.Abstract && data.Abstract != "" {
		changes = append(changes, fmt.Sprintf("  abstract = {%s}", escapeBraces(data.Abstract)))
	}
	if needs.Arxiv && data.ExternalIDs.ArXiv != "" {
		changes = append(changes, fmt.Sprintf("  arxiv = {%s}", data.ExternalIDs.ArXiv))
	}

	// The open-access url is only added when no DOI is known at all,
	// neither locally nor from the fetched record.
	currentDOI := localDOI
	if currentDOI == "" {
		currentDOI = data.ExternalIDs.DOI
	}
	if needs.URL && currentDOI == "" && data.OpenAccessPDF != nil && data.OpenAccessPDF.URL != "" {
		changes = append(changes, fmt.Sprintf("  url = {%s}", data.OpenAccessPDF.URL))
	}

	return changes
}

// spliceFields inserts new field assignments immediately before the
// entry's final closing brace, normalizing a trailing comma first so
// the result stays well-formed. An entry without a closing brace is
// returned unchanged.
func spliceFields(entry string, changes []string) string {
	idx := strings.LastIndex(entry, "}")
	if idx == -1 {
		return entry
	}

	prefix := strings.TrimRight(entry[:idx], " \t\r\n")
	var insertion strings.Builder
	if !strings.HasSuffix(prefix, ",") {
		insertion.WriteString(",")
	}
	insertion.WriteString("\n")
	insertion.WriteString(strings.Join(changes, ",\n"))
	insertion.WriteString("\n")

	return prefix + insertion.String() + entry[idx:]
}

// escapeBraces protects brace characters inside fetched abstract text
// so the spliced value cannot unbalance the entry.
func escapeBraces(s string) string {
	s = strings.ReplaceAll(s, "{", `\{`)
	s = strings.ReplaceAll(s, "}", `\}`)
	return s
}
