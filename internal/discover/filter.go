package discover

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// BibIndex indexes an existing bibliography for deduplication. Lookups
// are by lowercased DOI or title; citation keys are kept for reporting.
type BibIndex struct {
	Keys   map[string]bool
	DOIs   map[string]bool
	Titles map[string]bool
}

// NewBibIndex creates an empty index.
func NewBibIndex() *BibIndex {
	return &BibIndex{
		Keys:   make(map[string]bool),
		DOIs:   make(map[string]bool),
		Titles: make(map[string]bool),
	}
}

// Has reports whether a candidate with the given DOI or title is
// already in the bibliography.
func (idx *BibIndex) Has(doi, title string) bool {
	if doi != "" && idx.DOIs[strings.ToLower(doi)] {
		return true
	}
	return title != "" && idx.Titles[strings.ToLower(title)]
}

var (
	entryStartRegex = regexp.MustCompile(`@\w+\{([^,]+),`)
	doiFieldRegex   = regexp.MustCompile(`(?i)^\s*doi\s*=\s*[{"]([^}"]+)[}"]`)
	titleFieldRegex = regexp.MustCompile(`(?i)^\s*title\s*=\s*[{"]([^}"]+)[}"]`)
)

// LoadBibIndex builds an index from a .bib file, scanning line by line.
// A missing file yields an empty index.
func LoadBibIndex(path string) (*BibIndex, error) {
	idx := NewBibIndex()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		if m := entryStartRegex.FindStringSubmatch(line); len(m) > 1 {
			idx.Keys[strings.TrimSpace(m[1])] = true
		}
		if m := doiFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			idx.DOIs[strings.ToLower(strings.TrimSpace(m[1]))] = true
		}
		if m := titleFieldRegex.FindStringSubmatch(line); len(m) > 1 {
			idx.Titles[strings.ToLower(strings.TrimSpace(m[1]))] = true
		}
	}
	return idx, scanner.Err()
}

// Filter drops candidates already in the bibliography, previously
// rejected, untitled, or duplicated within the batch. Batch order is
// preserved; the first occurrence of a title wins.
func Filter(candidates []Candidate, idx *BibIndex, rejected map[string]bool) []Candidate {
	seen := make(map[string]bool)
	var kept []Candidate

	for _, c := range candidates {
		title := strings.ToLower(c.Title)
		if title == "" {
			continue
		}
		if idx != nil && idx.Has(c.DOI, c.Title) {
			continue
		}
		if rejected != nil {
			if c.DOI != "" && rejected[strings.ToLower(c.DOI)] {
				continue
			}
			if rejected[title] {
				continue
			}
		}
		if seen[title] {
			continue
		}
		seen[title] = true
		kept = append(kept, c)
	}
	return kept
}
