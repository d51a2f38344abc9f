package bib

import "strings"

// Problem describes one flagged entry from a syntax check.
type Problem struct {
	Key    string
	Opened int
	Closed int
}

// CheckBalance flags entries whose brace delimiters do not balance.
// Entries are flagged, never repaired; an unbalanced entry is reported
// with whatever key could be recovered from its header ("unknown" when
// none).
func CheckBalance(doc *Document) []Problem {
	var problems []Problem
	for _, entry := range doc.Entries {
		opened := strings.Count(entry, "{")
		closed := strings.Count(entry, "}")
		if opened == closed {
			continue
		}
		key := ExtractKey(entry)
		if key == "" {
			key = "unknown"
		}
		problems = append(problems, Problem{Key: key, Opened: opened, Closed: closed})
	}
	return problems
}
