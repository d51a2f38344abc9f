package bib

import (
	"sort"
	"strings"
)

// SortEntries orders entry blocks by year descending, then by lowercased
// title ascending. The sort is stable so entries with equal keys keep
// their original relative order.
func SortEntries(entries []string) {
	type meta struct {
		year  int
		title string
	}
	metas := make([]meta, len(entries))
	for i, e := range entries {
		metas[i] = meta{
			year:  ExtractYear(e),
			title: strings.ToLower(ExtractTitle(e)),
		}
	}

	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ma, mb := metas[idx[a]], metas[idx[b]]
		if ma.year != mb.year {
			return ma.year > mb.year
		}
		return ma.title < mb.title
	})

	sorted := make([]string, len(entries))
	for i, j := range idx {
		sorted[i] = entries[j]
	}
	copy(entries, sorted)
}
