// Package enrich fills missing bibliographic fields from the Semantic
// Scholar API: it decides what an entry lacks, looks the paper up with
// caching and adaptive rate limiting, validates candidates against the
// local title, and splices accepted fields back into the entry text.
package enrich

import (
	"strings"

	"github.com/dvrk-community/bibkeep/internal/s2"
)

const (
	// AcceptThreshold is the minimum adjusted score for a candidate to
	// be treated as the same paper.
	AcceptThreshold = 0.7

	// GenericTypePenalty is subtracted when a candidate is tagged as a
	// bare Conference or Journal record. Those are usually umbrella
	// records for a whole venue, not the paper itself, even when their
	// titles match well.
	GenericTypePenalty = 0.3
)

// Score compares a local title against a candidate record. The raw
// similarity of the lowercased titles is penalized when the candidate
// carries a generic publication type, and the adjusted score must exceed
// AcceptThreshold for acceptance. The score is returned for diagnostics.
func Score(localTitle string, candidate s2.Paper) (accepted bool, score float64) {
	raw := Similarity(localTitle, candidate.Title)
	score = raw
	if hasGenericType(candidate.PublicationTypes) {
		score -= GenericTypePenalty
	}
	return score > AcceptThreshold, score
}

// BestCandidate picks the candidate with the highest raw title
// similarity (first seen wins ties) and reports whether its adjusted
// score clears the acceptance threshold. Returns index -1 when the
// candidate list is empty.
func BestCandidate(localTitle string, candidates []s2.Paper) (index int, accepted bool, score float64) {
	index = -1
	bestRaw := -1.0
	for i, c := range candidates {
		if raw := Similarity(localTitle, c.Title); raw > bestRaw {
			bestRaw = raw
			index = i
		}
	}
	if index == -1 {
		return -1, false, 0
	}
	accepted, score = Score(localTitle, candidates[index])
	return index, accepted, score
}

// Similarity computes a longest-common-subsequence ratio in [0,1]
// between the lowercased strings: 2*LCS / (len(a)+len(b)). Identical
// strings score 1, disjoint strings score 0.
func Similarity(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(len(ra)+len(rb))
}

// lcsLength is the classic two-row dynamic program for the length of
// the longest common subsequence.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

// hasGenericType reports whether the type tags mark a bare venue-level
// record. Specific tags like "JournalArticle" are not penalized.
func hasGenericType(types []string) bool {
	for _, t := range types {
		if t == "Conference" || t == "Journal" {
			return true
		}
	}
	return false
}
