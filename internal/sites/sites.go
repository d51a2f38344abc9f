// Package sites maintains the dvrk_site field from an author-to-site
// mapping, so site attribution tracks the mapping file instead of
// hand-edited entries.
package sites

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/dvrk-community/bibkeep/internal/bib"
)

// Mapping maps an author name ("Last, First" or a literal string) to
// the site string for that author, multiple sites joined by " and ".
type Mapping map[string]string

// LoadMapping reads an author-to-site mapping from a JSON file.
func LoadMapping(path string) (Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mapping: %w", err)
	}
	var m Mapping
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing mapping: %w", err)
	}
	return m, nil
}

// ManagedSites returns every site the mapping governs. Sites outside
// this set are operator-set and never touched.
func (m Mapping) ManagedSites() map[string]bool {
	managed := make(map[string]bool)
	for _, siteStr := range m {
		for _, s := range splitSites(siteStr) {
			managed[s] = true
		}
	}
	return managed
}

// Apply recomputes the dvrk_site field of one entry: managed sites are
// dropped, then re-added for every mapped author found in the author
// field. Unmanaged sites survive untouched. Reports whether the entry
// changed.
func Apply(entry *bib.Entry, m Mapping) bool {
	managed := m.ManagedSites()

	authorStr := spaceRegex.ReplaceAllString(entry.Get("author"), " ")

	current := splitSites(entry.Get("dvrk_site"))
	original := make(map[string]bool, len(current))
	final := make(map[string]bool)
	for _, s := range current {
		original[s] = true
		if !managed[s] {
			final[s] = true
		}
	}

	if authorStr != "" {
		for name, siteStr := range m {
			if !authorMatches(name, authorStr) {
				continue
			}
			for _, s := range splitSites(siteStr) {
				final[s] = true
			}
		}
	}

	if sameSet(original, final) {
		return false
	}

	if len(final) == 0 {
		entry.Delete("dvrk_site")
		return true
	}

	sites := make([]string, 0, len(final))
	for s := range final {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	// JHU leads as the founding site.
	for i, s := range sites {
		if s == "JHU" && i > 0 {
			copy(sites[1:i+1], sites[:i])
			sites[0] = "JHU"
			break
		}
	}
	entry.Set("dvrk_site", strings.Join(sites, " and "))
	return true
}

var spaceRegex = regexp.MustCompile(`\s+`)

// authorMatches reports whether any written form of the mapped name
// appears in the author field. A "Last, First" name is tried in both
// orders and with initials, spaced, compact, and first-initial-only.
func authorMatches(name, authorStr string) bool {
	for _, v := range nameVariants(name) {
		// \b misfires next to the dots in initials, so boundaries are
		// any non-word character or the string edge.
		pat := `(?i)(?:^|\W)` + regexp.QuoteMeta(v) + `(?:\W|$)`
		if matched, err := regexp.MatchString(pat, authorStr); err == nil && matched {
			return true
		}
	}
	return false
}

// nameVariants expands "Last, First Middle" into the name forms that
// appear in bibliographies.
func nameVariants(name string) []string {
	if !strings.Contains(name, ",") {
		return []string{name}
	}

	parts := strings.SplitN(name, ",", 2)
	last := strings.TrimSpace(parts[0])
	firstPart := strings.TrimSpace(parts[1])

	variants := []string{
		last + ", " + firstPart,
		firstPart + " " + last,
	}

	firstNames := strings.Fields(firstPart)
	if len(firstNames) == 0 {
		return variants
	}

	initials := make([]string, len(firstNames))
	for i, n := range firstNames {
		initials[i] = string([]rune(n)[0]) + "."
	}

	spaced := strings.Join(initials, " ")
	compact := strings.Join(initials, "")
	variants = append(variants,
		last+", "+spaced, spaced+" "+last,
		last+", "+compact, compact+" "+last,
	)

	if len(firstNames) > 1 {
		first := initials[0]
		variants = append(variants, last+", "+first, first+" "+last)
	}
	return variants
}

func splitSites(s string) []string {
	var sites []string
	for _, part := range strings.Split(s, " and ") {
		if part = strings.TrimSpace(part); part != "" {
			sites = append(sites, part)
		}
	}
	return sites
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
