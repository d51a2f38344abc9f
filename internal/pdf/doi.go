// Package pdf pulls identifying metadata out of paper PDFs so they can
// be matched against the catalog records.
package pdf

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiScanPages is how many leading pages are searched; the DOI is
// nearly always on the first page.
const doiScanPages = 3

var doiRegex = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// ExtractDOI scans the opening pages of a PDF for a DOI. A PDF without
// a recognizable DOI yields "" and no error.
func ExtractDOI(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	pages := doiScanPages
	if r.NumPage() < pages {
		pages = r.NumPage()
	}

	for i := 1; i <= pages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if doi := findDOI(text); doi != "" {
			return doi, nil
		}
	}
	return "", nil
}

// GuessTitle returns the first substantial line of the first page, our
// best stand-in for a title when the PDF carries no DOI.
func GuessTitle(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", nil
	}
	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !looksLikeBoilerplate(line) {
			return line, nil
		}
	}
	return "", nil
}

// findDOI returns the first plausible DOI in text, with trailing
// punctuation stripped.
func findDOI(text string) string {
	for _, m := range doiRegex.FindAllString(text, -1) {
		m = strings.TrimRight(m, ".,;:)")
		if plausibleDOI(m) {
			return m
		}
	}
	return ""
}

func plausibleDOI(doi string) bool {
	if len(doi) < 10 || !strings.HasPrefix(doi, "10.") {
		return false
	}
	slash := strings.Index(doi, "/")
	return slash != -1 && slash < len(doi)-1
}

// looksLikeBoilerplate flags running headers and copyright lines that
// beat the title to the top of the page.
func looksLikeBoilerplate(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "journal"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "copyright"), strings.Contains(lower, "©"):
		return true
	case strings.Contains(lower, "proceedings of"):
		return true
	}
	return false
}
