package discover

// Candidate is one paper proposed for addition to the bibliography.
type Candidate struct {
	Source  string
	Title   string
	Year    int
	Authors []string
	BibTeX  string
	DOI     string
	URL     string
}
