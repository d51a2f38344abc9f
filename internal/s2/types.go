package s2

// Paper is a Semantic Scholar Graph API paper record. Only the fields
// the pipeline consumes are decoded; unknown fields are ignored.
type Paper struct {
	PaperID          string         `json:"paperId"`
	Title            string         `json:"title"`
	Abstract         string         `json:"abstract"`
	URL              string         `json:"url"`
	Year             int            `json:"year"`
	Venue            string         `json:"venue"`
	Authors          []Author       `json:"authors,omitempty"`
	ExternalIDs      ExternalIDs    `json:"externalIds"`
	OpenAccessPDF    *OpenAccessPDF `json:"openAccessPdf,omitempty"`
	PublicationTypes []string       `json:"publicationTypes,omitempty"`
	CitationStyles   CitationStyles `json:"citationStyles"`
}

// Author is a paper author.
type Author struct {
	AuthorID string `json:"authorId,omitempty"`
	Name     string `json:"name"`
}

// ExternalIDs maps external identifier systems to their values.
type ExternalIDs struct {
	DOI   string `json:"DOI,omitempty"`
	ArXiv string `json:"ArXiv,omitempty"`
}

// OpenAccessPDF points at an open-access mirror of the paper.
type OpenAccessPDF struct {
	URL string `json:"url"`
}

// CitationStyles carries pre-rendered citations from the API.
type CitationStyles struct {
	BibTeX string `json:"bibtex,omitempty"`
}

// searchResponse is the envelope of the paper search endpoint.
type searchResponse struct {
	Total  int     `json:"total"`
	Offset int     `json:"offset"`
	Data   []Paper `json:"data"`
}
