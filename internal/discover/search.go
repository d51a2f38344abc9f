package discover

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/dvrk-community/bibkeep/internal/s2"
)

// QueryPause spaces out consecutive search queries across providers.
const QueryPause = 2 * time.Second

// Searcher fans a set of keyword queries out to the configured paper
// providers and collects candidates. IEEE is optional; a nil client
// skips that provider.
type Searcher struct {
	S2      *s2.Client
	IEEE    *IEEEClient
	limiter *rate.Limiter

	// Log receives provider progress notes. Defaults to discarding.
	Log io.Writer
}

// NewSearcher creates a Searcher over the given providers.
func NewSearcher(s2c *s2.Client, ieee *IEEEClient) *Searcher {
	return &Searcher{
		S2:      s2c,
		IEEE:    ieee,
		limiter: rate.NewLimiter(rate.Every(QueryPause), 1),
	}
}

// Search runs every query against every provider, in order, pausing
// between queries. Provider failures are logged and skipped so one
// unreachable API does not sink the whole batch.
func (s *Searcher) Search(ctx context.Context, queries []string, yearFrom, yearTo int) ([]Candidate, error) {
	yearRange := fmt.Sprintf("%d-%d", yearFrom, yearTo)
	var found []Candidate

	for _, q := range queries {
		if err := s.limiter.Wait(ctx); err != nil {
			return found, err
		}
		s.logf("Searching Semantic Scholar for %q in %s...", q, yearRange)
		papers, err := s.S2.SearchPapers(ctx, q, yearRange, 100)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			s.logf("Semantic Scholar search failed for %q: %v", q, err)
			continue
		}
		for _, p := range papers {
			found = append(found, fromPaper(p))
		}
	}

	if s.IEEE == nil {
		return found, nil
	}

	for _, q := range queries {
		if err := s.limiter.Wait(ctx); err != nil {
			return found, err
		}
		s.logf("Searching IEEE Xplore for %q from %d to %d...", q, yearFrom, yearTo)
		articles, err := s.IEEE.Search(ctx, q, yearFrom, yearTo)
		if err != nil {
			if ctx.Err() != nil {
				return found, ctx.Err()
			}
			s.logf("IEEE Xplore search failed for %q: %v", q, err)
			continue
		}
		found = append(found, articles...)
	}
	return found, nil
}

func fromPaper(p s2.Paper) Candidate {
	c := Candidate{
		Source: "Semantic Scholar",
		Title:  p.Title,
		Year:   p.Year,
		BibTeX: p.CitationStyles.BibTeX,
		DOI:    p.ExternalIDs.DOI,
		URL:    p.URL,
	}
	for _, a := range p.Authors {
		c.Authors = append(c.Authors, a.Name)
	}
	return c
}

func (s *Searcher) logf(format string, args ...any) {
	if s.Log == nil {
		return
	}
	fmt.Fprintf(s.Log, format+"\n", args...)
}
