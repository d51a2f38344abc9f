package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dvrk-community/bibkeep/internal/cache"
	"github.com/dvrk-community/bibkeep/internal/s2"
)

// DefaultSearchLimit is how many title-search candidates are requested
// for scoring.
const DefaultSearchLimit = 5

// Lookup resolves a paper's metadata through the cache first and the
// API second. In reprocess mode the network is never touched: whatever
// the cache holds is the data, and a miss is a hard "no data".
type Lookup struct {
	Client      *s2.Client
	Cache       *cache.Cache
	Reprocess   bool
	SearchLimit int

	// Log receives one-line notes about degraded operations (cache
	// write failures, terminal API errors). Defaults to discarding.
	Log io.Writer
}

// Find returns the best metadata record for the given local title and
// DOI, or nil when nothing usable could be obtained. The DOI lookup is
// tried first when a local DOI exists; a title search validated by the
// scorer is the fallback. Find only fails on context cancellation;
// every per-entry problem degrades to (nil, nil).
func (l *Lookup) Find(ctx context.Context, title, doi string) (*s2.Paper, error) {
	if doi != "" {
		paper, err := l.byDOI(ctx, doi)
		if err != nil {
			return nil, err
		}
		if paper != nil {
			return paper, nil
		}
	}

	if title == "" {
		return nil, nil
	}

	candidates, err := l.byTitle(ctx, title)
	if err != nil {
		return nil, err
	}
	idx, accepted, score := BestCandidate(title, candidates)
	if idx == -1 || !accepted {
		if idx != -1 {
			l.logf("rejected best candidate for %q (score %.2f)", title, score)
		}
		return nil, nil
	}
	return &candidates[idx], nil
}

// byDOI resolves a DOI-exact lookup through cache then API.
func (l *Lookup) byDOI(ctx context.Context, doi string) (*s2.Paper, error) {
	key := cache.DOIKey(doi)
	if payload, ok := l.cacheGet(key); ok {
		var paper s2.Paper
		if err := json.Unmarshal(payload, &paper); err == nil {
			return &paper, nil
		}
		l.logf("discarding unreadable cache record for %s", key)
	}
	if l.Reprocess {
		return nil, nil
	}

	paper, err := l.Client.PaperByDOI(ctx, doi)
	if err != nil {
		return nil, l.degrade(ctx, "DOI "+doi, err)
	}
	l.cachePut(key, paper)
	return paper, nil
}

// byTitle resolves a title search through cache then API. The cached
// payload is the whole candidate list so reprocess runs can re-score
// offline.
func (l *Lookup) byTitle(ctx context.Context, title string) ([]s2.Paper, error) {
	key := cache.TitleKey(title)
	if payload, ok := l.cacheGet(key); ok {
		var candidates []s2.Paper
		if err := json.Unmarshal(payload, &candidates); err == nil {
			return candidates, nil
		}
		l.logf("discarding unreadable cache record for %s", key)
	}
	if l.Reprocess {
		return nil, nil
	}

	limit := l.SearchLimit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	candidates, err := l.Client.SearchByTitle(ctx, title, limit)
	if err != nil {
		return nil, l.degrade(ctx, "title "+title, err)
	}
	l.cachePut(key, candidates)
	return candidates, nil
}

// degrade maps per-lookup failures to "no data" so a single entry can
// never sink the run. Context cancellation is the one error that
// propagates. A 404 leaves no cache record behind, so a later run with
// a fresh window retries the fetch.
func (l *Lookup) degrade(ctx context.Context, what string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	switch {
	case s2.IsNotFound(err):
		// Confirmed absent; nothing to report.
	default:
		l.logf("lookup failed for %s: %v", what, err)
	}
	return nil
}

// cacheGet reads through the freshness window, or through GetAny in
// reprocess mode where any record on disk counts.
func (l *Lookup) cacheGet(key string) ([]byte, bool) {
	if l.Cache == nil {
		return nil, false
	}
	if l.Reprocess {
		return l.Cache.GetAny(key)
	}
	return l.Cache.Get(key)
}

// cachePut persists a fetched record, logging and continuing on failure.
func (l *Lookup) cachePut(key string, v any) {
	if l.Cache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		l.logf("encoding cache record for %s: %v", key, err)
		return
	}
	if err := l.Cache.Put(key, payload); err != nil {
		l.logf("persisting cache record for %s: %v", key, err)
	}
}

func (l *Lookup) logf(format string, args ...any) {
	if l.Log == nil {
		return
	}
	fmt.Fprintf(l.Log, format+"\n", args...)
}
