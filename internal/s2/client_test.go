package s2

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newTestClient builds a client pointed at ts with a fast limiter so
// retry paths don't sleep for real.
func newTestClient(ts *httptest.Server) *Client {
	return NewClient(
		WithBaseURL(ts.URL),
		WithHTTPClient(ts.Client()),
		WithLimiter(NewAdaptiveLimiter(time.Millisecond, 2*time.Millisecond, 3*time.Millisecond)),
	)
}

func TestPaperByDOI_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery == "" {
			t.Errorf("expected fields query param, got none")
		}
		w.Write([]byte(`{
			"paperId": "abc123",
			"title": "Autonomous Suturing",
			"abstract": "Demo.",
			"url": "https://www.semanticscholar.org/paper/abc123",
			"externalIds": {"DOI": "10.1000/x", "ArXiv": "2101.00001"},
			"openAccessPdf": {"url": "https://example.org/paper.pdf"},
			"publicationTypes": ["JournalArticle"]
		}`))
	}))
	defer ts.Close()

	paper, err := newTestClient(ts).PaperByDOI(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatalf("PaperByDOI() error: %v", err)
	}
	if paper.Title != "Autonomous Suturing" {
		t.Errorf("Title = %q", paper.Title)
	}
	if paper.ExternalIDs.DOI != "10.1000/x" {
		t.Errorf("DOI = %q", paper.ExternalIDs.DOI)
	}
	if paper.OpenAccessPDF == nil || paper.OpenAccessPDF.URL != "https://example.org/paper.pdf" {
		t.Errorf("OpenAccessPDF = %+v", paper.OpenAccessPDF)
	}
}

func TestPaperByDOI_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).PaperByDOI(context.Background(), "10.1000/missing")
	if !IsNotFound(err) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPaperByDOI_ServerErrorIsDistinctFromNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).PaperByDOI(context.Background(), "10.1000/x")
	if IsNotFound(err) {
		t.Fatalf("500 must not be reported as not-found: %v", err)
	}
	apiErr, ok := IsAPIError(err)
	if !ok {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestGet_RateLimitedThenSuccess(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"paperId": "abc", "title": "T", "externalIds": {}}`))
	}))
	defer ts.Close()

	lim := NewAdaptiveLimiter(time.Millisecond, 2*time.Millisecond, 3*time.Millisecond)
	c := NewClient(WithBaseURL(ts.URL), WithHTTPClient(ts.Client()), WithLimiter(lim))

	paper, err := c.PaperByDOI(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatalf("PaperByDOI() error: %v", err)
	}
	if paper.PaperID != "abc" {
		t.Errorf("PaperID = %q", paper.PaperID)
	}
	if calls != 3 {
		t.Errorf("expected 3 requests, got %d", calls)
	}
	// Success resets the ladder.
	if lim.Delay() != time.Millisecond {
		t.Errorf("delay after success = %v, want base", lim.Delay())
	}
}

func TestGet_ExhaustsAttemptsOn429(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).PaperByDOI(context.Background(), "10.1000/x")
	if !IsNotFound(err) {
		t.Errorf("exhausted attempts should report not-found, got %v", err)
	}
	if calls != MaxAttempts {
		t.Errorf("expected %d requests, got %d", MaxAttempts, calls)
	}
}

func TestGet_TransportErrorRetries(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Kill the connection so the client sees a transport error.
			hj, ok := w.(http.Hijacker)
			if !ok {
				t.Error("server does not support hijacking")
				return
			}
			conn, _, _ := hj.Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{"paperId": "abc", "title": "T", "externalIds": {}}`))
	}))
	defer ts.Close()

	paper, err := newTestClient(ts).PaperByDOI(context.Background(), "10.1000/x")
	if err != nil {
		t.Fatalf("PaperByDOI() after transport retry: %v", err)
	}
	if paper.PaperID != "abc" {
		t.Errorf("PaperID = %q", paper.PaperID)
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestSearchByTitle(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("query") != "Autonomous Suturing" {
			t.Errorf("query = %q", q.Get("query"))
		}
		if q.Get("limit") != "5" {
			t.Errorf("limit = %q", q.Get("limit"))
		}
		w.Write([]byte(`{"total": 2, "data": [
			{"paperId": "p1", "title": "Autonomous Suturing", "externalIds": {"DOI": "10.1/a"}},
			{"paperId": "p2", "title": "Something Else", "externalIds": {}}
		]}`))
	}))
	defer ts.Close()

	papers, err := newTestClient(ts).SearchByTitle(context.Background(), "Autonomous Suturing", 5)
	if err != nil {
		t.Fatalf("SearchByTitle() error: %v", err)
	}
	if len(papers) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(papers))
	}
	if papers[0].PaperID != "p1" {
		t.Errorf("candidate order not preserved: %q first", papers[0].PaperID)
	}
}

func TestSearchPapers_YearRange(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("year"); got != "2021-2025" {
			t.Errorf("year = %q, want 2021-2025", got)
		}
		w.Write([]byte(`{"total": 1, "data": [
			{"paperId": "p1", "title": "dVRK Study", "year": 2023,
			 "authors": [{"name": "Jane Smith"}],
			 "externalIds": {"DOI": "10.1/d"},
			 "citationStyles": {"bibtex": "@article{x,\n}"}}
		]}`))
	}))
	defer ts.Close()

	papers, err := newTestClient(ts).SearchPapers(context.Background(), "dVRK", "2021-2025", 100)
	if err != nil {
		t.Fatalf("SearchPapers() error: %v", err)
	}
	if len(papers) != 1 {
		t.Fatalf("expected 1 result, got %d", len(papers))
	}
	if papers[0].CitationStyles.BibTeX == "" {
		t.Error("citationStyles.bibtex not decoded")
	}
	if len(papers[0].Authors) != 1 || papers[0].Authors[0].Name != "Jane Smith" {
		t.Errorf("authors = %+v", papers[0].Authors)
	}
}

func TestPaperByDOI_ContextCancelled(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(ts).PaperByDOI(ctx, "10.1000/x")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
