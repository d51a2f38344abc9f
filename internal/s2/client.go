package s2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	// BaseURL is the Semantic Scholar Graph API base URL.
	BaseURL = "https://api.semanticscholar.org/graph/v1"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// MaxAttempts bounds one logical lookup. Rate-limit retries and
	// transport retries both count against it.
	MaxAttempts = 5

	// paperFields are the fields requested for single-paper lookups.
	paperFields = "url,externalIds,title,abstract,openAccessPdf,publicationTypes"

	// searchFields are the fields requested for title searches.
	searchFields = "url,externalIds,title,year,abstract,openAccessPdf,publicationTypes"

	// discoverFields are the fields requested for relevance searches.
	discoverFields = "title,authors,year,venue,externalIds,citationStyles,url"

	// maxErrorBody caps how much of an error response body is kept.
	maxErrorBody = 512
)

// Client is an adaptively rate-limited HTTP client for the Semantic
// Scholar Graph API. Every request waits on the shared limiter before
// going out, so the delay state carries across lookups within a run.
type Client struct {
	httpClient *http.Client
	limiter    *AdaptiveLimiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithLimiter sets a custom adaptive limiter (for testing, or to share
// delay state between clients).
func WithLimiter(l *AdaptiveLimiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient creates a new Semantic Scholar client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    NewDefaultLimiter(),
		baseURL:    BaseURL,
	}

	// Check for API key in environment
	if key := os.Getenv("S2_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Limiter returns the client's shared limiter.
func (c *Client) Limiter() *AdaptiveLimiter {
	return c.limiter
}

// PaperByDOI fetches one paper by exact DOI. Returns ErrNotFound when
// the API confirms the DOI is unknown.
func (c *Client) PaperByDOI(ctx context.Context, doi string) (*Paper, error) {
	params := url.Values{"fields": {paperFields}}
	body, err := c.get(ctx, "/paper/DOI:"+url.PathEscape(doi), params)
	if err != nil {
		return nil, err
	}

	var paper Paper
	if err := json.Unmarshal(body, &paper); err != nil {
		return nil, fmt.Errorf("%w: parsing paper: %v", ErrInvalidResponse, err)
	}
	if paper.PaperID == "" {
		return nil, ErrNotFound
	}
	return &paper, nil
}

// SearchByTitle runs a relevance search for the given title and returns
// up to limit candidates. An empty result set is not an error; callers
// score the candidates themselves.
func (c *Client) SearchByTitle(ctx context.Context, title string, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = 5
	}

	params := url.Values{
		"query":  {title},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {searchFields},
	}
	body, err := c.get(ctx, "/paper/search", params)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}
	return sr.Data, nil
}

// SearchPapers runs a keyword relevance search over a year range, for
// candidate discovery. yearRange uses the API's "2021-2025" form and may
// be empty.
func (c *Client) SearchPapers(ctx context.Context, query, yearRange string, limit int) ([]Paper, error) {
	if limit <= 0 {
		limit = 100
	}

	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {discoverFields},
	}
	if yearRange != "" {
		params.Set("year", yearRange)
	}

	body, err := c.get(ctx, "/paper/search", params)
	if err != nil {
		return nil, err
	}

	var sr searchResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return nil, fmt.Errorf("%w: parsing search results: %v", ErrInvalidResponse, err)
	}
	return sr.Data, nil
}

// get performs one logical lookup with the adaptive retry protocol:
// wait the current delay, issue the request, then classify the outcome.
// 200 resets the delay and returns the body; 429 climbs the ladder and
// retries; 404 is a definitive ErrNotFound; any other status is a
// terminal APIError; transport failures wait once more and retry.
// Exhausting MaxAttempts reports not-found.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	for attempt := 0; attempt < MaxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("x-api-key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// Transport failure: one extra wait, then retry.
			if werr := c.limiter.Wait(ctx); werr != nil {
				return nil, werr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, fmt.Errorf("%w: %v", ErrNetworkError, readErr)
			}
			c.limiter.Success()
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests:
			c.limiter.Backoff()
			continue

		case resp.StatusCode == http.StatusNotFound:
			return nil, ErrNotFound

		default:
			msg := string(body)
			if len(msg) > maxErrorBody {
				msg = msg[:maxErrorBody]
			}
			return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
		}
	}

	return nil, fmt.Errorf("%d attempts exhausted: %w", MaxAttempts, ErrNotFound)
}
