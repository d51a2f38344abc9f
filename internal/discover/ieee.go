package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	// IEEEBaseURL is the IEEE Xplore metadata search endpoint.
	IEEEBaseURL = "https://ieeexploreapi.ieee.org/api/v1/search/articles"

	// ieeeMaxRetries bounds one search request.
	ieeeMaxRetries = 3

	// ieeeRetryDelay is the initial backoff, doubled on each retry.
	ieeeRetryDelay = 5 * time.Second
)

// IEEEClient queries the IEEE Xplore metadata API.
type IEEEClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	sleep      func(context.Context, time.Duration) error
}

// IEEEOption configures an IEEEClient.
type IEEEOption func(*IEEEClient)

// WithIEEEHTTPClient sets a custom HTTP client.
func WithIEEEHTTPClient(hc *http.Client) IEEEOption {
	return func(c *IEEEClient) {
		c.httpClient = hc
	}
}

// WithIEEEBaseURL sets a custom base URL (for testing).
func WithIEEEBaseURL(url string) IEEEOption {
	return func(c *IEEEClient) {
		c.baseURL = url
	}
}

// WithIEEESleep replaces the backoff sleep (for testing).
func WithIEEESleep(fn func(context.Context, time.Duration) error) IEEEOption {
	return func(c *IEEEClient) {
		c.sleep = fn
	}
}

// NewIEEEClient creates an IEEE Xplore client. The API key is required
// by the service; callers without one should not construct a client.
func NewIEEEClient(apiKey string, opts ...IEEEOption) *IEEEClient {
	c := &IEEEClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiKey:     apiKey,
		baseURL:    IEEEBaseURL,
		sleep:      sleepCtx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type ieeeResponse struct {
	TotalRecords int           `json:"total_records"`
	Articles     []ieeeArticle `json:"articles"`
}

type ieeeArticle struct {
	Title           string `json:"title"`
	DOI             string `json:"doi"`
	PublicationYear string `json:"publication_year"`
	PDFURL          string `json:"pdf_url"`
	Authors         struct {
		Authors []struct {
			FullName string `json:"full_name"`
		} `json:"authors"`
	} `json:"authors"`
}

// Search runs one metadata query over a year range and returns the
// matching articles as candidates. Rate limiting and server errors are
// retried with doubling delays; other failures are terminal.
func (c *IEEEClient) Search(ctx context.Context, query string, startYear, endYear int) ([]Candidate, error) {
	params := url.Values{
		"apikey":      {c.apiKey},
		"format":      {"json"},
		"max_records": {"100"},
		"start_year":  {fmt.Sprintf("%d", startYear)},
		"end_year":    {fmt.Sprintf("%d", endYear)},
		"querytext":   {query},
	}

	body, err := c.fetchWithRetry(ctx, c.baseURL+"?"+params.Encode())
	if err != nil {
		return nil, err
	}

	var resp ieeeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing IEEE response: %w", err)
	}

	var found []Candidate
	for _, a := range resp.Articles {
		cand := Candidate{
			Source: "IEEE Xplore",
			Title:  a.Title,
			DOI:    a.DOI,
			URL:    a.PDFURL,
		}
		fmt.Sscanf(a.PublicationYear, "%d", &cand.Year)
		for _, au := range a.Authors.Authors {
			cand.Authors = append(cand.Authors, au.FullName)
		}
		found = append(found, cand)
	}
	return found, nil
}

func (c *IEEEClient) fetchWithRetry(ctx context.Context, reqURL string) ([]byte, error) {
	delay := ieeeRetryDelay
	var lastErr error

	for attempt := 0; attempt < ieeeMaxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if serr := c.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if readErr != nil {
				return nil, readErr
			}
			return body, nil

		case resp.StatusCode == http.StatusTooManyRequests,
			resp.StatusCode >= 500:
			lastErr = fmt.Errorf("IEEE Xplore status %d", resp.StatusCode)
			if serr := c.sleep(ctx, delay); serr != nil {
				return nil, serr
			}
			delay *= 2

		default:
			return nil, fmt.Errorf("IEEE Xplore status %d: %s", resp.StatusCode, body)
		}
	}
	return nil, fmt.Errorf("IEEE Xplore retries exhausted: %w", lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
