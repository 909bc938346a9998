// Package search provides the web-search collaborator: a Tavily API
// client returning title/url/snippet tuples with optional full page text.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wilson66200519-bit/leadscout/internal/cache"
)

const (
	defaultBaseURL    = "https://api.tavily.com"
	searchMaxRetries  = 3
	defaultMaxResults = 5
)

// searchSleepFunc is the sleep function used between retries (injectable for tests)
var searchSleepFunc = time.Sleep

// Result is a single search hit. RawContent is the full page text when the
// provider fetched it on our behalf; Content is the snippet and is always
// scanned for patterns too, because contact data sometimes appears only
// there.
type Result struct {
	Title      string  `json:"title"`
	URL        string  `json:"url"`
	Content    string  `json:"content"`
	RawContent string  `json:"raw_content,omitempty"`
	Score      float64 `json:"score,omitempty"`
}

// Client defines the search provider operations
type Client interface {
	// Search performs a web search for the given free-text query
	Search(ctx context.Context, query string) ([]Result, error)
}

// Option configures the client
type Option func(*httpClient)

// WithBaseURL overrides the API base URL (for testing)
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient overrides the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithMaxResults sets how many hits to request (1-20)
func WithMaxResults(n int) Option {
	return func(c *httpClient) {
		if n >= 1 && n <= 20 {
			c.maxResults = n
		}
	}
}

// WithRawContent asks the provider to fetch full page text for each hit
func WithRawContent(enabled bool) Option {
	return func(c *httpClient) {
		c.includeRawContent = enabled
	}
}

// WithCache caches search responses so repeated keywords do not burn quota
func WithCache(store cache.Cache, ttl time.Duration) Option {
	return func(c *httpClient) {
		c.cache = store
		c.cacheTTL = ttl
	}
}

type httpClient struct {
	apiKey            string
	baseURL           string
	maxResults        int
	includeRawContent bool
	cache             cache.Cache
	cacheTTL          time.Duration
	http              *http.Client
}

// NewClient creates a Tavily search client
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:            apiKey,
		baseURL:           defaultBaseURL,
		maxResults:        defaultMaxResults,
		includeRawContent: true,
		http: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	Query             string `json:"query"`
	MaxResults        int    `json:"max_results"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

type searchResponse struct {
	Results []Result `json:"results"`
}

// Search performs a web search with bounded retries on throttling and
// transient server errors
func (c *httpClient) Search(ctx context.Context, query string) ([]Result, error) {
	cacheKey := cache.Key("search", fmt.Sprintf("%s|%d|%v", query, c.maxResults, c.includeRawContent))
	if c.cache != nil {
		if data, found := c.cache.Get(cacheKey); found {
			var results []Result
			if err := json.Unmarshal(data, &results); err == nil {
				return results, nil
			}
		}
	}

	var lastErr error
	for attempt := 0; attempt < searchMaxRetries; attempt++ {
		results, retryable, err := c.searchOnce(ctx, query)
		if err == nil {
			if c.cache != nil {
				if data, mErr := json.Marshal(results); mErr == nil {
					_ = c.cache.Set(cacheKey, data, c.cacheTTL)
				}
			}
			return results, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		if attempt < searchMaxRetries-1 {
			searchSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return nil, lastErr
}

// searchOnce issues one API call; the bool reports whether a failure is retryable
func (c *httpClient) searchOnce(ctx context.Context, query string) ([]Result, bool, error) {
	body, err := json.Marshal(searchRequest{
		Query:             query,
		MaxResults:        c.maxResults,
		IncludeRawContent: c.includeRawContent,
	})
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, false, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Results, false, nil
}

// HunterQuery builds the narrower second-pass query issued when the first
// pass found neither phone nor email for a company
func HunterQuery(companyName string) string {
	return companyName + " 台灣 電話 email 聯絡方式"
}
