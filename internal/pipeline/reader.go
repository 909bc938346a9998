package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/wilson66200519-bit/leadscout/internal/cache"
	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/util"
)

const readerMaxRetries = 3

// readerSleepFunc is the sleep function used between retries (injectable for tests)
var readerSleepFunc = time.Sleep

// RobotsDisallowedError reports a fetch blocked by the target's robots.txt
type RobotsDisallowedError struct {
	URL string
}

func (e *RobotsDisallowedError) Error() string {
	return fmt.Sprintf("robots.txt disallows fetching %s", e.URL)
}

// Page is the reader's view of a fetched document: the <title> text, the
// body converted to markdown, and the raw HTML kept for mailto scanning
type Page struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	HTML  string `json:"html"`
}

// Reader fetches pages directly when the search provider did not supply
// raw content. It honors robots.txt, bounds body size, and caches page
// text keyed by URL.
type Reader struct {
	http      *http.Client
	userAgent string
	maxBytes  int64
	robots    *util.RobotsChecker
	cache     cache.Cache
	cacheTTL  time.Duration
}

// NewReader creates a page reader from the HTTP policy. A nil store
// disables caching.
func NewReader(cfg model.HTTPConfig, store cache.Cache, ttl time.Duration) *Reader {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy)

	r := &Reader{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		userAgent: cfg.UserAgent,
		maxBytes:  cfg.MaxBodyBytes,
		cache:     store,
		cacheTTL:  ttl,
	}
	if cfg.RespectRobots {
		r.robots = util.NewRobotsChecker(cfg.Timeout, cfg.UserAgent)
	}
	return r
}

// Read fetches and parses one page. Transient failures (throttling,
// server errors, network) are retried with backoff.
func (r *Reader) Read(ctx context.Context, rawURL string) (*Page, error) {
	cacheKey := cache.Key("page", rawURL)
	if r.cache != nil {
		if data, found := r.cache.Get(cacheKey); found {
			var page Page
			if err := json.Unmarshal(data, &page); err == nil {
				return &page, nil
			}
		}
	}

	if r.robots != nil && !r.robots.Allowed(ctx, rawURL) {
		return nil, &RobotsDisallowedError{URL: rawURL}
	}

	var lastErr error
	for attempt := 0; attempt < readerMaxRetries; attempt++ {
		page, retryable, err := r.fetchOnce(ctx, rawURL)
		if err == nil {
			if r.cache != nil {
				if data, mErr := json.Marshal(page); mErr == nil {
					_ = r.cache.Set(cacheKey, data, r.cacheTTL)
				}
			}
			return page, nil
		}
		lastErr = err
		if !retryable {
			break
		}
		if attempt < readerMaxRetries-1 {
			readerSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return nil, lastErr
}

// fetchOnce issues one GET; the bool reports whether a failure is retryable
func (r *Reader) fetchOnce(ctx context.Context, rawURL string) (*Page, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retryable, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if r.maxBytes > 0 {
		body = io.LimitReader(resp.Body, r.maxBytes)
	}

	// Older Taiwanese sites still serve Big5; convert everything to UTF-8
	// before parsing
	decoded, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		decoded = body
	}

	raw, err := io.ReadAll(decoded)
	if err != nil {
		return nil, true, fmt.Errorf("read body of %s: %w", rawURL, err)
	}

	page, err := parsePage(string(raw))
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return page, false, nil
}

// parsePage extracts the title and converts the document body to markdown
// so layout noise (nav, script text) collapses into scannable prose
func parsePage(html string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()
	cleaned, err := doc.Html()
	if err != nil {
		cleaned = html
	}

	text, err := htmltomarkdown.ConvertString(cleaned)
	if err != nil {
		// Fall back to the document's plain text when conversion chokes
		text = doc.Text()
	}

	return &Page{Title: title, Text: text, HTML: html}, nil
}
