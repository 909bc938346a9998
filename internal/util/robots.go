package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker consults robots.txt before the local reader fetches a
// page directly (the search provider's raw_content path never needs it).
// Per-host robots data is cached for the life of the checker.
type RobotsChecker struct {
	httpClient *http.Client
	userAgent  string

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewRobotsChecker creates a robots.txt checker
func NewRobotsChecker(timeout time.Duration, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		hosts:      make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether fetching rawURL is permitted for our agent.
// Unreachable or unparsable robots.txt counts as permission; only an
// explicit disallow blocks the fetch.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	data := r.robotsFor(ctx, parsed)
	if data == nil {
		return true
	}
	return data.TestAgent(parsed.Path, r.userAgent)
}

func (r *RobotsChecker) robotsFor(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	r.mu.Lock()
	data, seen := r.hosts[key]
	r.mu.Unlock()
	if seen {
		return data
	}

	data = r.fetch(ctx, key)

	r.mu.Lock()
	r.hosts[key] = data
	r.mu.Unlock()
	return data
}

// fetch retrieves and parses robots.txt; nil means "no restrictions known"
func (r *RobotsChecker) fetch(ctx context.Context, base string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/robots.txt", base), nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil
	}
	return data
}
