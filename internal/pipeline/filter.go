package pipeline

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// DomainExcludedError marks a source URL rejected by policy before any
// extraction work is spent on it
type DomainExcludedError struct {
	URL    string
	Reason string
}

func (e *DomainExcludedError) Error() string {
	return fmt.Sprintf("domain excluded: %s (%s)", e.URL, e.Reason)
}

// ExclusionFilter rejects out-of-scope sources: foreign top-level domains,
// known aggregator/directory hosts, and non-page file extensions
type ExclusionFilter struct {
	cfg model.ExclusionConfig
}

// NewExclusionFilter creates a filter from the exclusion policy
func NewExclusionFilter(cfg model.ExclusionConfig) *ExclusionFilter {
	return &ExclusionFilter{cfg: cfg}
}

// Check returns a *DomainExcludedError when the URL is out of scope, nil
// otherwise. An unparsable URL is excluded rather than crashed on.
func (f *ExclusionFilter) Check(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return &DomainExcludedError{URL: rawURL, Reason: "unparsable URL"}
	}

	host := strings.ToLower(parsed.Hostname())

	for _, tld := range f.cfg.TLDs {
		if strings.HasSuffix(host, tld) {
			return &DomainExcludedError{URL: rawURL, Reason: "foreign TLD " + tld}
		}
	}

	for _, excluded := range f.cfg.Hosts {
		if host == excluded || strings.HasSuffix(host, "."+excluded) {
			return &DomainExcludedError{URL: rawURL, Reason: "aggregator host " + excluded}
		}
	}

	if ext := strings.ToLower(path.Ext(parsed.Path)); ext != "" {
		for _, disallowed := range f.cfg.Extensions {
			if ext == disallowed {
				return &DomainExcludedError{URL: rawURL, Reason: "file extension " + ext}
			}
		}
	}

	return nil
}
