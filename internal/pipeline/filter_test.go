package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

func testExclusionConfig() model.ExclusionConfig {
	return model.ExclusionConfig{
		TLDs:        []string{".cn"},
		Hosts:       []string{"facebook.com", "104.com.tw"},
		Extensions:  []string{".pdf", ".xls"},
		RequireSite: true,
	}
}

func TestExclusionFilter(t *testing.T) {
	filter := NewExclusionFilter(testExclusionConfig())

	tests := []struct {
		name     string
		url      string
		excluded bool
		reason   string
	}{
		{"company site passes", "https://www.example.com.tw/contact", false, ""},
		{"foreign TLD", "https://factory.example.cn/about", true, ".cn"},
		{"aggregator host", "https://facebook.com/somepage", true, "facebook.com"},
		{"aggregator subdomain", "https://www.104.com.tw/job/123", true, "104.com.tw"},
		{"pdf link", "https://www.example.com.tw/catalog.pdf", true, ".pdf"},
		{"extension check is case-insensitive", "https://www.example.com.tw/list.XLS", true, ".xls"},
		{"unparsable", "://not-a-url", true, "unparsable"},
		{"host containing excluded name passes", "https://notfacebook.company.tw/", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := filter.Check(tt.url)
			if !tt.excluded {
				if err != nil {
					t.Fatalf("Check(%q) = %v, want nil", tt.url, err)
				}
				return
			}
			var excluded *DomainExcludedError
			if !errors.As(err, &excluded) {
				t.Fatalf("Check(%q) = %v, want *DomainExcludedError", tt.url, err)
			}
			if !strings.Contains(excluded.Reason, tt.reason) {
				t.Errorf("reason %q does not mention %q", excluded.Reason, tt.reason)
			}
		})
	}
}
