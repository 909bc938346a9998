package model

import "time"

// Config is the complete leadscout configuration. It is built once at the
// call site and passed into pipeline construction; nothing reads ambient
// globals after startup.
type Config struct {
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Classifier  ClassifierConfig  `yaml:"classifier"`
	Exclusion   ExclusionConfig   `yaml:"exclusion"`
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Output      OutputConfig      `yaml:"output"`
}

// SearchConfig configures the search provider
type SearchConfig struct {
	APIKey            string `yaml:"api_key,omitempty"`
	BaseURL           string `yaml:"base_url,omitempty"`
	MaxResults        int    `yaml:"max_results"`
	IncludeRawContent bool   `yaml:"include_raw_content"`
	HunterEnabled     bool   `yaml:"hunter_enabled"` // Second narrower search when phone+email both empty
}

// LLMConfig configures the extraction model provider
type LLMConfig struct {
	Provider    string `yaml:"provider"` // "openai" or "" (disabled)
	Model       string `yaml:"model"`
	APIKey      string `yaml:"api_key,omitempty"`
	BaseURL     string `yaml:"base_url,omitempty"` // OpenAI-compatible endpoint
	Timeout     int    `yaml:"timeout"`            // Seconds
	MaxTokens   int    `yaml:"max_tokens"`
	MaxAttempts int    `yaml:"max_attempts"` // Retry budget on rate limiting
	MaxChars    int    `yaml:"max_chars"`    // Page text truncation for the prompt
}

// ClassifierConfig controls number disambiguation
type ClassifierConfig struct {
	// StrictPhone requires a phone candidate to start with "0" and be
	// exactly 9 or 10 digits. When false any non-fax candidate with 8+
	// digits passes. The two policies are never blended.
	StrictPhone bool `yaml:"strict_phone"`
	// VerifyTaxID enables the GUI number checksum on 8-digit candidates
	VerifyTaxID bool `yaml:"verify_tax_id"`
	// ForeignPrefixes are leading digit sequences rejected outright
	ForeignPrefixes []string `yaml:"foreign_prefixes"`
}

// ExclusionConfig is the out-of-scope source filter
type ExclusionConfig struct {
	TLDs        []string `yaml:"tlds"`         // Foreign top-level domains, e.g. ".cn"
	Hosts       []string `yaml:"hosts"`        // Aggregator/directory domains
	Extensions  []string `yaml:"extensions"`   // Disallowed file extensions, e.g. ".pdf"
	RequireSite bool     `yaml:"require_site"` // Drop non-company pages flagged by the model
}

// HTTPConfig configures the local page reader
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	RespectRobots bool          `yaml:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty"`
	NoProxy       string        `yaml:"no_proxy,omitempty"`
}

// CacheConfig configures search/reader response caching
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	TTL     time.Duration `yaml:"ttl"`
}

// ConcurrencyConfig bounds the worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"`
}

// RateLimitConfig paces outbound calls per host
type RateLimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	BurstSize         int           `yaml:"burst_size"`
	PolitenessDelay   time.Duration `yaml:"politeness_delay"` // Extra gap between analyses
}

// OutputConfig controls export behavior
type OutputConfig struct {
	// StrictMode drops any record lacking both phone and email
	StrictMode bool `yaml:"strict_mode"`
	Dir        string `yaml:"dir"`
	Verbose    bool   `yaml:"verbose"`
}

// DefaultConfig returns sensible defaults for the Taiwan jurisdiction
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			MaxResults:        5,
			IncludeRawContent: true,
			HunterEnabled:     true,
		},
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			Timeout:     30,
			MaxTokens:   1000,
			MaxAttempts: 3,
			MaxChars:    30000,
		},
		Classifier: ClassifierConfig{
			StrictPhone:     true,
			VerifyTaxID:     false,
			ForeignPrefixes: []string{"020", "021"},
		},
		Exclusion: ExclusionConfig{
			TLDs:        []string{".cn"},
			Hosts:       []string{"facebook.com", "104.com.tw", "1111.com.tw", "yellowpages.com.tw", "wikipedia.org"},
			Extensions:  []string{".pdf", ".doc", ".docx", ".xls", ".xlsx", ".zip"},
			RequireSite: true,
		},
		HTTP: HTTPConfig{
			Timeout:       20 * time.Second,
			UserAgent:     "Leadscout/0.1 (+https://github.com/wilson66200519-bit/leadscout)",
			MaxBodyBytes:  2_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     "",
			TTL:     24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 5,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 1.0,
			BurstSize:         3,
			PolitenessDelay:   time.Second,
		},
		Output: OutputConfig{
			StrictMode: false,
			Dir:        ".",
		},
	}
}
