package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/wilson66200519-bit/leadscout/internal/cache"
	"github.com/wilson66200519-bit/leadscout/internal/export"
	"github.com/wilson66200519-bit/leadscout/internal/llm"
	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/pipeline"
	"github.com/wilson66200519-bit/leadscout/internal/search"
)

// geminiBaseURL is Gemini's OpenAI-compatible endpoint
const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"

// loadConfig builds the effective configuration: defaults overlaid with
// whatever viper picked up from the config file and LEADSCOUT_* env vars.
// Flags are applied on top by the command that owns them.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveSecrets fills API keys from the environment when the config left
// them empty
func resolveSecrets(cfg *model.Config) error {
	if cfg.Search.APIKey == "" {
		cfg.Search.APIKey = os.Getenv("TAVILY_API_KEY")
	}
	if cfg.Search.APIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY environment variable not set")
	}

	switch cfg.LLM.Provider {
	case "openai":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "gemini":
		if cfg.LLM.APIKey == "" {
			cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		if cfg.LLM.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY environment variable not set")
		}
		if cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = geminiBaseURL
		}
	case "":
		// Model extraction disabled, pattern matching only
	}
	return nil
}

// newStore builds the cache backend, nil when caching is off
func newStore(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	if cfg.Cache.Dir != "" {
		return cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
}

// newPipeline wires search, model provider, and cache into a pipeline
func newPipeline(cfg *model.Config) (*pipeline.Pipeline, error) {
	store := newStore(cfg)

	opts := []search.Option{
		search.WithMaxResults(cfg.Search.MaxResults),
		search.WithRawContent(cfg.Search.IncludeRawContent),
	}
	if cfg.Search.BaseURL != "" {
		opts = append(opts, search.WithBaseURL(cfg.Search.BaseURL))
	}
	if store != nil {
		opts = append(opts, search.WithCache(store, cfg.Cache.TTL))
	}
	searcher := search.NewClient(cfg.Search.APIKey, opts...)

	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, err
	}

	return pipeline.New(cfg, searcher, provider, store), nil
}

// exportRecords applies strict mode and writes the spreadsheet, returning
// the output path. The default filename carries the (sanitized) keyword so
// parallel hunts do not overwrite each other.
func exportRecords(records []*model.ContactRecord, cfg *model.Config, outPath, prefix, format string) (string, error) {
	if cfg.Output.StrictMode {
		records = pipeline.FilterStrict(records)
	}

	if outPath == "" {
		outPath = filepath.Join(cfg.Output.Dir, export.TimestampedName(sanitizeFilename(prefix), "."+format))
	}

	switch format {
	case "xlsx":
		if err := export.WriteXLSX(outPath, records); err != nil {
			return "", err
		}
	case "csv":
		if err := export.WriteCSV(outPath, records); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unknown output format: %s (supported: xlsx, csv)", format)
	}
	return outPath, nil
}

// sanitizeFilename turns a keyword into a safe filename fragment
func sanitizeFilename(s string) string {
	if s == "" {
		return "leads"
	}
	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "_",
	)
	return replacer.Replace(s)
}

// recordMark returns the status glyph for one record line
func recordMark(status model.Status) string {
	switch status {
	case model.StatusExtracted:
		return "✓"
	case model.StatusPartiallyExtracted:
		return "~"
	case model.StatusExcluded:
		return "-"
	default:
		return "✗"
	}
}
