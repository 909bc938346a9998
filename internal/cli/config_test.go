package cli

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestBuildConfig_ViperSettingsApply(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TAVILY_API_KEY", "test-key")

	viper.Set("search.max_results", 9)
	viper.Set("classifier.strict_phone", false)
	viper.Set("rate_limit.politeness_delay", "250ms")
	viper.Set("llm.provider", "none")

	cfg, err := buildConfig(huntCmd)
	if err != nil {
		t.Fatalf("buildConfig() error: %v", err)
	}

	if cfg.Search.MaxResults != 9 {
		t.Errorf("MaxResults = %d, want 9 from viper", cfg.Search.MaxResults)
	}
	if cfg.Classifier.StrictPhone {
		t.Error("StrictPhone should be false from viper")
	}
	if cfg.RateLimit.PolitenessDelay != 250*time.Millisecond {
		t.Errorf("PolitenessDelay = %v, want 250ms from viper", cfg.RateLimit.PolitenessDelay)
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("Provider = %q, want disabled", cfg.LLM.Provider)
	}
}

func TestBuildConfig_FlagOverridesViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("TAVILY_API_KEY", "test-key")

	viper.Set("search.max_results", 9)
	viper.Set("llm.provider", "none")

	if err := huntCmd.Flags().Set("max-results", "12"); err != nil {
		t.Fatal(err)
	}

	cfg, err := buildConfig(huntCmd)
	if err != nil {
		t.Fatalf("buildConfig() error: %v", err)
	}

	if cfg.Search.MaxResults != 12 {
		t.Errorf("MaxResults = %d, want 12: an explicit flag outranks the config file", cfg.Search.MaxResults)
	}
}
