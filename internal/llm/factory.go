package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a model provider based on configuration. An empty
// provider name disables model extraction entirely; the pipeline then
// runs on pattern matching alone.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "openai", "gemini":
		// Gemini is reached through its OpenAI-compatible endpoint
		return NewOpenAIProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, gemini)", config.Provider)
	}
}
