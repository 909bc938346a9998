package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// Provider defines the interface for contact-extraction model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract asks the model to pull contact fields out of page content
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)
}

// ExtractRequest contains the input for one model extraction call
type ExtractRequest struct {
	// Context is the page being analyzed
	Context model.ExtractionContext

	// Backup carries the deterministic pattern-matched candidates; they are
	// embedded in the prompt so the model can confirm rather than invent
	Backup model.CandidateSet

	// Prompt overrides the default prompt when non-empty
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the parsed model output
type ExtractResponse struct {
	// Fields is the structured result; nil when parsing failed
	Fields *Fields

	// Raw is the unparsed model text, kept for provenance notes
	Raw string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Fields is the field->string mapping the model is asked to return.
// Missing keys decode to empty strings, never absent values.
type Fields struct {
	IsCompany   bool   `json:"is_company"`
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Fax         string `json:"fax"`
	Email       string `json:"email"`
	TaxID       string `json:"tax_id"`
}

// RateLimitedError signals provider throttling. The call site owns the
// retry policy; the provider only classifies.
type RateLimitedError struct {
	Provider string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s: rate limited", e.Provider)
}

// MalformedOutputError means the model text did not parse as structured
// data. It is never fatal: the caller falls back to the deterministic
// candidates.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// Config holds model provider configuration
type Config struct {
	// Provider name: "openai" or "" (disabled)
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey authenticates against the endpoint
	APIKey string

	// BaseURL points at any OpenAI-compatible endpoint
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	// MaxTokens for response generation
	MaxTokens int

	// MaxChars truncates page text embedded into the prompt
	MaxChars int
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	return Config{
		Provider:  modelConfig.Provider,
		Model:     modelConfig.Model,
		APIKey:    modelConfig.APIKey,
		BaseURL:   modelConfig.BaseURL,
		Timeout:   modelConfig.Timeout,
		MaxTokens: modelConfig.MaxTokens,
		MaxChars:  modelConfig.MaxChars,
	}
}

// BuildPrompt constructs the default extraction prompt. The backup
// candidate sets ride along so the model confirms pattern-matched data
// instead of hallucinating fresh strings.
func BuildPrompt(ectx model.ExtractionContext, backup model.CandidateSet, maxChars int) string {
	content := ectx.Text
	if maxChars > 0 && len(content) > maxChars {
		// Back up to a rune boundary so a multi-byte character is never
		// split mid-sequence
		cut := maxChars
		for cut > 0 && !utf8.RuneStart(content[cut]) {
			cut--
		}
		content = content[:cut]
	}

	var b strings.Builder
	b.WriteString("You are a strict data-filtering expert analyzing a web page.\n\n")
	fmt.Fprintf(&b, "Target URL: %s\n", ectx.SourceURL)
	if ectx.TitleHint != "" {
		fmt.Fprintf(&b, "Page title: %s\n", ectx.TitleHint)
	}
	fmt.Fprintf(&b, "Page content: %s\n\n", content)

	b.WriteString("Step 1 - decide whether this is a single company's own website.\n")
	b.WriteString("Top-10 roundups, directories, listicles, and blog articles are NOT company sites.\n\n")
	b.WriteString("Step 2 - if it is a company site, extract: company name, phone, fax, email, ")
	b.WriteString("and the 8-digit business registration number (統一編號) when present.\n\n")

	if !backup.IsEmpty() {
		b.WriteString("Pattern-matched candidates found on the page (prefer these over guessing):\n")
		writeCandidates(&b, "emails", backup.Emails)
		writeCandidates(&b, "faxes", backup.Faxes)
		writeCandidates(&b, "phones", backup.Phones)
		writeCandidates(&b, "tax IDs", backup.TaxIDs)
		b.WriteString("\n")
	}

	b.WriteString("Respond with JSON only, no commentary:\n")
	b.WriteString(`{"is_company": true, "company_name": "...", "phone": "...", "fax": "...", "email": "...", "tax_id": "..."}` + "\n")
	b.WriteString(`If it is not a company site respond {"is_company": false}.` + "\n")
	b.WriteString("Use an empty string for any field that is absent. Never invent values.\n")

	return b.String()
}

func writeCandidates(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "- %s: %s\n", label, strings.Join(values, ", "))
}
