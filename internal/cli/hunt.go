package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

var (
	maxResults      int
	outPath         string
	outFormat       string
	strictMode      bool
	noHunter        bool
	noCache         bool
	llmProvider     string
	llmModel        string
	huntTimeout     time.Duration
	permissivePhone bool
	verifyTaxID     bool
)

// huntCmd represents the hunt command
var huntCmd = &cobra.Command{
	Use:   "hunt <keyword>",
	Short: "Search one keyword and extract company contacts",
	Long: `Hunt runs the full extraction sequence for one search keyword:
- Web search with full page content
- Domain exclusion (foreign TLDs, directories, job boards)
- Deterministic extraction of phone, fax, email, and tax ID
- Model confirmation of the extracted fields
- A second, narrower search when a company still has no phone or email

Example:
  leadscout hunt "廢水處理 工程 公司"
  leadscout hunt "廢水處理 工程 公司" --max-results 10 --out leads.xlsx
  leadscout hunt "廢水處理 工程 公司" --llm-provider gemini --strict`,
	Args: cobra.ExactArgs(1),
	RunE: runHunt,
}

func init() {
	rootCmd.AddCommand(huntCmd)

	// Search flags
	huntCmd.Flags().IntVar(&maxResults, "max-results", 5, "search hits to process per keyword (1-20)")
	huntCmd.Flags().BoolVar(&noHunter, "no-hunter", false, "disable the second-pass search for contactless records")
	huntCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh searches and fetches)")
	huntCmd.Flags().DurationVar(&huntTimeout, "timeout", 5*time.Minute, "overall timeout for the hunt")

	// Classifier flags
	huntCmd.Flags().BoolVar(&permissivePhone, "permissive-phone", false, "accept phone candidates without a leading zero")
	huntCmd.Flags().BoolVar(&verifyTaxID, "verify-tax-id", false, "verify the tax ID checksum before accepting it")

	// LLM flags
	huntCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, gemini, none)")
	huntCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")

	// Output flags
	huntCmd.Flags().StringVar(&outPath, "out", "", "output path (default: leads_<timestamp>.<format>)")
	huntCmd.Flags().StringVar(&outFormat, "format", "xlsx", "output format (xlsx, csv)")
	huntCmd.Flags().BoolVar(&strictMode, "strict", false, "drop records lacking both phone and email")
}

func runHunt(cmd *cobra.Command, args []string) error {
	keyword := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), huntTimeout)
	defer cancel()

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Keyword: %s\n", keyword)
		fmt.Fprintf(os.Stderr, "Max results: %d\n", cfg.Search.MaxResults)
		fmt.Fprintf(os.Stderr, "Hunter: %v\n", cfg.Search.HunterEnabled)
		fmt.Fprintf(os.Stderr, "LLM: %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintln(os.Stderr)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	records, err := p.Hunt(ctx, keyword)
	if err != nil {
		return fmt.Errorf("hunt failed: %w", err)
	}

	for _, record := range records {
		fmt.Fprintf(os.Stderr, "%s %s (%s)\n", recordMark(record.Status), record.SourceURL, record.Status)
	}

	path, err := exportRecords(records, cfg, outPath, keyword, outFormat)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n✓ Wrote %d records to %s\n", len(records), path)
	return nil
}

// buildConfig assembles the effective configuration: defaults, then the
// config file and LEADSCOUT_* env vars via viper, then explicitly set
// flags, then API keys from the environment
func buildConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("max-results") {
		cfg.Search.MaxResults = maxResults
	}
	if flags.Changed("no-hunter") {
		cfg.Search.HunterEnabled = !noHunter
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("permissive-phone") {
		cfg.Classifier.StrictPhone = !permissivePhone
	}
	if flags.Changed("verify-tax-id") {
		cfg.Classifier.VerifyTaxID = verifyTaxID
	}
	if flags.Changed("strict") {
		cfg.Output.StrictMode = strictMode
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if cfg.LLM.Provider == "none" {
		cfg.LLM.Provider = ""
	}
	cfg.Output.Verbose = verbose

	if err := resolveSecrets(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
