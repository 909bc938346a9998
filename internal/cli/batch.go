package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/worker"
)

var (
	concurrency  int
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Hunt multiple keywords from a file",
	Long: `Batch runs the extraction sequence for every keyword in a file:
- Read keywords from the input file (one per line, # comments allowed)
- Process each keyword's search hits in parallel
- Collect all records into one spreadsheet

Example:
  leadscout batch keywords.txt
  leadscout batch keywords.txt --concurrency 10 --out leads.xlsx
  leadscout batch keywords.txt --strict --format csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 5, "number of concurrent workers per keyword")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Search flags
	batchCmd.Flags().IntVar(&maxResults, "max-results", 5, "search hits to process per keyword (1-20)")
	batchCmd.Flags().BoolVar(&noHunter, "no-hunter", false, "disable the second-pass search for contactless records")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh searches and fetches)")

	// Classifier flags
	batchCmd.Flags().BoolVar(&permissivePhone, "permissive-phone", false, "accept phone candidates without a leading zero")
	batchCmd.Flags().BoolVar(&verifyTaxID, "verify-tax-id", false, "verify the tax ID checksum before accepting it")

	// LLM flags
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, gemini, none)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")

	// Output flags
	batchCmd.Flags().StringVar(&outPath, "out", "", "output path (default: leads_<timestamp>.<format>)")
	batchCmd.Flags().StringVar(&outFormat, "format", "xlsx", "output format (xlsx, csv)")
	batchCmd.Flags().BoolVar(&strictMode, "strict", false, "drop records lacking both phone and email")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	keywords, err := worker.ReadKeywordsFromFile(file)
	if err != nil {
		return fmt.Errorf("read keywords: %w", err)
	}
	if len(keywords) == 0 {
		return fmt.Errorf("no keywords found in %s", file)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Leadscout Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Keywords:     %d\n", len(keywords))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.Workers = concurrency
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	var all []*model.ContactRecord
	extracted := 0
	failures := 0

	for _, keyword := range keywords {
		fmt.Fprintf(os.Stderr, "⚙️  %s\n", keyword)

		records, err := p.Hunt(ctx, keyword)
		if err != nil {
			failures++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", keyword, err)
			continue
		}

		for _, record := range records {
			fmt.Fprintf(os.Stderr, "  %s %s (%s)\n", recordMark(record.Status), record.SourceURL, record.Status)
			if record.Status == model.StatusExtracted {
				extracted++
			}
		}
		all = append(all, records...)
	}

	path, err := exportRecords(all, cfg, outPath, "leads", outFormat)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Keywords:   %d (%d failed)\n", len(keywords), failures)
	fmt.Fprintf(os.Stderr, "  Records:    %d\n", len(all))
	fmt.Fprintf(os.Stderr, "  Extracted:  %d\n", extracted)
	fmt.Fprintf(os.Stderr, "  Output:     %s\n", path)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
