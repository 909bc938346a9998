package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/search"
)

// Processor turns one search hit into a finished contact record.
// Implementations must be safe for concurrent use: each call owns its own
// extraction context and record.
type Processor interface {
	ProcessHit(ctx context.Context, hit search.Result) (*model.ContactRecord, error)
}

// HitJob wraps one search hit for the pool
type HitJob struct {
	Hit       search.Result
	Processor Processor
}

// Execute runs the extraction for one hit. A processing failure becomes a
// failed record, never a lost row: the batch always yields one result per
// submitted hit.
func (j *HitJob) Execute(ctx context.Context) Result {
	record, err := j.Processor.ProcessHit(ctx, j.Hit)
	if err != nil {
		return &HitResult{
			URL: j.Hit.URL,
			Record: &model.ContactRecord{
				CompanyName: j.Hit.Title,
				SourceURL:   j.Hit.URL,
				Status:      model.StatusFailed,
				Provenance:  fmt.Sprintf("pipeline error: %v", err),
			},
			Err: err,
		}
	}
	return &HitResult{URL: j.Hit.URL, Record: record}
}

// HitResult is the outcome for one search hit
type HitResult struct {
	URL    string
	Record *model.ContactRecord
	Err    error
}

// GetError returns the processing error, if any
func (r *HitResult) GetError() error {
	return r.Err
}

// BatchProcessor fans search hits out across the worker pool
type BatchProcessor struct {
	processor   Processor
	concurrency int
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(processor Processor, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		processor:   processor,
		concurrency: concurrency,
	}
}

// ProcessHits processes search hits concurrently. A failure on one hit
// never aborts its siblings.
func (b *BatchProcessor) ProcessHits(ctx context.Context, hits []search.Result) []*HitResult {
	if len(hits) == 0 {
		return []*HitResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, hit := range hits {
		pool.Submit(&HitJob{Hit: hit, Processor: b.processor})
	}

	results := pool.Wait()

	hitResults := make([]*HitResult, len(results))
	for i, result := range results {
		hitResults[i] = result.(*HitResult)
	}
	return hitResults
}

// ReadKeywordsFromFile reads search keywords from a file, one per line.
// Blank lines and #-comments are skipped; duplicates are dropped.
func ReadKeywordsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var keywords []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			keywords = append(keywords, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return keywords, nil
}
