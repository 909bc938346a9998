// Package pipeline wires search hits through exclusion, content
// acquisition, pattern extraction, model extraction, and reconciliation
// into finished contact records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wilson66200519-bit/leadscout/internal/cache"
	"github.com/wilson66200519-bit/leadscout/internal/extract"
	"github.com/wilson66200519-bit/leadscout/internal/llm"
	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/normalize"
	"github.com/wilson66200519-bit/leadscout/internal/reconcile"
	"github.com/wilson66200519-bit/leadscout/internal/search"
	"github.com/wilson66200519-bit/leadscout/internal/worker"
)

// llmSleepFunc is the sleep function used between model retries (injectable for tests)
var llmSleepFunc = time.Sleep

// hunterMaxSources caps how many second-pass hits feed the pattern scan
const hunterMaxSources = 3

// Pipeline turns search hits into contact records. One Pipeline is safe
// for concurrent use; every ProcessHit call owns its own state.
type Pipeline struct {
	cfg        *model.Config
	searcher   search.Client
	provider   llm.Provider
	reader     *Reader
	filter     *ExclusionFilter
	extractor  *extract.PatternExtractor
	classifier *extract.Classifier
	reconciler *reconcile.Reconciler
	limiter    *worker.Limiter
}

// New builds a pipeline from its collaborators. A nil provider disables
// model extraction and the pipeline runs pattern-only. A nil store
// disables page caching.
func New(cfg *model.Config, searcher search.Client, provider llm.Provider, store cache.Cache) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		searcher:   searcher,
		provider:   provider,
		reader:     NewReader(cfg.HTTP, store, cfg.Cache.TTL),
		filter:     NewExclusionFilter(cfg.Exclusion),
		extractor:  extract.NewPatternExtractor(),
		classifier: extract.NewClassifier(cfg.Classifier),
		reconciler: reconcile.NewReconciler(),
		limiter:    worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize),
	}
}

// Hunt runs one keyword through search and processes every hit
// concurrently. The returned slice has one record per unique hit; a
// failure on one hit never aborts its siblings.
func (p *Pipeline) Hunt(ctx context.Context, keyword string) ([]*model.ContactRecord, error) {
	hits, err := p.searcher.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", keyword, err)
	}

	hits = dedupeHits(hits)
	if max := p.cfg.Search.MaxResults; max > 0 && len(hits) > max {
		hits = hits[:max]
	}

	batch := worker.NewBatchProcessor(p, p.cfg.Concurrency.Workers)
	results := batch.ProcessHits(ctx, hits)

	records := make([]*model.ContactRecord, 0, len(results))
	for _, result := range results {
		records = append(records, result.Record)
	}
	return records, nil
}

// ProcessHit runs the full extraction sequence for one search hit:
// exclusion check, content acquisition, pattern extraction,
// classification, model extraction, reconciliation, and the hunter
// second pass when the record still lacks both phone and email.
func (p *Pipeline) ProcessHit(ctx context.Context, hit search.Result) (*model.ContactRecord, error) {
	if err := p.filter.Check(hit.URL); err != nil {
		var excluded *DomainExcludedError
		reason := err.Error()
		if errors.As(err, &excluded) {
			reason = excluded.Reason
		}
		return reconcile.ExcludedRecord(hit.URL, hit.Title, reason), nil
	}

	if err := p.limiter.WaitWithDelay(ctx, hit.URL, p.cfg.RateLimit.PolitenessDelay); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	ectx := p.acquireContent(ctx, hit)

	candidates := p.classifier.Classify(p.extractor.Extract(ectx.Text, ectx.RawText))

	fields, modelErr := p.callModel(ctx, ectx, candidates)

	if fields != nil && !fields.IsCompany && p.cfg.Exclusion.RequireSite {
		return reconcile.ExcludedRecord(hit.URL, ectx.TitleHint, "not a company site"), nil
	}

	record := p.reconciler.Reconcile(reconcile.Input{
		Context:    ectx,
		Candidates: candidates,
		Model:      fields,
		ModelErr:   modelErr,
	})

	if p.shouldHunt(record) {
		record = p.hunterPass(ctx, record, ectx, candidates, fields, modelErr)
	}
	return record, nil
}

// acquireContent selects the page text: provider raw content first, then
// a direct fetch, and finally the snippet alone when both are unavailable.
// The snippet is always folded in because contact data sometimes appears
// only there.
func (p *Pipeline) acquireContent(ctx context.Context, hit search.Result) model.ExtractionContext {
	title := hit.Title
	body := hit.RawContent
	rawHTML := ""

	if body == "" {
		page, err := p.reader.Read(ctx, hit.URL)
		if err == nil {
			body = page.Text
			rawHTML = page.HTML
			if page.Title != "" {
				title = page.Title
			}
		}
	}

	combined := strings.TrimSpace(body + "\n" + hit.Content)
	rawText := rawHTML
	if rawText == "" {
		rawText = combined
	}

	return model.ExtractionContext{
		Text:      normalize.Text(combined),
		RawText:   rawText,
		Snippet:   hit.Content,
		SourceURL: hit.URL,
		TitleHint: title,
	}
}

// callModel asks the provider for structured fields, retrying only on
// throttling. Malformed output is not retried: the reconciler falls back
// to the deterministic candidates instead.
func (p *Pipeline) callModel(ctx context.Context, ectx model.ExtractionContext, backup model.CandidateSet) (*llm.Fields, error) {
	if p.provider == nil {
		return nil, nil
	}

	req := llm.ExtractRequest{
		Context:   ectx,
		Backup:    backup,
		Model:     p.cfg.LLM.Model,
		MaxTokens: p.cfg.LLM.MaxTokens,
	}

	attempts := p.cfg.LLM.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		resp, err := p.provider.Extract(ctx, req)
		if err == nil {
			return resp.Fields, nil
		}
		lastErr = err

		var throttled *llm.RateLimitedError
		if !errors.As(err, &throttled) {
			break
		}
		if attempt < attempts-1 {
			llmSleepFunc(time.Duration(1<<uint(attempt)) * time.Second)
		}
	}
	return nil, lastErr
}

// shouldHunt reports whether the hunter second pass applies
func (p *Pipeline) shouldHunt(record *model.ContactRecord) bool {
	return p.cfg.Search.HunterEnabled &&
		record.Status != model.StatusExcluded &&
		!record.HasContact() &&
		record.CompanyName != ""
}

// hunterPass issues a narrower company-name search and scans the new
// hits with patterns only, then reconciles again with the merged
// candidate pool. The model is never called a second time.
func (p *Pipeline) hunterPass(ctx context.Context, record *model.ContactRecord, ectx model.ExtractionContext, candidates model.CandidateSet, fields *llm.Fields, modelErr error) *model.ContactRecord {
	hits, err := p.searcher.Search(ctx, search.HunterQuery(record.CompanyName))
	if err != nil {
		record.Provenance = appendNote(record.Provenance, fmt.Sprintf("hunter:failed (%v)", err))
		return record
	}

	var texts []string
	for _, hit := range hits {
		if len(texts) >= hunterMaxSources {
			break
		}
		if p.filter.Check(hit.URL) != nil {
			continue
		}
		texts = append(texts, hit.RawContent, hit.Content)
	}

	combined := normalize.Text(strings.Join(texts, "\n"))
	if combined == "" {
		record.Provenance = appendNote(record.Provenance, "hunter:no-sources")
		return record
	}

	extra := p.classifier.Classify(p.extractor.Extract(combined, combined))
	merged := mergeCandidates(candidates, extra)

	rescued := p.reconciler.Reconcile(reconcile.Input{
		Context:    ectx,
		Candidates: merged,
		Model:      fields,
		ModelErr:   modelErr,
	})
	rescued.CompanyName = record.CompanyName
	rescued.Provenance = appendNote(rescued.Provenance, "hunter:second-pass")
	return rescued
}

// mergeCandidates appends b's values after a's, deduplicated, so first-pass
// candidates keep precedence in the joined fallback
func mergeCandidates(a, b model.CandidateSet) model.CandidateSet {
	return model.CandidateSet{
		Emails: mergeValues(a.Emails, b.Emails),
		Faxes:  mergeValues(a.Faxes, b.Faxes),
		Phones: mergeValues(a.Phones, b.Phones),
		TaxIDs: mergeValues(a.TaxIDs, b.TaxIDs),
	}
}

func mergeValues(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, v := range append(append([]string{}, a...), b...) {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func appendNote(provenance, note string) string {
	if provenance == "" {
		return note
	}
	return provenance + "; " + note
}

// dedupeHits drops repeated URLs, keeping first occurrence order
func dedupeHits(hits []search.Result) []search.Result {
	seen := make(map[string]bool, len(hits))
	var out []search.Result
	for _, hit := range hits {
		if hit.URL == "" || seen[hit.URL] {
			continue
		}
		seen[hit.URL] = true
		out = append(out, hit)
	}
	return out
}

// FilterStrict drops records lacking both phone and email. Used by the
// export path when strict mode is on.
func FilterStrict(records []*model.ContactRecord) []*model.ContactRecord {
	out := make([]*model.ContactRecord, 0, len(records))
	for _, record := range records {
		if record.HasContact() {
			out = append(out, record)
		}
	}
	return out
}
