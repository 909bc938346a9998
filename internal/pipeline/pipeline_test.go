package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/wilson66200519-bit/leadscout/internal/llm"
	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/search"
)

type fakeSearcher struct {
	mu      sync.Mutex
	queue   [][]search.Result
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string) ([]search.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	if len(f.queue) == 0 {
		return nil, nil
	}
	results := f.queue[0]
	f.queue = f.queue[1:]
	return results, nil
}

type fakeProvider struct {
	mu     sync.Mutex
	fields *llm.Fields
	err    error
	calls  int
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Extract(ctx context.Context, req llm.ExtractRequest) (*llm.ExtractResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.ExtractResponse{Fields: f.fields, Model: req.Model}, nil
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func testPipelineConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.RateLimit = model.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 1000}
	cfg.Search.HunterEnabled = false
	cfg.Cache.Enabled = false
	return cfg
}

const contactContent = "聯絡電話: 02-2345-6789 傳真: 02-2345-6780 信箱 service@example.com.tw 統一編號 24536806"

func TestProcessHit_ExcludedDomainSkipsModel(t *testing.T) {
	searcher := &fakeSearcher{}
	provider := &fakeProvider{fields: &llm.Fields{IsCompany: true}}
	p := New(testPipelineConfig(), searcher, provider, nil)

	record, err := p.ProcessHit(context.Background(), search.Result{
		Title:      "工廠名錄",
		URL:        "https://factory.example.cn/list",
		RawContent: contactContent,
	})
	if err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if record.Status != model.StatusExcluded {
		t.Errorf("Status = %q, want %q", record.Status, model.StatusExcluded)
	}
	if provider.callCount() != 0 {
		t.Errorf("model was called %d times for an excluded domain", provider.callCount())
	}
	if len(searcher.queries) != 0 {
		t.Errorf("hunter search ran for an excluded domain: %v", searcher.queries)
	}
}

func TestProcessHit_ModelFieldsWin(t *testing.T) {
	provider := &fakeProvider{fields: &llm.Fields{
		IsCompany:   true,
		CompanyName: "建越科技股份有限公司",
		Phone:       "02-8765-4321",
		Email:       "info@chienyueh.com.tw",
	}}
	p := New(testPipelineConfig(), &fakeSearcher{}, provider, nil)

	record, err := p.ProcessHit(context.Background(), search.Result{
		Title:      "建越科技股份有限公司",
		URL:        "https://www.chienyueh.com.tw/contact",
		RawContent: contactContent,
	})
	if err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if record.Status != model.StatusExtracted {
		t.Errorf("Status = %q, want %q", record.Status, model.StatusExtracted)
	}
	if record.Phone != "02-8765-4321" {
		t.Errorf("Phone = %q, model value should win over pattern candidates", record.Phone)
	}
	if record.Email != "info@chienyueh.com.tw" {
		t.Errorf("Email = %q", record.Email)
	}
	// Fax came from the page because the model stayed silent on it
	if record.Fax == "" {
		t.Error("Fax should fall back to the pattern candidate")
	}
	if record.TaxID == "" {
		t.Error("TaxID should fall back to the pattern candidate")
	}
}

func TestProcessHit_RateLimitExhaustionFallsBack(t *testing.T) {
	llmSleepFunc = func(time.Duration) {}
	defer func() { llmSleepFunc = time.Sleep }()

	provider := &fakeProvider{err: &llm.RateLimitedError{Provider: "fake"}}
	cfg := testPipelineConfig()
	p := New(cfg, &fakeSearcher{}, provider, nil)

	record, err := p.ProcessHit(context.Background(), search.Result{
		Title:      "建越科技股份有限公司",
		URL:        "https://www.chienyueh.com.tw/contact",
		RawContent: contactContent,
	})
	if err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if provider.callCount() != cfg.LLM.MaxAttempts {
		t.Errorf("model called %d times, want %d", provider.callCount(), cfg.LLM.MaxAttempts)
	}
	if record.Status != model.StatusPartiallyExtracted {
		t.Errorf("Status = %q, want %q", record.Status, model.StatusPartiallyExtracted)
	}
	if record.Phone == "" {
		t.Error("pattern phone should survive a model failure")
	}
	if !strings.Contains(record.Provenance, "model:failed") {
		t.Errorf("Provenance = %q, want a model failure note", record.Provenance)
	}
}

func TestProcessHit_NonCompanyPageExcluded(t *testing.T) {
	provider := &fakeProvider{fields: &llm.Fields{IsCompany: false}}
	p := New(testPipelineConfig(), &fakeSearcher{}, provider, nil)

	record, err := p.ProcessHit(context.Background(), search.Result{
		Title:      "2024 十大廢水處理公司排名",
		URL:        "https://blog.example.com.tw/top10",
		RawContent: contactContent,
	})
	if err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if record.Status != model.StatusExcluded {
		t.Errorf("Status = %q, want %q", record.Status, model.StatusExcluded)
	}
	if !strings.Contains(record.Provenance, "not a company site") {
		t.Errorf("Provenance = %q", record.Provenance)
	}
}

func TestProcessHit_HunterRescuesContactlessRecord(t *testing.T) {
	searcher := &fakeSearcher{queue: [][]search.Result{
		{
			{
				URL:     "https://www.chienyueh.com.tw/contact",
				Content: "電話: 02-2345-6789 信箱 service@chienyueh.com.tw",
			},
		},
	}}
	provider := &fakeProvider{fields: &llm.Fields{
		IsCompany:   true,
		CompanyName: "建越科技股份有限公司",
	}}

	cfg := testPipelineConfig()
	cfg.Search.HunterEnabled = true
	p := New(cfg, searcher, provider, nil)

	record, err := p.ProcessHit(context.Background(), search.Result{
		Title:      "首頁 | 建越科技股份有限公司",
		URL:        "https://www.chienyueh.com.tw/",
		RawContent: "公司簡介 專業廢水處理 服務項目",
	})
	if err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if len(searcher.queries) != 1 {
		t.Fatalf("searcher saw %d queries, want 1 hunter query", len(searcher.queries))
	}
	if !strings.Contains(searcher.queries[0], "建越科技股份有限公司") {
		t.Errorf("hunter query %q does not carry the company name", searcher.queries[0])
	}
	if record.Status != model.StatusExtracted {
		t.Errorf("Status = %q, want %q after hunter rescue", record.Status, model.StatusExtracted)
	}
	if record.Phone == "" || record.Email == "" {
		t.Errorf("hunter pass should fill contact fields, got phone=%q email=%q", record.Phone, record.Email)
	}
	if !strings.Contains(record.Provenance, "hunter:second-pass") {
		t.Errorf("Provenance = %q, want a hunter note", record.Provenance)
	}
}

func TestProcessHit_HunterSkippedWhenContactPresent(t *testing.T) {
	searcher := &fakeSearcher{}
	provider := &fakeProvider{fields: &llm.Fields{
		IsCompany:   true,
		CompanyName: "建越科技股份有限公司",
		Phone:       "02-2345-6789",
	}}

	cfg := testPipelineConfig()
	cfg.Search.HunterEnabled = true
	p := New(cfg, searcher, provider, nil)

	if _, err := p.ProcessHit(context.Background(), search.Result{
		URL:        "https://www.chienyueh.com.tw/",
		RawContent: contactContent,
	}); err != nil {
		t.Fatalf("ProcessHit() error: %v", err)
	}

	if len(searcher.queries) != 0 {
		t.Errorf("hunter ran despite a phone being present: %v", searcher.queries)
	}
}

func TestHunt_DeduplicatesAndCapsHits(t *testing.T) {
	searcher := &fakeSearcher{queue: [][]search.Result{
		{
			{Title: "甲公司", URL: "https://a.example.com.tw/", RawContent: contactContent},
			{Title: "甲公司", URL: "https://a.example.com.tw/", RawContent: contactContent},
			{Title: "乙公司", URL: "https://b.example.com.tw/", RawContent: contactContent},
			{Title: "丙公司", URL: "https://c.example.com.tw/", RawContent: contactContent},
		},
	}}
	provider := &fakeProvider{fields: &llm.Fields{IsCompany: true, Phone: "02-2345-6789"}}

	cfg := testPipelineConfig()
	cfg.Search.MaxResults = 2
	p := New(cfg, searcher, provider, nil)

	records, err := p.Hunt(context.Background(), "廢水處理 工程")
	if err != nil {
		t.Fatalf("Hunt() error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (dedupe then cap)", len(records))
	}
	urls := map[string]bool{}
	for _, record := range records {
		if urls[record.SourceURL] {
			t.Errorf("duplicate source URL %q in output", record.SourceURL)
		}
		urls[record.SourceURL] = true
		if record.Status != model.StatusExtracted {
			t.Errorf("record %q status = %q", record.SourceURL, record.Status)
		}
	}
}

func TestFilterStrict(t *testing.T) {
	records := []*model.ContactRecord{
		{CompanyName: "甲", Phone: "02-2345-6789", Status: model.StatusExtracted},
		{CompanyName: "乙", Fax: "02-2345-6780", TaxID: "24536806", Status: model.StatusPartiallyExtracted},
		{CompanyName: "丙", Email: "c@example.com.tw", Status: model.StatusExtracted},
		{CompanyName: "丁", Status: model.StatusFailed},
	}

	kept := FilterStrict(records)
	if len(kept) != 2 {
		t.Fatalf("got %d records, want 2", len(kept))
	}
	if kept[0].CompanyName != "甲" || kept[1].CompanyName != "丙" {
		t.Errorf("wrong records kept: %q, %q", kept[0].CompanyName, kept[1].CompanyName)
	}
}
