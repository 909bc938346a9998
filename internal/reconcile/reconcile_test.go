package reconcile

import (
	"errors"
	"strings"
	"testing"

	"github.com/wilson66200519-bit/leadscout/internal/llm"
	"github.com/wilson66200519-bit/leadscout/internal/model"
)

func TestReconcile_ModelValueWins(t *testing.T) {
	r := NewReconciler()

	record := r.Reconcile(Input{
		Context: model.ExtractionContext{SourceURL: "https://example.com.tw"},
		Candidates: model.CandidateSet{
			Phones: []string{"02-9999-9999"},
			Emails: []string{"pattern@example.com"},
		},
		Model: &llm.Fields{
			IsCompany: true,
			Phone:     "02-1234-5678",
			Email:     "model@example.com",
		},
	})

	if record.Phone != "02-1234-5678" {
		t.Errorf("Phone = %q, want model value", record.Phone)
	}
	if record.Email != "model@example.com" {
		t.Errorf("Email = %q, want model value", record.Email)
	}
	if record.Status != model.StatusExtracted {
		t.Errorf("Status = %q, want extracted", record.Status)
	}
}

func TestReconcile_PlaceholderFallsBackToCandidate(t *testing.T) {
	tests := []string{"none", "None", "NULL", "", "n/a", "無"}

	for _, placeholder := range tests {
		t.Run("placeholder="+placeholder, func(t *testing.T) {
			r := NewReconciler()
			record := r.Reconcile(Input{
				Context:    model.ExtractionContext{SourceURL: "https://example.com.tw"},
				Candidates: model.CandidateSet{Phones: []string{"02-1234-5678"}},
				Model:      &llm.Fields{IsCompany: true, Phone: placeholder},
			})

			if record.Phone != "02-1234-5678" {
				t.Errorf("Phone = %q, want classifier candidate, not placeholder %q", record.Phone, placeholder)
			}
		})
	}
}

func TestReconcile_JoinsFirstTwoCandidates(t *testing.T) {
	r := NewReconciler()

	record := r.Reconcile(Input{
		Context:    model.ExtractionContext{SourceURL: "https://example.com.tw"},
		Candidates: model.CandidateSet{Phones: []string{"02-1111-1111", "02-2222-2222", "02-3333-3333"}},
		Model:      &llm.Fields{IsCompany: true},
	})

	if record.Phone != "02-1111-1111, 02-2222-2222" {
		t.Errorf("Phone = %q, want first two joined", record.Phone)
	}
}

func TestReconcile_ModelFailureFallsBackFully(t *testing.T) {
	r := NewReconciler()

	record := r.Reconcile(Input{
		Context: model.ExtractionContext{
			SourceURL: "https://example.com.tw",
			TitleHint: "首頁 | 建越科技股份有限公司 - 廢水處理專家",
		},
		Candidates: model.CandidateSet{Emails: []string{"a@b.com"}},
		ModelErr:   errors.New("malformed model output"),
	})

	if record.Email != "a@b.com" {
		t.Errorf("Email = %q, want classifier candidate", record.Email)
	}
	if record.Status != model.StatusPartiallyExtracted && record.Status != model.StatusFailed {
		t.Errorf("Status = %q, want partially_extracted or failed", record.Status)
	}
	if record.CompanyName != "建越科技股份有限公司" {
		t.Errorf("CompanyName = %q, want canonicalized title", record.CompanyName)
	}
	if !strings.Contains(record.Provenance, "model:failed") {
		t.Errorf("Provenance = %q, want model failure note", record.Provenance)
	}
}

func TestReconcile_NothingFound(t *testing.T) {
	r := NewReconciler()

	record := r.Reconcile(Input{
		Context:  model.ExtractionContext{SourceURL: "https://example.com.tw"},
		ModelErr: errors.New("malformed model output"),
	})

	if record.Status != model.StatusFailed {
		t.Errorf("Status = %q, want failed", record.Status)
	}
	if record.SourceURL == "" {
		t.Error("SourceURL must always be set")
	}
}

func TestReconcile_TaxIDOnlyIsPartial(t *testing.T) {
	r := NewReconciler()

	record := r.Reconcile(Input{
		Context:    model.ExtractionContext{SourceURL: "https://example.com.tw"},
		Candidates: model.CandidateSet{TaxIDs: []string{"24536806"}},
		Model:      &llm.Fields{IsCompany: true},
	})

	if record.Status != model.StatusPartiallyExtracted {
		t.Errorf("Status = %q, want partially_extracted", record.Status)
	}
	if record.HasContact() {
		t.Error("tax ID alone must not count as contact info")
	}
}

func TestExcludedRecord(t *testing.T) {
	record := ExcludedRecord("https://example.cn", "某公司", "foreign TLD .cn")

	if record.Status != model.StatusExcluded {
		t.Errorf("Status = %q, want excluded", record.Status)
	}
	if !strings.Contains(record.Provenance, "foreign TLD") {
		t.Errorf("Provenance = %q", record.Provenance)
	}
	if record.SourceURL != "https://example.cn" {
		t.Errorf("SourceURL = %q", record.SourceURL)
	}
}
