// Package reconcile merges language-model output with pattern-matched
// candidates into one ContactRecord under partial-failure conditions.
package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/wilson66200519-bit/leadscout/internal/llm"
	"github.com/wilson66200519-bit/leadscout/internal/model"
	"github.com/wilson66200519-bit/leadscout/internal/normalize"
)

// placeholders are model answers that mean "no value"
var placeholders = map[string]bool{
	"":     true,
	"none": true,
	"null": true,
	"n/a":  true,
	"無":    true,
	"沒有":   true,
}

// maxJoinedCandidates caps how many classifier candidates are joined into
// one field when the model supplied nothing
const maxJoinedCandidates = 2

// Input bundles everything the reconciler needs for one record
type Input struct {
	Context    model.ExtractionContext
	Candidates model.CandidateSet

	// Model is the parsed model output; nil when the call failed or the
	// output was malformed
	Model *llm.Fields

	// ModelErr explains a nil Model, used for the provenance note
	ModelErr error
}

// Reconciler applies the field precedence rules
type Reconciler struct{}

// NewReconciler creates a reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Reconcile combines model output with classifier candidates. Per field the
// model value wins unless it is empty or a placeholder; otherwise the first
// two classifier candidates are joined with a comma. A nil Model triggers
// full deterministic fallback and a failed status. Never returns nil and
// never panics on missing data.
func (r *Reconciler) Reconcile(in Input) *model.ContactRecord {
	record := &model.ContactRecord{
		SourceURL: in.Context.SourceURL,
		Status:    model.StatusPending,
		FetchedAt: time.Now().UTC(),
	}

	var notes []string

	modelValue := func(s string) string {
		if in.Model == nil {
			return ""
		}
		if placeholders[strings.ToLower(strings.TrimSpace(s))] {
			return ""
		}
		return strings.TrimSpace(s)
	}

	pick := func(field, fromModel string, candidates []string) string {
		if fromModel != "" {
			notes = append(notes, field+":model")
			return fromModel
		}
		if len(candidates) > 0 {
			notes = append(notes, field+":pattern")
			return joinFirst(candidates, maxJoinedCandidates)
		}
		return ""
	}

	var m llm.Fields
	if in.Model != nil {
		m = *in.Model
	}

	record.Phone = pick("phone", modelValue(m.Phone), in.Candidates.Phones)
	record.Email = pick("email", modelValue(m.Email), in.Candidates.Emails)
	record.Fax = pick("fax", modelValue(m.Fax), in.Candidates.Faxes)
	record.TaxID = pick("tax_id", modelValue(m.TaxID), in.Candidates.TaxIDs)

	if name := modelValue(m.CompanyName); name != "" {
		record.CompanyName = name
		notes = append(notes, "name:model")
	} else if name := normalize.CompanyName(in.Context.TitleHint); name != "" {
		record.CompanyName = name
		notes = append(notes, "name:title")
	}

	record.Status = r.status(record, in)
	if in.Model == nil && in.ModelErr != nil {
		notes = append(notes, fmt.Sprintf("model:failed (%v)", in.ModelErr))
	}
	record.Provenance = strings.Join(notes, "; ")

	return record
}

// status assigns the terminal state for this pass
func (r *Reconciler) status(record *model.ContactRecord, in Input) model.Status {
	if in.Model == nil {
		// Deterministic fallback only
		if record.HasContact() || record.Fax != "" || record.TaxID != "" {
			return model.StatusPartiallyExtracted
		}
		return model.StatusFailed
	}
	if record.HasContact() {
		return model.StatusExtracted
	}
	if record.Fax != "" || record.TaxID != "" || record.CompanyName != "" {
		return model.StatusPartiallyExtracted
	}
	return model.StatusFailed
}

// joinFirst joins up to n values with a comma
func joinFirst(values []string, n int) string {
	if len(values) > n {
		values = values[:n]
	}
	return strings.Join(values, ", ")
}

// ExcludedRecord builds the minimal record for a source rejected before
// extraction runs
func ExcludedRecord(sourceURL, titleHint, reason string) *model.ContactRecord {
	return &model.ContactRecord{
		CompanyName: normalize.CompanyName(titleHint),
		SourceURL:   sourceURL,
		Status:      model.StatusExcluded,
		Provenance:  "excluded: " + reason,
		FetchedAt:   time.Now().UTC(),
	}
}
