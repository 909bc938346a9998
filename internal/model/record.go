package model

import "time"

// Status represents the lifecycle state of a ContactRecord
type Status string

const (
	StatusPending            Status = "pending"             // Created, not yet processed
	StatusExtracted          Status = "extracted"           // At least one of phone/email found
	StatusPartiallyExtracted Status = "partially_extracted" // Only classifier-sourced data, model failed
	StatusFailed             Status = "failed"              // Model output unusable, deterministic fallback only
	StatusExcluded           Status = "excluded"            // Source filtered out before extraction
)

// IsTerminal reports whether the status is an end state.
// The hunter escalation path is the only allowed transition out of a
// terminal state (partially_extracted -> extracted).
func (s Status) IsTerminal() bool {
	return s != StatusPending
}

// ContactRecord is the unit of output: one row per accepted URL
type ContactRecord struct {
	CompanyName string    `json:"company_name"`     // Display name, may be empty
	Phone       string    `json:"phone"`            // Free-form but digit-bearing
	Fax         string    `json:"fax"`              // Only set from lexical fax cues or model
	Email       string    `json:"email"`            // Ideally RFC-shaped
	TaxID       string    `json:"tax_id,omitempty"` // 8-digit business registration number
	SourceURL   string    `json:"source_url"`       // Always set once a record exists
	Status      Status    `json:"status"`
	Provenance  string    `json:"provenance,omitempty"` // Which stage supplied each field
	FetchedAt   time.Time `json:"fetched_at"`
}

// HasContact reports whether the record meets the "has contact info"
// threshold: at least one of phone or email is non-empty.
func (r *ContactRecord) HasContact() bool {
	return r.Phone != "" || r.Email != ""
}

// CandidateSet holds the deduplicated pattern-matched candidates for one
// page. Order is irrelevant; slices keep first-seen order for stable output.
type CandidateSet struct {
	Emails []string `json:"emails"`
	Faxes  []string `json:"faxes"`
	Phones []string `json:"phones"`
	TaxIDs []string `json:"tax_ids"`
}

// IsEmpty reports whether no candidates of any kind were found
func (c *CandidateSet) IsEmpty() bool {
	return len(c.Emails) == 0 && len(c.Faxes) == 0 && len(c.Phones) == 0 && len(c.TaxIDs) == 0
}

// ExtractionContext is the immutable input bundle consumed by both the
// deterministic classifier and the model-prompt builder.
type ExtractionContext struct {
	Text      string // Normalized page text
	RawText   string // Unnormalized page text (markup-bearing, for mailto scan)
	Snippet   string // Search-engine snippet, secondary signal
	SourceURL string
	TitleHint string
}
