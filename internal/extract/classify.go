package extract

import (
	"strings"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

// Classifier disambiguates raw number candidates among phone, fax, and
// tax ID. Emails and faxes pass through unchanged except deduplication.
type Classifier struct {
	cfg model.ClassifierConfig
}

// NewClassifier creates a classifier with the given policy
func NewClassifier(cfg model.ClassifierConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify applies the disambiguation rules in order per candidate:
//  1. Strip non-digits to a canonical digit string.
//  2. Discard if it is a substring of any fax candidate's digits.
//  3. Discard 11-digit strings starting with "1" (foreign mobile shape).
//  4. Discard known foreign area-code prefixes.
//  5. Exactly 8 digits not starting with "0" is a tax ID.
//  6. The rest, 8+ digits, is a phone under the active policy.
//
// The same canonical digit string never lands in both the phone and the
// tax ID set. Phones keep their original separator-formatted text for
// display.
func (c *Classifier) Classify(raw RawCandidates) model.CandidateSet {
	out := model.CandidateSet{
		Emails: dedupe(raw.Emails),
		Faxes:  dedupe(raw.Faxes),
	}

	var faxDigits []string
	for _, fax := range out.Faxes {
		faxDigits = append(faxDigits, CanonicalDigits(fax))
	}

	seenPhone := make(map[string]bool)
	seenTaxID := make(map[string]bool)

	for _, candidate := range raw.Numbers {
		digits := CanonicalDigits(candidate)
		if len(digits) < 8 {
			continue
		}
		if isFaxSubstring(digits, faxDigits) {
			continue
		}
		if len(digits) == 11 && strings.HasPrefix(digits, "1") {
			continue
		}
		if c.hasForeignPrefix(digits) {
			continue
		}
		if len(digits) == 8 && !strings.HasPrefix(digits, "0") {
			if c.cfg.VerifyTaxID && !ValidTaxID(digits) {
				continue
			}
			if !seenTaxID[digits] {
				seenTaxID[digits] = true
				out.TaxIDs = append(out.TaxIDs, digits)
			}
			continue
		}
		if !c.acceptPhone(digits) {
			continue
		}
		if !seenPhone[digits] {
			seenPhone[digits] = true
			out.Phones = append(out.Phones, candidate)
		}
	}

	return out
}

// acceptPhone applies the configured phone policy to a canonical digit string
func (c *Classifier) acceptPhone(digits string) bool {
	if c.cfg.StrictPhone {
		return strings.HasPrefix(digits, "0") && (len(digits) == 9 || len(digits) == 10)
	}
	return len(digits) >= 8
}

// hasForeignPrefix matches mainland area codes. Those numbers carry 8
// subscriber digits after the 3-digit code, so the rule only fires at 11+
// digits; a local 02-1xxxxxxx number shares the "021" prefix at 10 digits
// and must survive.
func (c *Classifier) hasForeignPrefix(digits string) bool {
	if len(digits) < 11 {
		return false
	}
	for _, prefix := range c.cfg.ForeignPrefixes {
		if strings.HasPrefix(digits, prefix) {
			return true
		}
	}
	return false
}

func isFaxSubstring(digits string, faxDigits []string) bool {
	for _, fax := range faxDigits {
		if strings.Contains(fax, digits) {
			return true
		}
	}
	return false
}

// taxIDWeights is the GUI number checksum weighting
var taxIDWeights = [8]int{1, 2, 1, 2, 1, 2, 4, 1}

// ValidTaxID verifies the checksum of an 8-digit business registration
// number. The sum of the digit-sums of each weighted digit must divide by
// 5. When the seventh digit is 7 its product 28 may be read as either
// 10 or 1+0, so both sums are accepted.
func ValidTaxID(digits string) bool {
	if len(digits) != 8 {
		return false
	}
	sum := 0
	for i, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
		product := int(r-'0') * taxIDWeights[i]
		sum += product/10 + product%10
	}
	if sum%5 == 0 {
		return true
	}
	// 7*4=28 -> "10" may collapse to 1
	return digits[6] == '7' && (sum+1)%5 == 0
}
