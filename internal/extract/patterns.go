package extract

import (
	"regexp"
	"strings"
)

// RawCandidates is the pattern battery output prior to classification.
// Numbers holds every digit group shaped like a local phone number; the
// classifier later splits them into phones and tax IDs.
type RawCandidates struct {
	Emails  []string
	Faxes   []string
	Numbers []string
}

var (
	emailPattern  = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,}`)
	mailtoPattern = regexp.MustCompile(`mailto:\s*([A-Za-z0-9._%+\-]+@[A-Za-z0-9\-]+(?:\.[A-Za-z0-9\-]+)*\.[A-Za-z]{2,})`)

	// A local phone shape: optional 1-2 digit area code (optionally
	// parenthesized), then two 3-4 digit groups with optional separators.
	numberShape = `\(?\d{1,2}\)?[\-\s]?\d{3,4}[\-\s]?\d{3,4}`

	numberPattern = regexp.MustCompile(numberShape)

	// Fax numbers are only captured inside a lexical cue window. A bare
	// number elsewhere is never classified as fax.
	faxPattern = regexp.MustCompile(`(?:Tel/Fax|TEL/FAX|Fax|FAX|傳真|Facsimile|F\.|F:)[\s:.]{0,3}(` + numberShape + `)`)
)

// PatternExtractor runs the fixed regex battery over page text
type PatternExtractor struct{}

// NewPatternExtractor creates a new pattern extractor
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Extract scans normalized text for emails, fax numbers, and raw number
// candidates. The unnormalized text is additionally scanned for mailto:
// addresses, which can appear in markup that normalization does not reach.
// Malformed or empty input yields empty sets, never an error.
func (e *PatternExtractor) Extract(text, rawText string) RawCandidates {
	var out RawCandidates

	emails := emailPattern.FindAllString(text, -1)
	for _, m := range mailtoPattern.FindAllStringSubmatch(rawText, -1) {
		emails = append(emails, m[1])
	}
	out.Emails = dedupe(emails)

	var faxes []string
	for _, m := range faxPattern.FindAllStringSubmatch(text, -1) {
		faxes = append(faxes, strings.TrimSpace(m[1]))
	}
	out.Faxes = dedupe(faxes)

	var numbers []string
	for _, m := range numberPattern.FindAllString(text, -1) {
		numbers = append(numbers, strings.TrimSpace(m))
	}
	out.Numbers = dedupe(numbers)

	return out
}

// dedupe removes duplicates preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		unique = append(unique, v)
	}
	return unique
}

// CanonicalDigits strips every non-digit character from s
func CanonicalDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
