package normalize

import (
	"strings"
	"unicode/utf8"
)

// nameSeparators is checked in order; the first type present in the title
// decides the split.
var nameSeparators = []string{"|", "–", "_", ":", "-"}

// legalSuffixes are jurisdiction-specific legal-entity markers. A title part
// carrying one of these is almost certainly the company name.
var legalSuffixes = []string{
	"公司", "商行", "企業", "事務所", "工作室", "實業", "工程行", "商號",
}

// boilerplateTokens are navigation/homepage fillers removed from the result
var boilerplateTokens = []string{
	"首頁", "官方網站", "官網", "歡迎光臨", "歡迎",
	"Home", "Index", "Homepage",
}

// maxNameRunes is the length ceiling for a part accepted on the legal-suffix path
const maxNameRunes = 20

// CompanyName cleans a raw page/search-result title into a plausible company
// name. It splits on the first separator type found, prefers a part carrying
// a legal-entity suffix under the length ceiling, falls back to the shortest
// non-trivial part, and strips boilerplate tokens on every path. A chosen
// part that still contains a separator is reduced again. Never errors; empty
// input yields empty output.
func CompanyName(title string) string {
	name := strings.TrimSpace(title)
	if name == "" {
		return ""
	}

	// Bounded: every iteration removes at least one separator occurrence
	for i := 0; i < 5; i++ {
		sep := firstSeparator(name)
		if sep == "" {
			break
		}
		name = pickPart(strings.Split(name, sep))
	}

	return stripBoilerplate(name)
}

// firstSeparator returns the first separator type present in s
func firstSeparator(s string) string {
	for _, sep := range nameSeparators {
		if strings.Contains(s, sep) {
			return sep
		}
	}
	return ""
}

// pickPart selects the best candidate among split parts
func pickPart(parts []string) string {
	// Legal-entity suffix under the ceiling wins
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) > maxNameRunes {
			continue
		}
		for _, suffix := range legalSuffixes {
			if strings.Contains(p, suffix) {
				return p
			}
		}
	}

	// Fall back to the shortest non-trivial part. Parts that are pure
	// boilerplate ("首頁", "Home") would otherwise win on length alone.
	best := ""
	for _, p := range parts {
		p = strings.TrimSpace(stripBoilerplate(p))
		if utf8.RuneCountInString(p) <= 1 {
			continue
		}
		if best == "" || utf8.RuneCountInString(p) < utf8.RuneCountInString(best) {
			best = p
		}
	}
	if best == "" && len(parts) > 0 {
		best = strings.TrimSpace(parts[0])
	}
	return best
}

// stripBoilerplate removes known homepage filler tokens
func stripBoilerplate(name string) string {
	for _, token := range boilerplateTokens {
		name = strings.ReplaceAll(name, token, "")
	}
	return strings.TrimSpace(name)
}
