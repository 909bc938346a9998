package llm

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ParseFields parses free-form model text into Fields. Models routinely
// fence the JSON in a markdown code block; the fence is stripped before
// parsing. If strict parsing fails the text is run through jsonrepair once
// and retried. A MalformedOutputError is returned when both passes fail.
func ParseFields(raw string) (*Fields, error) {
	cleaned := StripCodeFence(raw)

	var fields Fields
	if err := json.Unmarshal([]byte(cleaned), &fields); err == nil {
		return &fields, nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
		return nil, &MalformedOutputError{Raw: raw, Err: err}
	}
	return &fields, nil
}

// StripCodeFence removes a surrounding markdown code fence, with or
// without a language tag
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}

	s = strings.TrimPrefix(s, "```")
	// Drop the language tag on the opening fence line
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		first := strings.TrimSpace(s[:idx])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}") {
			s = s[idx+1:]
		}
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
