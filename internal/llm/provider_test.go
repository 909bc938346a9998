package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/wilson66200519-bit/leadscout/internal/model"
)

func TestBuildPrompt_TruncatesOnRuneBoundary(t *testing.T) {
	ectx := model.ExtractionContext{
		Text:      strings.Repeat("建越科技股份有限公司 電話", 100),
		SourceURL: "https://www.chienyueh.com.tw/",
	}

	// Walk a range of cut points so some land mid-rune
	for maxChars := 28; maxChars < 40; maxChars++ {
		prompt := BuildPrompt(ectx, model.CandidateSet{}, maxChars)
		if !utf8.ValidString(prompt) {
			t.Fatalf("maxChars=%d produced invalid UTF-8 in prompt", maxChars)
		}
	}
}

func TestBuildPrompt_NoTruncationWhenShort(t *testing.T) {
	ectx := model.ExtractionContext{
		Text:      "電話 02-2345-6789",
		SourceURL: "https://www.chienyueh.com.tw/",
	}

	prompt := BuildPrompt(ectx, model.CandidateSet{}, 30000)
	if !strings.Contains(prompt, "02-2345-6789") {
		t.Errorf("prompt lost page content: %q", prompt)
	}
}
