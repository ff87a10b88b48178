package ai

import (
	"strings"
	"testing"
)

func TestAnalysisPrompt(t *testing.T) {
	title := "Port congestion eases in Long Beach"
	summary := "Container dwell times dropped to four days as volumes normalised."

	systemPrompt, userPrompt := AnalysisPrompt(title, summary)

	if !strings.Contains(systemPrompt, "JSON") {
		t.Error("system prompt should demand JSON output")
	}
	for _, key := range []string{`"summary"`, `"keywords"`, `"sentiment"`, `"entities"`} {
		if !strings.Contains(systemPrompt, key) {
			t.Errorf("system prompt should name key %s", key)
		}
	}
	if !strings.Contains(userPrompt, title) {
		t.Errorf("user prompt should contain title %q", title)
	}
	if !strings.Contains(userPrompt, summary) {
		t.Errorf("user prompt should contain summary %q", summary)
	}
}

func TestTranslatePrompt(t *testing.T) {
	systemPrompt, userPrompt := TranslatePrompt("Rates hold steady", "zh-TW")

	if !strings.Contains(systemPrompt, "zh-TW") {
		t.Errorf("system prompt should name the target language, got %q", systemPrompt)
	}
	if userPrompt != "Rates hold steady" {
		t.Errorf("user prompt = %q, want the raw text", userPrompt)
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain JSON", input: `{"a":1}`, want: `{"a":1}`},
		{name: "json fence", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "bare fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", input: "  \n{\"a\":1}\n  ", want: `{"a":1}`},
		{name: "unterminated fence", input: "```json\n{\"a\":1}", want: `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractJSON(tt.input); got != tt.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseAnalysis(t *testing.T) {
	t.Run("fenced object with bullet array", func(t *testing.T) {
		reply := "```json\n" + `{
			"summary": ["Rates held", "Guidance raised", "Shares rose"],
			"keywords": ["rates", "guidance"],
			"sentiment": "positive",
			"entities": ["Federal Reserve"]
		}` + "\n```"

		a, err := ParseAnalysis(reply)
		if err != nil {
			t.Fatalf("ParseAnalysis() error: %v", err)
		}
		if len(a.Summary) != 3 {
			t.Errorf("got %d highlights, want 3", len(a.Summary))
		}
		if a.Sentiment != "positive" {
			t.Errorf("Sentiment = %q, want %q", a.Sentiment, "positive")
		}
		if len(a.Entities) != 1 || a.Entities[0] != "Federal Reserve" {
			t.Errorf("Entities = %v, want [Federal Reserve]", a.Entities)
		}
	})

	t.Run("summary as a single string", func(t *testing.T) {
		a, err := ParseAnalysis(`{"summary": "One line", "keywords": [], "sentiment": "neutral", "entities": []}`)
		if err != nil {
			t.Fatalf("ParseAnalysis() error: %v", err)
		}
		if len(a.Summary) != 1 || a.Summary[0] != "One line" {
			t.Errorf("Summary = %v, want [One line]", a.Summary)
		}
	})

	t.Run("not valid json", func(t *testing.T) {
		if _, err := ParseAnalysis("not valid json"); err == nil {
			t.Fatal("expected error for non-JSON reply")
		}
	})

	t.Run("empty reply", func(t *testing.T) {
		if _, err := ParseAnalysis("   "); err == nil {
			t.Fatal("expected error for empty reply")
		}
	})

	t.Run("wrong shape", func(t *testing.T) {
		for _, reply := range []string{
			"null",
			"{}",
			`{"foo": 1}`,
			`["positive"]`,
			`"positive"`,
			"42",
			`{"summary": null, "keywords": null}`,
			"```json\nnull\n```",
		} {
			if a, err := ParseAnalysis(reply); err == nil {
				t.Errorf("ParseAnalysis(%q) = %+v, want error", reply, a)
			}
		}
	})

	t.Run("single key is enough", func(t *testing.T) {
		a, err := ParseAnalysis(`{"sentiment": "neutral"}`)
		if err != nil {
			t.Fatalf("ParseAnalysis() error: %v", err)
		}
		if a.Sentiment != "neutral" {
			t.Errorf("Sentiment = %q, want neutral", a.Sentiment)
		}
	})

	t.Run("summary of wrong type", func(t *testing.T) {
		if _, err := ParseAnalysis(`{"summary": 42}`); err == nil {
			t.Fatal("expected error for numeric summary")
		}
	})
}

func TestHighlightsText(t *testing.T) {
	h := Highlights{"- Rates held", "  ", "• Guidance raised"}
	want := "• Rates held\n• Guidance raised"
	if got := h.Text(); got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
	if got := Highlights(nil).Text(); got != "" {
		t.Errorf("Text() of nil = %q, want empty", got)
	}
}
