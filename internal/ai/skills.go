package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const analysisSystemPrompt = `You are an analyst preparing a daily briefing for C-level executives. Read the news item and return ONLY valid JSON with exactly these keys:
"summary": an array of exactly three short bullet-style highlights,
"keywords": an array of 3 to 6 short keyword labels,
"sentiment": one of "positive", "negative" or "neutral",
"entities": an array of the companies, people, places and organisations mentioned.
Do not wrap the JSON in prose. Do not add other keys.`

const translateSystemPromptTmpl = `You are a professional news translator. Translate the user's text into %s. Return ONLY the translation, with no quotes, notes or explanations.`

// AnalysisPrompt builds the system and user prompts for the structured
// analysis of a news item.
func AnalysisPrompt(title, summary string) (systemPrompt string, userPrompt string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", title)
	b.WriteString("Content:\n")
	b.WriteString(summary)
	return analysisSystemPrompt, b.String()
}

// TranslatePrompt builds the system and user prompts for translating text
// into the target language.
func TranslatePrompt(text, targetLanguage string) (systemPrompt string, userPrompt string) {
	return fmt.Sprintf(translateSystemPromptTmpl, targetLanguage), text
}

// ParseAnalysis interprets a model reply as an Analysis. The reply may be
// wrapped in markdown code fences.
func ParseAnalysis(text string) (*Analysis, error) {
	cleaned := extractJSON(text)
	if cleaned == "" {
		return nil, errors.New("parsing analysis: empty reply")
	}

	// The reply must be an object carrying at least one analysis key;
	// null, arrays, scalars and unrelated objects are not an analysis.
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, fmt.Errorf("parsing analysis JSON: %w", err)
	}
	if !hasAnalysisKey(fields) {
		return nil, errors.New("parsing analysis: reply has none of summary, keywords, sentiment, entities")
	}

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, fmt.Errorf("parsing analysis JSON: %w", err)
	}
	return &a, nil
}

var analysisKeys = []string{"summary", "keywords", "sentiment", "entities"}

func hasAnalysisKey(fields map[string]json.RawMessage) bool {
	for _, k := range analysisKeys {
		if v, ok := fields[k]; ok && string(v) != "null" {
			return true
		}
	}
	return false
}

// extractJSON strips markdown code fences from a string that may contain
// JSON wrapped in ```json ... ``` or ``` ... ``` blocks. This handles the
// common case where LLMs return JSON inside code fences.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)

	// Try ```json ... ``` first.
	if after, found := strings.CutPrefix(s, "```json"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	// Try plain ``` ... ```.
	if after, found := strings.CutPrefix(s, "```"); found {
		if idx := strings.LastIndex(after, "```"); idx >= 0 {
			after = after[:idx]
		}
		return strings.TrimSpace(after)
	}

	return s
}

// Highlights accepts either a JSON array of bullet strings or a single
// string. Models are inconsistent about which one they return.
type Highlights []string

func (h *Highlights) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*h = list
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return fmt.Errorf("summary must be a string or an array of strings: %w", err)
	}
	if strings.TrimSpace(single) == "" {
		*h = nil
		return nil
	}
	*h = Highlights{single}
	return nil
}

// Text renders the highlights as one bullet per line.
func (h Highlights) Text() string {
	lines := make([]string, 0, len(h))
	for _, item := range h {
		item = strings.TrimSpace(item)
		item = strings.TrimLeft(item, "-•* ")
		if item == "" {
			continue
		}
		lines = append(lines, "• "+item)
	}
	return strings.Join(lines, "\n")
}
