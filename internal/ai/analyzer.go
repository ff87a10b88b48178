package ai

import (
	"context"
	"fmt"
	"strings"
)

// Analyzer runs the structured analysis prompt through a Provider.
type Analyzer struct {
	provider Provider
}

// NewAnalyzer wraps a provider for structured analysis.
func NewAnalyzer(p Provider) *Analyzer {
	return &Analyzer{provider: p}
}

// Analyze asks the model for a structured analysis of the item. The returned
// Analysis carries the provider-reported token usage; when the provider does
// not report any, a tokens_used value inside the reply is kept.
func (a *Analyzer) Analyze(ctx context.Context, title, summary string) (*Analysis, error) {
	systemPrompt, userPrompt := AnalysisPrompt(title, summary)

	completion, err := a.provider.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	analysis, err := ParseAnalysis(completion.Text)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	if completion.TokensUsed > 0 {
		analysis.TokensUsed = completion.TokensUsed
	}
	return analysis, nil
}

// Translator translates text with a Provider.
type Translator struct {
	provider Provider
}

// NewTranslator wraps a provider for translation.
func NewTranslator(p Provider) *Translator {
	return &Translator{provider: p}
}

// Translate returns text rendered in targetLanguage.
func (t *Translator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	systemPrompt, userPrompt := TranslatePrompt(text, targetLanguage)

	completion, err := t.provider.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}

	out := strings.Trim(strings.TrimSpace(completion.Text), `"“”`)
	if out == "" {
		return "", fmt.Errorf("translate: empty reply")
	}
	return out, nil
}
