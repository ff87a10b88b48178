// Package enrich turns a pipeline candidate into translated, analysed
// content. Every sub-step is best-effort: failures fold into default values
// and never abort the record.
package enrich

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/robinaudi/c-level-rss-daily/internal/ai"
	"github.com/robinaudi/c-level-rss-daily/internal/feeds"
	"github.com/robinaudi/c-level-rss-daily/internal/models"
	"github.com/robinaudi/c-level-rss-daily/internal/translate"
)

// Translator renders text in a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

// Analyzer produces a structured analysis of a title and summary.
type Analyzer interface {
	Analyze(ctx context.Context, title, summary string) (*ai.Analysis, error)
}

// result is the outcome of a single sub-step: a value or the reason it
// could not be produced.
type result[T any] struct {
	value T
	err   error
}

func (r result[T]) ok() bool { return r.err == nil }

// Result is what Enrich hands back to the pipeline.
type Result struct {
	Enrichment         models.Enrichment
	ReadingTimeMinutes int

	// Analyzed reports whether the analysis service was called, whether or
	// not the call succeeded.
	Analyzed bool

	TranslateErr error
	AnalyzeErr   error
}

// Stage runs translation, analysis and the reading-time estimate.
type Stage struct {
	translator     Translator
	analyzer       Analyzer
	targetLanguage string
}

// NewStage wires the collaborators. A nil analyzer skips analysis for every
// item; a nil translator keeps every title untranslated.
func NewStage(t Translator, a Analyzer, targetLanguage string) *Stage {
	return &Stage{translator: t, analyzer: a, targetLanguage: targetLanguage}
}

// Enrich never fails. Translation falls back to the original title and a
// failed or unparseable analysis yields the empty enrichment.
func (s *Stage) Enrich(ctx context.Context, c models.Candidate) Result {
	out := Result{Enrichment: models.EmptyEnrichment()}

	title := s.translateTitle(ctx, c.Title)
	out.TranslateErr = title.err
	if title.ok() {
		out.Enrichment.TranslatedTitle = title.value
	} else {
		out.Enrichment.TranslatedTitle = c.Title
		if !errors.Is(title.err, errSkipped) && !errors.Is(title.err, translate.ErrDisabled) {
			slog.Warn("translation failed, keeping original title",
				"link", c.Link,
				"error", title.err,
			)
		}
	}

	if s.analyzer != nil {
		out.Analyzed = true
		analysis := s.analyze(ctx, c)
		out.AnalyzeErr = analysis.err
		if analysis.ok() {
			out.Enrichment = foldAnalysis(out.Enrichment.TranslatedTitle, analysis.value)
		} else {
			slog.Warn("analysis failed, writing without analysis",
				"link", c.Link,
				"error", analysis.err,
			)
		}
	}

	out.ReadingTimeMinutes = feeds.CalculateReadingTime(c.Summary)
	return out
}

func (s *Stage) translateTitle(ctx context.Context, title string) result[string] {
	if s.translator == nil || strings.TrimSpace(title) == "" {
		return result[string]{err: errSkipped}
	}
	v, err := s.translator.Translate(ctx, title, s.targetLanguage)
	return result[string]{value: v, err: err}
}

func (s *Stage) analyze(ctx context.Context, c models.Candidate) result[*ai.Analysis] {
	v, err := s.analyzer.Analyze(ctx, c.Title, c.Summary)
	return result[*ai.Analysis]{value: v, err: err}
}

// foldAnalysis maps a parsed analysis onto an Enrichment, normalising the
// sentiment label and never leaving nil slices behind.
func foldAnalysis(translatedTitle string, a *ai.Analysis) models.Enrichment {
	e := models.EmptyEnrichment()
	e.TranslatedTitle = translatedTitle
	e.Summary = a.Summary.Text()
	e.Sentiment = models.ParseSentiment(a.Sentiment)
	e.TokensUsed = max(0, a.TokensUsed)
	e.Keywords = cleanLabels(a.Keywords)
	e.Entities = cleanLabels(a.Entities)
	return e
}

// cleanLabels trims labels and drops blanks and repeats, keeping order.
func cleanLabels(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, l := range in {
		l = strings.TrimSpace(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}
