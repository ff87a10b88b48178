package models

import "time"

// Sentiment is the closed set of tone labels the analysis step may assign.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentUnknown  Sentiment = "unknown"
)

// ParseSentiment maps a free-form label onto the closed set. Anything that
// is not recognised becomes SentimentUnknown.
func ParseSentiment(s string) Sentiment {
	switch Sentiment(normalizeLabel(s)) {
	case SentimentPositive:
		return SentimentPositive
	case SentimentNegative:
		return SentimentNegative
	case SentimentNeutral:
		return SentimentNeutral
	default:
		return SentimentUnknown
	}
}

// Enrichment holds the translation and analysis output for one candidate.
// The zero value (with Sentiment set to unknown) is what a failed
// enrichment degrades to.
type Enrichment struct {
	TranslatedTitle string    `json:"translated_title"`
	Summary         string    `json:"summary"`
	Keywords        []string  `json:"keywords"`
	Sentiment       Sentiment `json:"sentiment"`
	Entities        []string  `json:"entities"`
	TokensUsed      int       `json:"tokens_used"`
}

// EmptyEnrichment returns the degraded enrichment value.
func EmptyEnrichment() Enrichment {
	return Enrichment{
		Keywords:  []string{},
		Sentiment: SentimentUnknown,
		Entities:  []string{},
	}
}

// Record is what gets persisted for a single feed item.
type Record struct {
	ID int64 `json:"id,omitempty"`
	Candidate
	Enrichment
	ReadingTimeMinutes int       `json:"reading_time_minutes"`
	CreatedAt          time.Time `json:"created_at,omitempty"`
}

// RecordPage is one page of the store's paginated record query.
type RecordPage struct {
	Links      []string
	HasMore    bool
	NextCursor string
}
