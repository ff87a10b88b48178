package models

import (
	"strings"
	"time"
)

// RunMetrics holds the counters for one source within one run. A fresh
// value is created per source and is never shared between sources.
type RunMetrics struct {
	SourceName      string `json:"source_name"`
	SuccessCount    int    `json:"success_count"`
	EnrichmentCalls int    `json:"enrichment_calls"`
	TokensUsed      int    `json:"tokens_used"`
}

// RunLog is a flushed RunMetrics as stored in the log destination.
type RunLog struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	RunMetrics
	CreatedAt time.Time `json:"created_at"`
}

// RunReport summarises a completed (or aborted) pipeline run.
type RunReport struct {
	ID           string        `json:"id"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration_ns"`
	IndexSize    int           `json:"index_size"`
	PartialIndex bool          `json:"partial_index"`
	Candidates   int           `json:"candidates"`
	Written      int           `json:"written"`
	QuotaHit     bool          `json:"quota_hit"`
	Sources      []RunMetrics  `json:"sources"`
	Error        string        `json:"error,omitempty"`
}

func normalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
