package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/enrich"
	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// RunLogger accumulates per-source counters and flushes them to the log
// destination.
type RunLogger struct {
	dest RunLogCreator
}

// NewRunLogger returns a RunLogger writing to dest.
func NewRunLogger(dest RunLogCreator) *RunLogger {
	return &RunLogger{dest: dest}
}

// Record folds one enrich-and-write cycle into m.
func (l *RunLogger) Record(m *models.RunMetrics, res enrich.Result, written bool) {
	if res.Analyzed {
		m.EnrichmentCalls++
		m.TokensUsed += res.Enrichment.TokensUsed
	}
	if written {
		m.SuccessCount++
	}
}

// Flush writes m as one run log if any enrichment call was made. It reports
// whether a log was written; failures are logged and swallowed.
func (l *RunLogger) Flush(ctx context.Context, runStart time.Time, m models.RunMetrics) bool {
	if m.EnrichmentCalls == 0 {
		return false
	}

	entry := &models.RunLog{
		Title:      fmt.Sprintf("%s %s", runStart.Format("2006-01-02 15:04"), m.SourceName),
		RunMetrics: m,
	}
	if err := l.dest.CreateRunLog(ctx, entry); err != nil {
		slog.Warn("flushing run log failed",
			"source", m.SourceName,
			"error", err,
		)
		return false
	}
	slog.Info("flushed run log",
		"source", m.SourceName,
		"success", m.SuccessCount,
		"enrichment_calls", m.EnrichmentCalls,
		"tokens", m.TokensUsed,
	)
	return true
}
