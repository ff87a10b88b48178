package pipeline

import (
	"context"
	"log/slog"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// Writer sends one record to the store and reports whether it was accepted.
type Writer struct {
	store RecordCreator
}

// NewWriter returns a Writer backed by store.
func NewWriter(store RecordCreator) *Writer {
	return &Writer{store: store}
}

// Write creates r in the store. Failures are logged and reported as false;
// they are never retried.
func (w *Writer) Write(ctx context.Context, r *models.Record) bool {
	if err := w.store.CreateRecord(ctx, r); err != nil {
		slog.Warn("writing record failed",
			"source", r.SourceName,
			"link", r.Link,
			"error", err,
		)
		return false
	}
	slog.Info("wrote record",
		"source", r.SourceName,
		"link", r.Link,
		"sentiment", r.Sentiment,
		"tokens", r.TokensUsed,
	)
	return true
}
