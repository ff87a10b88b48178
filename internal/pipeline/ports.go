// Package pipeline runs the ingestion pass: build the duplicate index,
// collect recent candidates from every source, order and cap them by the
// run quota, then enrich, write and rate-limit each survivor while
// accumulating per-source run metrics.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/enrich"
	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

var (
	// ErrRunInProgress is returned when a run is triggered while another
	// one is still active.
	ErrRunInProgress = errors.New("pipeline run already in progress")

	// ErrPartialIndex is returned when the duplicate index could not be
	// fully built and the controller is configured to abort in that case.
	ErrPartialIndex = errors.New("duplicate index is incomplete")
)

// RecordQuerier pages through the links already persisted.
type RecordQuerier interface {
	QueryRecords(ctx context.Context, cursor string, pageSize int) (*models.RecordPage, error)
}

// RecordCreator persists one enriched record.
type RecordCreator interface {
	CreateRecord(ctx context.Context, r *models.Record) error
}

// RunLogCreator persists one per-source run log.
type RunLogCreator interface {
	CreateRunLog(ctx context.Context, l *models.RunLog) error
}

// Store is the persisted catalog the pipeline reads from and writes to.
type Store interface {
	RecordQuerier
	RecordCreator
	RunLogCreator
}

// Fetcher returns the raw entries of one feed source.
type Fetcher interface {
	Fetch(ctx context.Context, source models.FeedSource) ([]models.RawEntry, error)
}

// ArticleExtractor returns the readable text of the article at url.
type ArticleExtractor interface {
	ExtractArticle(ctx context.Context, url string) (string, error)
}

// Enricher turns a candidate into enrichment output. It never fails.
type Enricher interface {
	Enrich(ctx context.Context, c models.Candidate) enrich.Result
}

// Observer receives run counters, typically for metrics export.
type Observer interface {
	RecordWritten(source string)
	WriteFailed(source string)
	EnrichmentCall(source string, tokens int)
	RunFinished(outcome string, d time.Duration, indexSize int)
}

type nopObserver struct{}

func (nopObserver) RecordWritten(string)                   {}
func (nopObserver) WriteFailed(string)                     {}
func (nopObserver) EnrichmentCall(string, int)             {}
func (nopObserver) RunFinished(string, time.Duration, int) {}
