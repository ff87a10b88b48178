package pipeline

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/enrich"
	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

var errBoom = errors.New("boom")

// fakeStore serves pre-baked link pages and records every write.
type fakeStore struct {
	mu        sync.Mutex
	pages     [][]string
	failPage  int // 1-based page that fails; 0 never fails
	failLinks map[string]bool
	failLogs  bool

	created []models.Record
	logs    []models.RunLog
	queries int
}

func (s *fakeStore) QueryRecords(_ context.Context, cursor string, _ int) (*models.RecordPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries++

	i := 0
	if cursor != "" {
		i, _ = strconv.Atoi(cursor)
	}
	if s.failPage == i+1 {
		return nil, errBoom
	}
	if i >= len(s.pages) {
		return &models.RecordPage{}, nil
	}
	page := &models.RecordPage{Links: s.pages[i], HasMore: i+1 < len(s.pages)}
	if page.HasMore {
		page.NextCursor = strconv.Itoa(i + 1)
	}
	return page, nil
}

func (s *fakeStore) CreateRecord(_ context.Context, r *models.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLinks[r.Link] {
		return errBoom
	}
	s.created = append(s.created, *r)
	return nil
}

func (s *fakeStore) CreateRunLog(_ context.Context, l *models.RunLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLogs {
		return errBoom
	}
	s.logs = append(s.logs, *l)
	return nil
}

func (s *fakeStore) links() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.created))
	for i, r := range s.created {
		out[i] = r.Link
	}
	return out
}

// fakeFetcher returns fixed entries per source name.
type fakeFetcher struct {
	entries map[string][]models.RawEntry
	errs    map[string]error

	// block, when set, is closed by the test to release Fetch; started
	// receives one value per call.
	block   chan struct{}
	started chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, src models.FeedSource) ([]models.RawEntry, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.entries[src.Name], f.errs[src.Name]
}

// fakeEnricher analyses every candidate with a fixed token count.
type fakeEnricher struct {
	tokens  int
	analyze bool
	calls   int
}

func (f *fakeEnricher) Enrich(_ context.Context, c models.Candidate) enrich.Result {
	f.calls++
	e := models.EmptyEnrichment()
	e.TranslatedTitle = c.Title
	if f.analyze {
		e.TokensUsed = f.tokens
	}
	return enrich.Result{Enrichment: e, Analyzed: f.analyze, ReadingTimeMinutes: 1}
}

// fakeExtractor returns "article body of <url>" and remembers each url.
type fakeExtractor struct {
	fail  map[string]bool
	links []string
}

func (f *fakeExtractor) ExtractArticle(ctx context.Context, url string) (string, error) {
	f.links = append(f.links, url)
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.fail[url] {
		return "", errBoom
	}
	return "article body of " + url, nil
}

// countingLimiter counts Wait calls without sleeping.
type countingLimiter struct{ waits int }

func (l *countingLimiter) Wait(ctx context.Context) error {
	l.waits++
	return ctx.Err()
}

// recordingObserver keeps the last run outcome.
type recordingObserver struct {
	nopObserver
	outcome  string
	written  int
	failures int
}

func (o *recordingObserver) RecordWritten(string) { o.written++ }
func (o *recordingObserver) WriteFailed(string)   { o.failures++ }
func (o *recordingObserver) RunFinished(outcome string, _ time.Duration, _ int) {
	o.outcome = outcome
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func entry(link string, published time.Time) models.RawEntry {
	return models.RawEntry{
		Title:       "Title " + link,
		Link:        link,
		PublishedAt: published.Format(time.RFC3339),
		Summary:     "summary of " + link,
	}
}
