package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// Run outcomes reported to the Observer.
const (
	OutcomeSuccess   = "success"
	OutcomePartial   = "partial_index"
	OutcomeAborted   = "aborted"
	OutcomeCancelled = "cancelled"
)

const (
	defaultHistorySize = 20
	flushTimeout       = 10 * time.Second
)

// Options is the immutable run configuration.
type Options struct {
	Sources             []models.FeedSource
	Quota               int
	Window              time.Duration
	AbortOnPartialIndex bool
	PageSize            int
	HistorySize         int
}

// Deps wires the collaborators into a Controller. Extractor, Observer,
// RateLimiter and Now are optional. Without an Extractor, entries with an
// empty summary are enriched as they are.
type Deps struct {
	Store       Store
	Fetcher     Fetcher
	Extractor   ArticleExtractor
	Enricher    Enricher
	RateLimiter RateLimiter
	Observer    Observer
	Now         func() time.Time
}

// Controller orchestrates pipeline runs. Only one run executes at a time.
type Controller struct {
	opts      Options
	store     Store
	fetcher   Fetcher
	extractor ArticleExtractor
	enricher  Enricher
	limiter   RateLimiter
	observer  Observer
	writer    *Writer
	runLog    *RunLogger
	now       func() time.Time

	running sync.Mutex

	mu      sync.RWMutex
	history []models.RunReport
}

// NewController builds a Controller. The sources slice is copied.
func NewController(opts Options, deps Deps) *Controller {
	opts.Sources = append([]models.FeedSource(nil), opts.Sources...)
	if opts.HistorySize <= 0 {
		opts.HistorySize = defaultHistorySize
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	c := &Controller{
		opts:      opts,
		store:     deps.Store,
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		enricher:  deps.Enricher,
		limiter:   deps.RateLimiter,
		observer:  deps.Observer,
		writer:    NewWriter(deps.Store),
		runLog:    NewRunLogger(deps.Store),
		now:       deps.Now,
	}
	if c.limiter == nil {
		c.limiter = NoDelay{}
	}
	if c.observer == nil {
		c.observer = nopObserver{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Sources returns the configured feed sources.
func (c *Controller) Sources() []models.FeedSource {
	return append([]models.FeedSource(nil), c.opts.Sources...)
}

// History returns the most recent run reports, newest first.
func (c *Controller) History() []models.RunReport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.RunReport, len(c.history))
	for i, r := range c.history {
		out[len(c.history)-1-i] = r
	}
	return out
}

// Busy reports whether a run is currently executing.
func (c *Controller) Busy() bool {
	if c.running.TryLock() {
		c.running.Unlock()
		return false
	}
	return true
}

// Run executes one full pass. It fails fast with ErrRunInProgress when
// another run is active. The returned report is never nil when the run
// started.
func (c *Controller) Run(ctx context.Context) (*models.RunReport, error) {
	if !c.running.TryLock() {
		return nil, ErrRunInProgress
	}
	defer c.running.Unlock()
	return c.execute(ctx)
}

// Start launches a run in the background and returns once it holds the run
// slot. The outcome is available through History.
func (c *Controller) Start(ctx context.Context) error {
	if !c.running.TryLock() {
		return ErrRunInProgress
	}
	go func() {
		defer c.running.Unlock()
		if _, err := c.execute(ctx); err != nil {
			slog.Error("background pipeline run failed", "error", err)
		}
	}()
	return nil
}

func (c *Controller) execute(ctx context.Context) (*models.RunReport, error) {
	start := c.now()
	report := &models.RunReport{
		ID:        uuid.NewString(),
		StartedAt: start,
	}
	log := slog.With("run_id", report.ID)
	log.Info("pipeline run started", "sources", len(c.opts.Sources), "quota", c.opts.Quota)

	outcome, err := c.run(ctx, log, start, report)

	report.Duration = time.Since(start)
	if err != nil {
		report.Error = err.Error()
	}
	c.observer.RunFinished(outcome, report.Duration, report.IndexSize)
	c.remember(*report)

	log.Info("pipeline run finished",
		"outcome", outcome,
		"candidates", report.Candidates,
		"written", report.Written,
		"duration", report.Duration,
	)
	return report, err
}

func (c *Controller) run(ctx context.Context, log *slog.Logger, start time.Time, report *models.RunReport) (string, error) {
	idx, partial := BuildIndex(ctx, c.store, c.opts.PageSize)
	report.IndexSize = idx.Len()
	report.PartialIndex = partial
	if partial && c.opts.AbortOnPartialIndex {
		return OutcomeAborted, ErrPartialIndex
	}
	if err := ctx.Err(); err != nil {
		return OutcomeCancelled, err
	}

	var all []models.Candidate
	seen := make(map[string]bool)
	for _, src := range c.opts.Sources {
		entries, err := c.fetcher.Fetch(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return OutcomeCancelled, ctx.Err()
			}
			log.Warn("fetching feed failed", "source", src.Name, "url", src.URL, "error", err)
		}
		// A link syndicated by several sources belongs to the first one
		// configured, so it takes a single quota slot.
		for _, cand := range Collect(src, entries, idx, start, c.opts.Window) {
			if seen[cand.Link] {
				continue
			}
			seen[cand.Link] = true
			all = append(all, cand)
		}
	}

	ordered := Order(all)
	report.Candidates = len(ordered)
	selected := Cap(ordered, c.opts.Quota)
	report.QuotaHit = len(ordered) > len(selected)
	if report.QuotaHit {
		log.Info("quota reached, leaving older candidates for the next run",
			"quota", c.opts.Quota,
			"deferred", len(ordered)-len(selected),
		)
	}

	remaining := c.opts.Quota
	var runErr error
	for _, batch := range groupBySource(c.opts.Sources, selected) {
		m := models.RunMetrics{SourceName: batch.source.Name}
		if runErr == nil {
			remaining, runErr = c.processSource(ctx, log, batch, idx, remaining, &m)
		}
		report.Written += m.SuccessCount
		report.Sources = append(report.Sources, m)

		flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
		c.runLog.Flush(flushCtx, start, m)
		cancel()
	}

	if runErr != nil {
		return OutcomeCancelled, runErr
	}
	if partial {
		return OutcomePartial, nil
	}
	return OutcomeSuccess, nil
}

// processSource enriches and writes one source's batch. It returns the
// quota left and a non-nil error only when ctx ends.
func (c *Controller) processSource(ctx context.Context, log *slog.Logger, batch sourceBatch, idx *DuplicateIndex, remaining int, m *models.RunMetrics) (int, error) {
	for _, cand := range batch.candidates {
		if remaining <= 0 {
			break
		}
		if err := ctx.Err(); err != nil {
			return remaining, err
		}
		if idx.Has(cand.Link) {
			log.Debug("skipping link already written in this run", "source", cand.SourceName, "link", cand.Link)
			continue
		}

		cand = c.fillSummary(ctx, log, cand)
		res := c.enricher.Enrich(ctx, cand)
		if res.Analyzed {
			c.observer.EnrichmentCall(cand.SourceName, res.Enrichment.TokensUsed)
		}

		rec := &models.Record{
			Candidate:          cand,
			Enrichment:         res.Enrichment,
			ReadingTimeMinutes: res.ReadingTimeMinutes,
		}
		written := c.writer.Write(ctx, rec)
		if written {
			idx.Add(cand.Link)
			remaining--
			c.observer.RecordWritten(cand.SourceName)
		} else {
			c.observer.WriteFailed(cand.SourceName)
		}
		c.runLog.Record(m, res, written)

		if err := c.limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return remaining, err
			}
			return remaining, fmt.Errorf("rate limiter: %w", err)
		}
	}
	return remaining, nil
}

// fillSummary replaces an empty summary with the linked article's text. It
// only runs for candidates that made the cut, so duplicates and stale
// entries never cost an article fetch. Failures keep the empty summary.
func (c *Controller) fillSummary(ctx context.Context, log *slog.Logger, cand models.Candidate) models.Candidate {
	if c.extractor == nil || strings.TrimSpace(cand.Summary) != "" {
		return cand
	}
	text, err := c.extractor.ExtractArticle(ctx, cand.Link)
	if err != nil {
		log.Warn("full-text extraction failed, enriching the feed entry as is", "source", cand.SourceName, "link", cand.Link, "error", err)
		return cand
	}
	cand.Summary = text
	return cand
}

func (c *Controller) remember(r models.RunReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = append(c.history, r)
	if n := len(c.history) - c.opts.HistorySize; n > 0 {
		c.history = c.history[n:]
	}
}
