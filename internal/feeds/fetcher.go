// Package feeds fetches syndication feeds and turns their items into raw
// entries for the ingestion pipeline.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

const (
	defaultTimeout = 30 * time.Second
	rateLimitDelay = 1 * time.Second
	maxWords       = 5000
)

// FetchOptions controls how feeds are fetched.
type FetchOptions struct {
	// Timeout bounds each HTTP request. Zero means 30 seconds.
	Timeout time.Duration
}

// Fetcher handles feed fetching with per-domain rate limiting.
type Fetcher struct {
	client      *http.Client
	opts        FetchOptions
	rateLimiter map[string]time.Time // per-domain last request time
	mu          sync.Mutex           // protects rateLimiter
}

// NewFetcher creates a Fetcher with a custom HTTP client configured with the
// given timeout and a browser-like user agent.
func NewFetcher(opts FetchOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &userAgentTransport{
				base: http.DefaultTransport,
			},
		},
		opts:        opts,
		rateLimiter: make(map[string]time.Time),
	}
}

// userAgentTransport wraps an http.RoundTripper to inject a custom User-Agent
// header on every request.
type userAgentTransport struct {
	base http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	// Some publishers (Bloomberg among them) reject obvious bot agents.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/rss+xml,application/atom+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	return t.base.RoundTrip(req)
}

// Fetch retrieves and parses the feed of a single source. A feed that cannot
// be fetched or parsed returns an error; callers treat it as a source with
// zero entries.
func (f *Fetcher) Fetch(ctx context.Context, source models.FeedSource) ([]models.RawEntry, error) {
	if err := f.waitForRateLimit(ctx, extractDomain(source.URL)); err != nil {
		return nil, err
	}

	fp := gofeed.NewParser()
	fp.Client = f.client

	feed, err := fp.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parsing feed %q: %w", source.URL, err)
	}

	entries := toRawEntries(feed)

	slog.Info("fetched feed", "source", source.Name, "items", len(entries))
	return entries, nil
}

// ExtractArticle fetches the full article text from the given URL using
// go-readability. The returned text is truncated to 5000 words maximum.
// It shares the per-domain delay with feed requests.
func (f *Fetcher) ExtractArticle(ctx context.Context, articleURL string) (string, error) {
	if err := f.waitForRateLimit(ctx, extractDomain(articleURL)); err != nil {
		return "", err
	}

	text, err := extractFullText(articleURL, f.opts.Timeout)
	if err != nil {
		return "", fmt.Errorf("extracting article from %q: %w", articleURL, err)
	}

	return truncateWords(text, maxWords), nil
}

// waitForRateLimit enforces a minimum delay of 1 second between requests to
// the same domain. The slot is reserved before sleeping so concurrent callers
// for one domain queue up; ctx cancels the wait.
func (f *Fetcher) waitForRateLimit(ctx context.Context, domain string) error {
	f.mu.Lock()
	next := time.Now()
	if last, ok := f.rateLimiter[domain]; ok && last.Add(rateLimitDelay).After(next) {
		next = last.Add(rateLimitDelay)
	}
	f.rateLimiter[domain] = next
	f.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// extractDomain parses a URL and returns its hostname. If parsing fails, it
// returns the raw URL as a fallback key.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Hostname()
}
