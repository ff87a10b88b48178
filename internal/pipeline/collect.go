package pipeline

import (
	"log/slog"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// Collect filters the raw entries of one source. Entries without a link,
// already in idx, or published before now-window are dropped; survivors are
// tagged with the source name, its role and category labels, and a
// UTC-normalised publish time. A window of zero or less disables the
// recency check.
func Collect(source models.FeedSource, entries []models.RawEntry, idx *DuplicateIndex, now time.Time, window time.Duration) []models.Candidate {
	cutoff := now.Add(-window)

	var (
		out        []models.Candidate
		duplicates int
		stale      int
	)
	for _, e := range entries {
		e.Link = strings.TrimSpace(e.Link)
		if e.Link == "" {
			continue
		}
		if idx.Has(e.Link) {
			duplicates++
			continue
		}

		published := publishedTime(e, now)
		if window > 0 && published.Before(cutoff) {
			stale++
			continue
		}

		out = append(out, models.Candidate{
			RawEntry:    e,
			SourceName:  source.Name,
			Role:        source.Role,
			Category:    source.Category,
			PublishedAt: published,
		})
	}

	slog.Debug("collected candidates",
		"source", source.Name,
		"entries", len(entries),
		"candidates", len(out),
		"duplicates", duplicates,
		"stale", stale,
	)
	return out
}

// publishedTime resolves an entry's publish time. Missing or unparseable
// values fall back to now; values without a zone are read as UTC.
func publishedTime(e models.RawEntry, now time.Time) time.Time {
	if e.PublishedParsed != nil && !e.PublishedParsed.IsZero() {
		return e.PublishedParsed.UTC()
	}

	raw := strings.TrimSpace(e.PublishedAt)
	if raw == "" {
		return now
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		slog.Debug("unparseable publish time, using run start",
			"link", e.Link,
			"published", raw,
			"error", err,
		)
		return now
	}
	return t.UTC()
}
