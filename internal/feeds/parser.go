package feeds

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

var htmlTagPattern = regexp.MustCompile("<[^>]*>")

// toRawEntries converts gofeed items into raw entries. No filtering happens
// here; duplicate and recency checks belong to the pipeline.
func toRawEntries(feed *gofeed.Feed) []models.RawEntry {
	entries := make([]models.RawEntry, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}

		published := item.Published
		parsed := item.PublishedParsed
		if published == "" && parsed == nil {
			published = item.Updated
			parsed = item.UpdatedParsed
		}

		var publishedParsed *time.Time
		if parsed != nil {
			t := *parsed
			publishedParsed = &t
		}

		summary := item.Description
		if strings.TrimSpace(summary) == "" {
			summary = item.Content
		}

		entries = append(entries, models.RawEntry{
			Title:           strings.TrimSpace(item.Title),
			Link:            strings.TrimSpace(item.Link),
			PublishedAt:     published,
			Summary:         strings.TrimSpace(stripHTML(summary)),
			PublishedParsed: publishedParsed,
		})
	}
	return entries
}

// stripHTML removes HTML tags from s and unescapes HTML entities.
func stripHTML(s string) string {
	clean := htmlTagPattern.ReplaceAllString(s, "")
	return html.UnescapeString(clean)
}
