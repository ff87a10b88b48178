package pipeline

import (
	"testing"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

const window = 30 * 24 * time.Hour

func TestCollect_Window(t *testing.T) {
	src := models.FeedSource{Name: "A", URL: "https://a/feed"}
	entries := []models.RawEntry{
		entry("https://a/today", testNow),
		entry("https://a/old", testNow.Add(-40*24*time.Hour)),
		entry("https://a/boundary", testNow.Add(-window)),
		entry("https://a/just-outside", testNow.Add(-window-time.Second)),
	}

	got := Collect(src, entries, NewDuplicateIndex(), testNow, window)

	links := map[string]bool{}
	for _, c := range got {
		links[c.Link] = true
		if c.SourceName != "A" {
			t.Errorf("SourceName = %q, want A", c.SourceName)
		}
	}
	if !links["https://a/today"] || !links["https://a/boundary"] {
		t.Errorf("expected today and boundary entries, got %v", links)
	}
	if links["https://a/old"] || links["https://a/just-outside"] {
		t.Errorf("stale entries collected: %v", links)
	}
}

func TestCollect_TagsSourceLabels(t *testing.T) {
	src := models.FeedSource{Name: "InfoQ", URL: "https://feed.infoq.com/", Role: "CTO", Category: "技術策略"}

	got := Collect(src, []models.RawEntry{entry("https://infoq/1", testNow)}, NewDuplicateIndex(), testNow, window)
	if len(got) != 1 {
		t.Fatalf("Collect() = %d candidates, want 1", len(got))
	}
	if c := got[0]; c.SourceName != "InfoQ" || c.Role != "CTO" || c.Category != "技術策略" {
		t.Errorf("candidate labels = %q/%q/%q, want InfoQ/CTO/技術策略", c.SourceName, c.Role, c.Category)
	}
}

func TestCollect_SkipsDuplicatesAndMissingLinks(t *testing.T) {
	src := models.FeedSource{Name: "A"}
	entries := []models.RawEntry{
		entry("https://x/1", testNow),
		{Title: "no link", PublishedAt: testNow.Format(time.RFC3339)},
		entry("  ", testNow),
	}

	got := Collect(src, entries, NewDuplicateIndex("https://x/1"), testNow, window)
	if len(got) != 0 {
		t.Fatalf("Collect() = %d candidates, want 0", len(got))
	}
}

func TestPublishedTime(t *testing.T) {
	parsed := time.Date(2024, 5, 30, 1, 2, 3, 0, time.FixedZone("JST", 9*3600))

	tests := []struct {
		name  string
		entry models.RawEntry
		want  time.Time
	}{
		{
			name:  "missing uses run start",
			entry: models.RawEntry{},
			want:  testNow,
		},
		{
			name:  "unparseable uses run start",
			entry: models.RawEntry{PublishedAt: "sometime last week"},
			want:  testNow,
		},
		{
			name:  "no zone is UTC",
			entry: models.RawEntry{PublishedAt: "2024-05-20 10:00:00"},
			want:  time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC),
		},
		{
			name:  "RFC1123Z keeps offset",
			entry: models.RawEntry{PublishedAt: "Mon, 20 May 2024 10:00:00 +0800"},
			want:  time.Date(2024, 5, 20, 2, 0, 0, 0, time.UTC),
		},
		{
			name:  "feed-parsed time wins",
			entry: models.RawEntry{PublishedAt: "garbage", PublishedParsed: &parsed},
			want:  parsed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := publishedTime(tt.entry, testNow)
			if !got.Equal(tt.want) {
				t.Errorf("publishedTime() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollect_UnparseableTimestampIsFresh(t *testing.T) {
	entries := []models.RawEntry{{Title: "t", Link: "https://x/1", PublishedAt: "not available"}}
	got := Collect(models.FeedSource{Name: "A"}, entries, NewDuplicateIndex(), testNow, window)
	if len(got) != 1 || !got[0].PublishedAt.Equal(testNow) {
		t.Fatalf("Collect() = %+v, want one candidate at run start", got)
	}
}
