package models

import "time"

// FeedSource is a syndication feed the pipeline pulls from. Sources are
// static configuration and never change during a run.
//
// Role names the executive the feed is curated for (CEO, CFO, ...) and
// Category is the digest section its items are filed under. Both are
// optional labels copied onto every record from the source.
type FeedSource struct {
	Name     string `json:"name" toml:"name"`
	URL      string `json:"url" toml:"url"`
	Role     string `json:"role,omitempty" toml:"role"`
	Category string `json:"category,omitempty" toml:"category"`
}

// RawEntry is a single item as it comes out of a parsed feed. Link is the
// natural key used for deduplication.
type RawEntry struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	PublishedAt string `json:"published_at,omitempty"`
	Summary     string `json:"summary,omitempty"`

	// PublishedParsed is set when the feed library already resolved the
	// publish time. It takes precedence over PublishedAt.
	PublishedParsed *time.Time `json:"-"`
}

// Candidate is a raw entry that survived the duplicate and recency filters,
// tagged with its source and a timezone-aware publish time.
type Candidate struct {
	RawEntry
	SourceName  string    `json:"source_name"`
	Role        string    `json:"role,omitempty"`
	Category    string    `json:"category,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
