package pipeline

import (
	"context"
	"log/slog"
)

// DefaultPageSize is the page size used when querying the store.
const DefaultPageSize = 100

// DuplicateIndex is the set of links known to be persisted. It only grows.
type DuplicateIndex struct {
	links map[string]struct{}
}

// NewDuplicateIndex returns an index seeded with links.
func NewDuplicateIndex(links ...string) *DuplicateIndex {
	idx := &DuplicateIndex{links: make(map[string]struct{}, len(links))}
	for _, l := range links {
		idx.Add(l)
	}
	return idx
}

// Has reports whether link is in the index.
func (d *DuplicateIndex) Has(link string) bool {
	_, ok := d.links[link]
	return ok
}

// Add inserts link. Empty links are ignored.
func (d *DuplicateIndex) Add(link string) {
	if link == "" {
		return
	}
	d.links[link] = struct{}{}
}

// Len returns the number of links.
func (d *DuplicateIndex) Len() int {
	return len(d.links)
}

// BuildIndex walks every page of q and collects the stored links. A failing
// page is not retried: the links gathered so far are returned and partial is
// true.
func BuildIndex(ctx context.Context, q RecordQuerier, pageSize int) (idx *DuplicateIndex, partial bool) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	idx = NewDuplicateIndex()
	cursor := ""
	pages := 0
	for {
		page, err := q.QueryRecords(ctx, cursor, pageSize)
		if err != nil {
			slog.Warn("duplicate index query failed, continuing with partial index",
				"pages", pages,
				"links", idx.Len(),
				"error", err,
			)
			return idx, true
		}
		pages++
		for _, link := range page.Links {
			idx.Add(link)
		}

		if !page.HasMore {
			break
		}
		if page.NextCursor == "" || page.NextCursor == cursor {
			slog.Warn("store returned has_more without a new cursor, stopping",
				"pages", pages,
				"cursor", cursor,
			)
			return idx, true
		}
		cursor = page.NextCursor
	}

	slog.Info("built duplicate index", "pages", pages, "links", idx.Len())
	return idx, false
}
