package pipeline

import (
	"sort"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// Order sorts candidates newest first. Equal publish times keep their input
// order.
func Order(cands []models.Candidate) []models.Candidate {
	out := make([]models.Candidate, len(cands))
	copy(out, cands)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out
}

// Cap truncates ordered to at most quota items.
func Cap(ordered []models.Candidate, quota int) []models.Candidate {
	if quota <= 0 {
		return nil
	}
	if len(ordered) <= quota {
		return ordered
	}
	return ordered[:quota]
}

// sourceBatch is the slice of the run's candidates that belong to one
// source.
type sourceBatch struct {
	source     models.FeedSource
	candidates []models.Candidate
}

// groupBySource splits cands into one batch per source in sources order,
// keeping the order of cands inside each batch. Sources without candidates
// still get an empty batch.
func groupBySource(sources []models.FeedSource, cands []models.Candidate) []sourceBatch {
	batches := make([]sourceBatch, len(sources))
	pos := make(map[string]int, len(sources))
	for i, s := range sources {
		batches[i].source = s
		if _, seen := pos[s.Name]; !seen {
			pos[s.Name] = i
		}
	}
	for _, c := range cands {
		i, ok := pos[c.SourceName]
		if !ok {
			continue
		}
		batches[i].candidates = append(batches[i].candidates, c)
	}
	return batches
}
