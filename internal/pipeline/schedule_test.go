package pipeline

import (
	"testing"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

func cand(link, source string, at time.Time) models.Candidate {
	return models.Candidate{
		RawEntry:    models.RawEntry{Link: link},
		SourceName:  source,
		PublishedAt: at,
	}
}

func TestOrder_NewestFirstStable(t *testing.T) {
	in := []models.Candidate{
		cand("old", "A", testNow.Add(-2*time.Hour)),
		cand("tie-1", "A", testNow.Add(-time.Hour)),
		cand("new", "B", testNow),
		cand("tie-2", "B", testNow.Add(-time.Hour)),
	}

	got := Order(in)

	want := []string{"new", "tie-1", "tie-2", "old"}
	for i, w := range want {
		if got[i].Link != w {
			t.Fatalf("Order()[%d] = %q, want %q (got %v)", i, got[i].Link, w, got)
		}
	}
	for i := 1; i < len(got); i++ {
		if got[i].PublishedAt.After(got[i-1].PublishedAt) {
			t.Errorf("order not non-increasing at %d", i)
		}
	}
	if in[0].Link != "old" {
		t.Error("Order() must not modify its input")
	}
}

func TestCap(t *testing.T) {
	in := []models.Candidate{cand("a", "A", testNow), cand("b", "A", testNow), cand("c", "A", testNow)}

	tests := []struct {
		quota int
		want  int
	}{
		{quota: 0, want: 0},
		{quota: -1, want: 0},
		{quota: 2, want: 2},
		{quota: 5, want: 3},
	}
	for _, tt := range tests {
		if got := Cap(in, tt.quota); len(got) != tt.want {
			t.Errorf("Cap(quota=%d) = %d items, want %d", tt.quota, len(got), tt.want)
		}
	}
}

func TestGroupBySource(t *testing.T) {
	sources := []models.FeedSource{{Name: "A"}, {Name: "B"}, {Name: "C"}}
	ordered := []models.Candidate{
		cand("b1", "B", testNow),
		cand("a1", "A", testNow.Add(-time.Hour)),
		cand("b2", "B", testNow.Add(-2*time.Hour)),
		cand("z1", "Z", testNow),
	}

	got := groupBySource(sources, ordered)

	if len(got) != 3 {
		t.Fatalf("groupBySource() = %d batches, want 3", len(got))
	}
	if got[0].source.Name != "A" || len(got[0].candidates) != 1 {
		t.Errorf("batch A = %+v", got[0])
	}
	if got[1].candidates[0].Link != "b1" || got[1].candidates[1].Link != "b2" {
		t.Errorf("batch B order = %+v", got[1].candidates)
	}
	if len(got[2].candidates) != 0 {
		t.Errorf("batch C = %+v, want empty", got[2].candidates)
	}
}
