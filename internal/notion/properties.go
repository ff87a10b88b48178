package notion

import (
	"strings"
	"unicode/utf8"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// Notion rejects rich text content longer than this many characters.
const maxRichText = 2000

type parent struct {
	DatabaseID string `json:"database_id"`
}

type createPageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

// property is the union of the property value shapes we write. Only one
// field is set per value.
type property struct {
	Title       []richText    `json:"title,omitempty"`
	RichText    []richText    `json:"rich_text,omitempty"`
	URL         *string       `json:"url,omitempty"`
	Select      *option       `json:"select,omitempty"`
	MultiSelect *[]option     `json:"multi_select,omitempty"`
	Number      *int          `json:"number,omitempty"`
	Date        *dateProperty `json:"date,omitempty"`
}

type richText struct {
	Text textContent `json:"text"`
}

type textContent struct {
	Content string `json:"content"`
}

type option struct {
	Name string `json:"name"`
}

type dateProperty struct {
	Start string `json:"start"`
}

func recordProperties(r *models.Record) map[string]property {
	title := r.Title
	if title == "" {
		title = r.Link
	}
	props := map[string]property{
		"Title":        {Title: text(title)},
		"Link":         {URL: &r.Link},
		"Source":       {Select: &option{Name: selectLabel(r.SourceName)}},
		"Published":    {Date: &dateProperty{Start: formatDate(r.Candidate.PublishedAt)}},
		"Keywords":     {MultiSelect: options(r.Keywords)},
		"Reading Time": {Number: intPtr(r.ReadingTimeMinutes)},
		"Entities":     {MultiSelect: options(r.Entities)},
	}
	if t := text(r.TranslatedTitle); len(t) > 0 {
		props["Translated Title"] = property{RichText: t}
	}
	if t := text(r.Enrichment.Summary); len(t) > 0 {
		props["AI Summary"] = property{RichText: t}
	}
	if l := selectLabel(r.Role); l != "" {
		props["Role"] = property{Select: &option{Name: l}}
	}
	if l := selectLabel(r.Category); l != "" {
		props["Category"] = property{Select: &option{Name: l}}
	}
	if r.Sentiment != "" && r.Sentiment != models.SentimentUnknown {
		props["Sentiment"] = property{Select: &option{Name: string(r.Sentiment)}}
	}
	return props
}

func runLogProperties(l *models.RunLog) map[string]property {
	return map[string]property{
		"Name":             {Title: text(l.Title)},
		"Source":           {Select: &option{Name: selectLabel(l.SourceName)}},
		"Success Count":    {Number: intPtr(l.SuccessCount)},
		"Tokens Used":      {Number: intPtr(l.TokensUsed)},
		"Enrichment Calls": {Number: intPtr(l.EnrichmentCalls)},
	}
}

// text wraps s as a single rich text span, or nil when s is empty.
func text(s string) []richText {
	s = truncate(s, maxRichText)
	if s == "" {
		return nil
	}
	return []richText{{Text: textContent{Content: s}}}
}

func options(labels []string) *[]option {
	out := make([]option, 0, len(labels))
	seen := make(map[string]bool, len(labels))
	for _, l := range labels {
		l = selectLabel(l)
		if l == "" || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, option{Name: l})
	}
	return &out
}

// selectLabel makes s acceptable as a select option name: no commas and
// at most 100 characters.
func selectLabel(s string) string {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
	return truncate(s, 100)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func intPtr(v int) *int { return &v }
