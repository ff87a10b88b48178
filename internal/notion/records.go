package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results []struct {
		ID         string `json:"id"`
		Properties struct {
			Link struct {
				URL *string `json:"url"`
			} `json:"Link"`
		} `json:"properties"`
	} `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// QueryRecords returns one page of links from the content database.
// Pages without a Link value are skipped.
func (c *Client) QueryRecords(ctx context.Context, cursor string, pageSize int) (*models.RecordPage, error) {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var resp queryResponse
	path := "/v1/databases/" + c.cfg.DatabaseID + "/query"
	if err := c.do(ctx, "POST", path, queryRequest{StartCursor: cursor, PageSize: pageSize}, &resp); err != nil {
		return nil, fmt.Errorf("querying notion database: %w", err)
	}

	page := &models.RecordPage{
		Links:   make([]string, 0, len(resp.Results)),
		HasMore: resp.HasMore,
	}
	for _, r := range resp.Results {
		if r.Properties.Link.URL == nil || *r.Properties.Link.URL == "" {
			continue
		}
		page.Links = append(page.Links, *r.Properties.Link.URL)
	}
	if resp.NextCursor != nil {
		page.NextCursor = *resp.NextCursor
	}
	return page, nil
}

// CreateRecord creates one page in the content database.
func (c *Client) CreateRecord(ctx context.Context, r *models.Record) error {
	req := createPageRequest{
		Parent:     parent{DatabaseID: c.cfg.DatabaseID},
		Properties: recordProperties(r),
	}
	if err := c.do(ctx, "POST", "/v1/pages", req, nil); err != nil {
		return fmt.Errorf("creating notion page for %q: %w", r.Link, err)
	}
	return nil
}

// CreateRunLog creates one page in the log database. Without a configured
// log database this is a no-op.
func (c *Client) CreateRunLog(ctx context.Context, l *models.RunLog) error {
	if !c.logsEnabled() {
		return nil
	}
	req := createPageRequest{
		Parent:     parent{DatabaseID: c.cfg.LogDatabaseID},
		Properties: runLogProperties(l),
	}
	if err := c.do(ctx, "POST", "/v1/pages", req, nil); err != nil {
		return fmt.Errorf("creating notion run log for %q: %w", l.SourceName, err)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format(time.RFC3339)
}
