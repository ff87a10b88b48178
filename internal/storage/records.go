package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// QueryRecords returns one page of stored links. The cursor is the last row
// id of the previous page; an empty cursor starts from the beginning.
func (s *Store) QueryRecords(ctx context.Context, cursor string, pageSize int) (*models.RecordPage, error) {
	if pageSize <= 0 {
		pageSize = 100
	}

	var after int64
	if cursor != "" {
		v, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid cursor %q: %w", cursor, err)
		}
		after = v
	}

	// One extra row tells us whether another page exists.
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, link FROM records WHERE id > ? ORDER BY id LIMIT ?`,
		after, pageSize+1,
	)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	page := &models.RecordPage{Links: make([]string, 0, pageSize)}
	var lastID int64
	for rows.Next() {
		var (
			id   int64
			link string
		)
		if err := rows.Scan(&id, &link); err != nil {
			return nil, fmt.Errorf("scanning record link: %w", err)
		}
		if len(page.Links) == pageSize {
			page.HasMore = true
			break
		}
		page.Links = append(page.Links, link)
		lastID = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	if page.HasMore {
		page.NextCursor = strconv.FormatInt(lastID, 10)
	}
	return page, nil
}

// CreateRecord inserts a record and sets its ID. A record whose link is
// already stored fails with ErrDuplicate.
func (s *Store) CreateRecord(ctx context.Context, r *models.Record) error {
	keywords, err := marshalLabels(r.Keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}
	entities, err := marshalLabels(r.Entities)
	if err != nil {
		return fmt.Errorf("encoding entities: %w", err)
	}

	sentiment := r.Sentiment
	if sentiment == "" {
		sentiment = models.SentimentUnknown
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO records (title, translated_title, link, source_name, role, category, published_at,
			feed_summary, ai_summary, keywords, sentiment, entities, tokens_used, reading_time_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Title, r.TranslatedTitle, r.Link, r.SourceName, r.Role, r.Category, formatTime(r.Candidate.PublishedAt),
		r.Candidate.Summary, r.Enrichment.Summary, keywords, string(sentiment), entities,
		r.TokensUsed, r.ReadingTimeMinutes,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("creating record %q: %w", r.Link, ErrDuplicate)
		}
		return fmt.Errorf("creating record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting record id: %w", err)
	}
	r.ID = id
	return nil
}

// ListRecords returns the most recently published records, newest first.
// A non-empty source restricts the result to that source.
func (s *Store) ListRecords(ctx context.Context, source string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT id, title, translated_title, link, source_name, role, category, published_at,
			feed_summary, ai_summary, keywords, sentiment, entities, tokens_used,
			reading_time_minutes, created_at
		 FROM records`
	args := []any{}
	if source != "" {
		query += ` WHERE source_name = ?`
		args = append(args, source)
	}
	query += ` ORDER BY published_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return records, nil
}

// GetRecordByLink returns the record stored under link.
// Returns nil, ErrNotFound if no matching row exists.
func (s *Store) GetRecordByLink(ctx context.Context, link string) (*models.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, translated_title, link, source_name, role, category, published_at,
			feed_summary, ai_summary, keywords, sentiment, entities, tokens_used,
			reading_time_minutes, created_at
		 FROM records WHERE link = ?`, link,
	)
	r, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (*models.Record, error) {
	var (
		r                  models.Record
		publishedAt        string
		createdAt          string
		keywords, entities string
		sentiment          string
	)
	err := sc.Scan(
		&r.ID, &r.Title, &r.TranslatedTitle, &r.Link, &r.SourceName, &r.Role, &r.Category, &publishedAt,
		&r.Candidate.Summary, &r.Enrichment.Summary, &keywords, &sentiment, &entities,
		&r.TokensUsed, &r.ReadingTimeMinutes, &createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	r.Candidate.PublishedAt = parseTime(publishedAt)
	r.RawEntry.PublishedAt = publishedAt
	r.CreatedAt = parseTime(createdAt)
	r.Sentiment = models.ParseSentiment(sentiment)
	r.Keywords = unmarshalLabels(keywords)
	r.Entities = unmarshalLabels(entities)
	return &r, nil
}

func marshalLabels(labels []string) (string, error) {
	if labels == nil {
		labels = []string{}
	}
	b, err := json.Marshal(labels)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func unmarshalLabels(s string) []string {
	labels := []string{}
	if s == "" {
		return labels
	}
	if err := json.Unmarshal([]byte(s), &labels); err != nil {
		return []string{}
	}
	return labels
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}
