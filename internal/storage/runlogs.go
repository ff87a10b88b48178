package storage

import (
	"context"
	"fmt"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// CreateRunLog appends one per-source run log and sets its ID.
func (s *Store) CreateRunLog(ctx context.Context, l *models.RunLog) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO run_logs (title, source_name, success_count, enrichment_calls, tokens_used)
		 VALUES (?, ?, ?, ?, ?)`,
		l.Title, l.SourceName, l.SuccessCount, l.EnrichmentCalls, l.TokensUsed,
	)
	if err != nil {
		return fmt.Errorf("creating run log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting run log id: %w", err)
	}
	l.ID = id
	return nil
}

// ListRunLogs returns the most recent run logs, newest first.
func (s *Store) ListRunLogs(ctx context.Context, limit int) ([]models.RunLog, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, source_name, success_count, enrichment_calls, tokens_used, created_at
		 FROM run_logs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing run logs: %w", err)
	}
	defer rows.Close()

	logs := []models.RunLog{}
	for rows.Next() {
		var (
			l         models.RunLog
			createdAt string
		)
		if err := rows.Scan(&l.ID, &l.Title, &l.SourceName, &l.SuccessCount,
			&l.EnrichmentCalls, &l.TokensUsed, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning run log: %w", err)
		}
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating run logs: %w", err)
	}
	return logs, nil
}
