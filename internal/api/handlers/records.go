package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// RecordLister lists stored records and run logs. Only the local store
// implements it.
type RecordLister interface {
	ListRecords(ctx context.Context, source string, limit int) ([]models.Record, error)
	ListRunLogs(ctx context.Context, limit int) ([]models.RunLog, error)
}

// ListRecords handles GET /api/records. It returns 501 when the configured
// backend cannot list records.
func ListRecords(l RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if l == nil {
			writeError(w, http.StatusNotImplemented, "Record listing requires the sqlite backend")
			return
		}

		limit, err := parseLimit(r, 50, 500)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		records, err := l.ListRecords(r.Context(), r.URL.Query().Get("source"), limit)
		if err != nil {
			slog.Error("failed to list records", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list records")
			return
		}
		writeJSON(w, http.StatusOK, records)
	}
}

// ListRunLogs handles GET /api/run-logs.
func ListRunLogs(l RecordLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if l == nil {
			writeError(w, http.StatusNotImplemented, "Run log listing requires the sqlite backend")
			return
		}

		limit, err := parseLimit(r, 50, 500)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		logs, err := l.ListRunLogs(r.Context(), limit)
		if err != nil {
			slog.Error("failed to list run logs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list run logs")
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}
