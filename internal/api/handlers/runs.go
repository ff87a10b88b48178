package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
	"github.com/robinaudi/c-level-rss-daily/internal/pipeline"
)

// RunHistory exposes recent run reports, newest first.
type RunHistory interface {
	History() []models.RunReport
}

// RunStarter launches a background run.
type RunStarter interface {
	Start(ctx context.Context) error
}

// ListRuns handles GET /api/runs.
func ListRuns(h RunHistory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := parseLimit(r, 20, 100)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		runs := h.History()
		if len(runs) > limit {
			runs = runs[:limit]
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

// TriggerRun handles POST /api/runs. The run is bound to runCtx, not the
// request, so it outlives the response.
func TriggerRun(runCtx context.Context, s RunStarter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Start(runCtx); err != nil {
			if errors.Is(err, pipeline.ErrRunInProgress) {
				writeError(w, http.StatusConflict, "A run is already in progress")
				return
			}
			slog.Error("failed to start run", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to start run")
			return
		}

		slog.Info("pipeline run triggered via API")
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}
