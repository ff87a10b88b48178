package handlers

import (
	"net/http"

	"github.com/robinaudi/c-level-rss-daily/internal/models"
)

// SourceLister exposes the configured feed sources.
type SourceLister interface {
	Sources() []models.FeedSource
}

// GetSources handles GET /api/sources. It returns the configured feeds in
// processing order.
func GetSources(l SourceLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, l.Sources())
	}
}
