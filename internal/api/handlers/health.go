package handlers

import "net/http"

// RunState reports whether a pipeline run is executing.
type RunState interface {
	Busy() bool
}

// Health handles GET /api/health.
func Health(s RunState, backend string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":  "ok",
			"backend": backend,
			"running": s.Busy(),
		})
	}
}
