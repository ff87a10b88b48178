// Package api serves the HTTP surface: health, configured sources, run
// history and triggers, stored records, and Prometheus metrics.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/robinaudi/c-level-rss-daily/internal/api/handlers"
	"github.com/robinaudi/c-level-rss-daily/internal/metrics"
)

// Controller is the pipeline surface the API drives.
type Controller interface {
	handlers.RunState
	handlers.RunHistory
	handlers.RunStarter
	handlers.SourceLister
}

// Options configures the router. Records may be nil when the backend
// cannot list records; Metrics may be nil to disable /metrics.
type Options struct {
	Controller Controller
	Records    handlers.RecordLister
	Metrics    *metrics.Collector
	Backend    string

	// RunContext bounds runs started through the API.
	RunContext context.Context
}

// NewRouter creates the chi router with all API routes.
func NewRouter(opts Options) *chi.Mux {
	runCtx := opts.RunContext
	if runCtx == nil {
		runCtx = context.Background()
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(Recovery)
	r.Use(CORS)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.InstrumentHandler)
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handlers.Health(opts.Controller, opts.Backend))
		api.Get("/sources", handlers.GetSources(opts.Controller))

		api.Get("/runs", handlers.ListRuns(opts.Controller))
		api.Post("/runs", handlers.TriggerRun(runCtx, opts.Controller))

		api.Get("/records", handlers.ListRecords(opts.Records))
		api.Get("/run-logs", handlers.ListRunLogs(opts.Records))
	})

	return r
}
