package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/robinaudi/c-level-rss-daily/internal/ai"
	"github.com/robinaudi/c-level-rss-daily/internal/api"
	"github.com/robinaudi/c-level-rss-daily/internal/api/handlers"
	"github.com/robinaudi/c-level-rss-daily/internal/config"
	"github.com/robinaudi/c-level-rss-daily/internal/enrich"
	"github.com/robinaudi/c-level-rss-daily/internal/feeds"
	"github.com/robinaudi/c-level-rss-daily/internal/logging"
	"github.com/robinaudi/c-level-rss-daily/internal/metrics"
	"github.com/robinaudi/c-level-rss-daily/internal/notion"
	"github.com/robinaudi/c-level-rss-daily/internal/pipeline"
	"github.com/robinaudi/c-level-rss-daily/internal/scheduler"
	"github.com/robinaudi/c-level-rss-daily/internal/storage"
	"github.com/robinaudi/c-level-rss-daily/internal/translate"
)

// Exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.toml", "path to config file")
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before the config")
	once := flag.Bool("once", false, "run the pipeline once and exit")
	flag.Parse()

	if err := config.LoadEnvFile(*envFile); err != nil {
		slog.Error("failed to load env file", "error", err)
		return exitConfig
	}

	// Load configuration (auto-creates default if missing). Missing store
	// credentials fail here, before any network call.
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitConfig
	}

	logger, err := logging.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		slog.Error("failed to configure logging", "error", err)
		return exitConfig
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, records, closeStore, err := openStore(cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		return exitFailed
	}
	defer closeStore()

	stage, err := newEnrichmentStage(cfg)
	if err != nil {
		slog.Error("failed to configure enrichment", "error", err)
		return exitConfig
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		slog.Error("failed to register metrics", "error", err)
		return exitFailed
	}

	fetcher := feeds.NewFetcher(feeds.FetchOptions{Timeout: cfg.Pipeline.FetchTimeout()})
	deps := pipeline.Deps{
		Store:       store,
		Fetcher:     fetcher,
		Enricher:    stage,
		RateLimiter: pipeline.FixedDelay(cfg.Pipeline.RateLimit()),
		Observer:    collector,
	}
	if cfg.Pipeline.ExtractFullText {
		deps.Extractor = fetcher
	}

	ctrl := pipeline.NewController(pipeline.Options{
		Sources:             cfg.Sources,
		Quota:               cfg.Pipeline.MaxEntries,
		Window:              cfg.Pipeline.Window(),
		AbortOnPartialIndex: cfg.Pipeline.AbortOnPartialIndex,
	}, deps)

	if *once {
		report, err := ctrl.Run(ctx)
		if err != nil {
			slog.Error("pipeline run failed", "error", err)
			return exitFailed
		}
		slog.Info("pipeline run complete",
			"run_id", report.ID,
			"written", report.Written,
			"candidates", report.Candidates,
			"partial_index", report.PartialIndex,
		)
		return exitOK
	}

	if err := serve(ctx, cfg, ctrl, records, collector); err != nil {
		slog.Error("server failed", "error", err)
		return exitFailed
	}
	return exitOK
}

// serve runs the cron scheduler and, when enabled, the HTTP API until ctx
// is cancelled.
func serve(ctx context.Context, cfg *config.Config, ctrl *pipeline.Controller, records handlers.RecordLister, collector *metrics.Collector) error {
	sched, err := scheduler.New(cfg.Schedule.Cron, func(ctx context.Context) {
		if _, err := ctrl.Run(ctx); err != nil {
			if errors.Is(err, pipeline.ErrRunInProgress) {
				slog.Warn("skipping scheduled run, previous run still active")
				return
			}
			slog.Error("scheduled pipeline run failed", "error", err)
		}
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sched.Run(gctx) })

	if cfg.Server.Enabled {
		// Localhost only: the API can trigger runs and has no auth.
		addr := fmt.Sprintf("localhost:%d", cfg.Server.Port)
		srv := &http.Server{
			Addr: addr,
			Handler: api.NewRouter(api.Options{
				Controller: ctrl,
				Records:    records,
				Metrics:    collector,
				Backend:    cfg.Store.Backend,
				RunContext: gctx,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			slog.Info("starting server", "addr", "http://"+addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// openStore selects the persisted store. records is nil unless the backend
// supports listing.
func openStore(cfg *config.Config) (store pipeline.Store, records handlers.RecordLister, closeFn func(), err error) {
	switch cfg.Store.Backend {
	case "notion":
		client := notion.New(notion.Config{
			Token:         cfg.Notion.Token,
			DatabaseID:    cfg.Notion.DatabaseID,
			LogDatabaseID: cfg.Notion.LogDatabaseID,
			APIVersion:    cfg.Notion.APIVersion,
		})
		slog.Info("using notion store", "database_id", cfg.Notion.DatabaseID, "run_logs", cfg.Notion.LogDatabaseID != "")
		return client, nil, func() {}, nil

	default:
		// Open database with WAL mode and pragmas, then migrate.
		db, err := storage.OpenDatabase(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := storage.RunMigrations(context.Background(), db); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		s := storage.NewStore(db)
		return s, s, func() { s.Close() }, nil
	}
}

// newEnrichmentStage builds translation and analysis. Without an AI key the
// analysis step is skipped for every item.
func newEnrichmentStage(cfg *config.Config) (*enrich.Stage, error) {
	var (
		provider ai.Provider
		analyzer enrich.Analyzer
	)
	if cfg.AI.APIKey != "" {
		p, err := ai.NewProvider(ai.ProviderConfig{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
		})
		if err != nil {
			return nil, fmt.Errorf("creating AI provider: %w", err)
		}
		provider = p
		analyzer = ai.NewAnalyzer(p)
		slog.Info("AI provider configured", "provider", cfg.AI.Provider, "model", cfg.AI.Model)
	} else {
		slog.Warn("no AI provider API key configured, analysis will be skipped")
	}

	translator, err := translate.New(cfg.Translation, provider)
	if err != nil {
		return nil, err
	}
	return enrich.NewStage(translator, analyzer, cfg.Translation.TargetLanguage), nil
}
