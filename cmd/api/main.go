package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/PratikDhanave/web-analytics-service/internal/config"
	"github.com/PratikDhanave/web-analytics-service/internal/httpserver"
	"github.com/PratikDhanave/web-analytics-service/internal/metrics"
	"github.com/PratikDhanave/web-analytics-service/internal/registry"
	"github.com/PratikDhanave/web-analytics-service/internal/store"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

const (
	shutdownTimeout = 15 * time.Second
	schemaTimeout   = 30 * time.Second
)

// main boots the service: env → config → logging → backends → HTTP server.
func main() {
	// A local .env is optional; real environments set variables directly.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		os.Stderr.WriteString("failed to read .env: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Use stderr for initialization errors since logger isn't available yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups),
	); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	rec := metrics.New(metrics.WithRuntimeMetrics(true))

	deps, cleanup, err := buildBackends(ctx, cfg, rec, log)
	if err != nil {
		log.Error(ctx, "failed to initialize backends", logger.String("store", cfg.Store), logger.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	srv := httpserver.New(cfg.Addr, httpserver.NewRouter(deps))

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr), logger.String("store", cfg.Store))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	log.Info(ctx, "server stopped")
}

// buildBackends selects the website registry and event store from cfg.
func buildBackends(ctx context.Context, cfg *config.Config, rec *metrics.Recorder, log logger.Logger) (httpserver.Deps, func(), error) {
	deps := httpserver.Deps{Metrics: rec, Log: log}

	seeds, err := cfg.SeedWebsites()
	if err != nil {
		return deps, nil, err
	}

	if cfg.Store == config.StorePostgres {
		pg, err := store.NewPostgresStore(cfg.DBURL)
		if err != nil {
			return deps, nil, err
		}

		// Ensure required tables/indexes exist so `docker compose up --build` is enough.
		schemaCtx, cancel := context.WithTimeout(ctx, schemaTimeout)
		defer cancel()
		if err := pg.EnsureSchema(schemaCtx); err != nil {
			pg.Close()
			return deps, nil, err
		}
		for _, w := range seeds {
			if err := pg.UpsertWebsite(schemaCtx, w); err != nil {
				pg.Close()
				return deps, nil, err
			}
		}
		if sites, err := pg.ListWebsites(schemaCtx); err == nil {
			rec.SetRegisteredWebsites(len(sites))
		}
		if cfg.WebsitesFile != "" {
			log.Warn(ctx, "websites_file is ignored with the postgres store", logger.String("path", cfg.WebsitesFile))
		}

		deps.Websites, deps.Events = pg, pg
		deps.Ready = []httpserver.Pinger{pg}
		return deps, pg.Close, nil
	}

	events := store.NewMemoryStore()
	deps.Events = events

	if cfg.WebsitesFile == "" {
		mem := registry.NewMemory(seeds...)
		rec.SetRegisteredWebsites(mem.Len())
		deps.Websites = mem
		deps.Ready = []httpserver.Pinger{mem, events}
		return deps, func() {}, nil
	}

	file, err := registry.NewFile(cfg.WebsitesFile, log.Named("registry"))
	if err != nil {
		return deps, nil, err
	}
	if len(seeds) > 0 {
		log.Warn(ctx, "websites is ignored when websites_file is set", logger.String("path", cfg.WebsitesFile))
	}
	rec.SetRegisteredWebsites(file.Len())
	file.OnReload(rec.SetRegisteredWebsites)

	stopWatch, err := file.Watch(ctx)
	if err != nil {
		return deps, nil, err
	}
	log.Info(ctx, "watching website registry", logger.String("path", cfg.WebsitesFile), logger.Int("websites", file.Len()))

	deps.Websites = file
	deps.Ready = []httpserver.Pinger{file, events}
	return deps, stopWatch, nil
}
