package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/web-analytics-service/internal/auth"
	"github.com/PratikDhanave/web-analytics-service/internal/handlers"
	"github.com/PratikDhanave/web-analytics-service/internal/metrics"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readyTimeout      = time.Second
)

// EventBackend is the store behind both ingestion and stats.
type EventBackend interface {
	handlers.EventStore
	handlers.EventCounter
}

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires the router to its backends.
type Deps struct {
	Websites auth.Registry
	Events   EventBackend
	// Ready lists the dependencies /ready must reach.
	Ready   []Pinger
	Metrics *metrics.Recorder
	Log     logger.Logger
	Now     func() time.Time
}

// NewRouter wires public endpoints, ingestion and authenticated APIs.
// Public: /health, /ready, /metrics, POST|OPTIONS /api/analytics/track
// Authenticated: GET /api/analytics/stats
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	log := deps.Log.Named("http")

	r := gin.New()
	r.Use(gin.Recovery(), metricsMiddleware(deps.Metrics), loggingMiddleware(log))

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms registry and store are reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		for _, p := range deps.Ready {
			if err := p.Ping(ctx); err != nil {
				log.Warn(ctx, "readiness check failed", logger.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Ingestion is authenticated by the apiKey in the body, not by headers.
	api := r.Group("/api/analytics", corsMiddleware())
	api.OPTIONS("/track", func(c *gin.Context) { c.Status(http.StatusOK) })
	handlers.RegisterTrackRoutes(api, handlers.Deps{
		Websites: deps.Websites,
		Events:   deps.Events,
		Metrics:  deps.Metrics,
		Log:      deps.Log,
		Now:      deps.Now,
	})

	// Stats group enforces website context via X-API-Key.
	stats := api.Group("", auth.APIKeyMiddleware(deps.Websites, deps.Log))
	handlers.RegisterStatsRoutes(stats, deps.Events, deps.Log)

	return r
}

// New returns an http.Server for h with the service timeouts applied.
func New(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
