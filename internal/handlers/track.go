package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/web-analytics-service/internal/auth"
	"github.com/PratikDhanave/web-analytics-service/internal/enrich"
	"github.com/PratikDhanave/web-analytics-service/internal/metrics"
	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// Response messages. Internal causes are logged, never returned.
const (
	msgValidation = "Validation error"
	msgInternal   = "Internal server error"
)

// EventStore is the append-only write path for enriched events.
type EventStore interface {
	Append(ctx context.Context, ev models.EnrichedEvent) (string, error)
}

// Deps bundles what the ingestion handlers need.
type Deps struct {
	Websites auth.Registry
	Events   EventStore
	Metrics  *metrics.Recorder
	Log      logger.Logger
	// Now is the server clock; defaults to time.Now.
	Now func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

// RegisterTrackRoutes registers the ingestion endpoint.
//
// POST /api/analytics/track
// - validate -> resolve website by apiKey -> enrich -> append
// - stateless per request: no dedup, every accepted call is a new event
func RegisterTrackRoutes(r gin.IRoutes, deps Deps) {
	deps = deps.withDefaults()
	useJSONFieldNames()
	log := deps.Log.Named("track")

	r.POST("/track", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req models.TrackedEvent
		if err := c.ShouldBindJSON(&req); err != nil {
			deps.Metrics.EventRejected(metrics.ReasonValidation)
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msgValidation, Details: fieldErrors(err)})
			return
		}

		site, ok, err := deps.Websites.FindActiveByAPIKey(ctx, req.APIKey)
		if err != nil {
			log.Error(ctx, "website lookup failed", logger.Error(err))
			deps.Metrics.EventRejected(metrics.ReasonInternal)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
			return
		}
		if !ok {
			deps.Metrics.EventRejected(metrics.ReasonUnauthorized)
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: auth.UnauthorizedMessage})
			return
		}

		ev := enrich.Event(req, site, c.Request, deps.Now())

		eventID, err := deps.Events.Append(ctx, ev)
		if err != nil {
			log.Error(ctx, "event append failed",
				logger.String("website_id", site.ID),
				logger.String("event_type", ev.EventType),
				logger.Error(err))
			deps.Metrics.EventRejected(metrics.ReasonInternal)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
			return
		}

		deps.Metrics.EventAccepted(ev.EventType)
		log.Debug(ctx, "event accepted",
			logger.String("event_id", eventID),
			logger.String("website_id", site.ID),
			logger.String("event_type", ev.EventType))

		c.JSON(http.StatusOK, models.TrackResponse{Success: true, EventID: eventID})
	})
}
