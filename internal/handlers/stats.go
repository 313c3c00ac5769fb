package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/web-analytics-service/internal/auth"
	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// EventCounter is the read path behind the stats endpoint.
type EventCounter interface {
	CountEvents(ctx context.Context, websiteID, eventType string, from, to time.Time) (int64, error)
}

// parseRFC3339 parses an RFC3339 timestamp and normalizes it to UTC.
func parseRFC3339(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// RegisterStatsRoutes registers the serving-path endpoint.
//
// GET /stats?eventType=...&from=...&to=...
// - Requires auth.APIKeyMiddleware upstream (website context)
// - Returns count for the window [from,to)
func RegisterStatsRoutes(r gin.IRoutes, counter EventCounter, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("stats")

	r.GET("/stats", func(c *gin.Context) {
		site, ok := auth.Website(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: auth.UnauthorizedMessage})
			return
		}

		eventType := c.Query("eventType")
		fromStr := c.Query("from")
		toStr := c.Query("to")

		// Required query params per contract.
		if eventType == "" || fromStr == "" || toStr == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "eventType, from, to are required"})
			return
		}

		from, err := parseRFC3339(fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "from must be RFC3339"})
			return
		}
		to, err := parseRFC3339(toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "to must be RFC3339"})
			return
		}

		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "from must be < to"})
			return
		}

		count, err := counter.CountEvents(c.Request.Context(), site.ID, eventType, from, to)
		if err != nil {
			log.Error(c.Request.Context(), "count query failed", logger.String("website_id", site.ID), logger.Error(err))
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
			return
		}

		c.JSON(http.StatusOK, models.StatsResponse{
			EventType: eventType,
			Count:     count,
			From:      from,
			To:        to,
		})
	})
}
