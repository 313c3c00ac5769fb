package httpserver

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PratikDhanave/web-analytics-service/internal/enrich"
	"github.com/PratikDhanave/web-analytics-service/internal/metrics"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

// CORS headers advertised to browser trackers.
const (
	allowOrigin  = "*"
	allowMethods = "POST, OPTIONS"
	allowHeaders = "Content-Type, Authorization"
)

// corsMiddleware sets permissive CORS headers and answers preflight requests.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowOrigin)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}

// loggingMiddleware logs one line per request once the handler chain returns.
func loggingMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("duration", time.Since(start)),
			logger.String("ip", enrich.ClientIP(c.Request)),
		}
		if status >= http.StatusInternalServerError {
			log.Warn(c.Request.Context(), "request failed", fields...)
			return
		}
		log.Debug(c.Request.Context(), "request", fields...)
	}
}

// metricsMiddleware records request counts and latency keyed by route template.
func metricsMiddleware(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rec.ObserveRequest(c.FullPath(), c.Request.Method, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
