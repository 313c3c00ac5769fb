package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/PratikDhanave/web-analytics-service/internal/auth"
	"github.com/PratikDhanave/web-analytics-service/internal/handlers"
	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/internal/registry"
	"github.com/PratikDhanave/web-analytics-service/internal/store"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
)

func newStatsRouter(reg auth.Registry, counter handlers.EventCounter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/analytics", auth.APIKeyMiddleware(reg, logger.Nop()))
	handlers.RegisterStatsRoutes(g, counter, logger.Nop())
	return r
}

func getStats(r http.Handler, query, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/analytics/stats"+query, nil)
	if key != "" {
		req.Header.Set("X-API-Key", key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestStats(t *testing.T) {
	Convey("Given stored events for two websites", t, func() {
		ctx := context.Background()
		reg := registry.NewMemory(
			models.Website{ID: "site_a", APIKey: "ak_a", IsActive: true},
			models.Website{ID: "site_b", APIKey: "ak_b", IsActive: true},
		)
		events := store.NewMemoryStore()
		at := func(site, typ string, ts time.Time) {
			_, err := events.Append(ctx, models.EnrichedEvent{WebsiteID: site, EventType: typ, CreatedAt: ts})
			So(err, ShouldBeNil)
		}
		base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
		at("site_a", "pageview", base)
		at("site_a", "pageview", base.Add(30*time.Minute))
		at("site_a", "pageview", base.Add(time.Hour))
		at("site_a", "click", base.Add(10*time.Minute))
		at("site_b", "pageview", base.Add(10*time.Minute))

		router := newStatsRouter(reg, events)
		window := "?eventType=pageview&from=2024-06-01T00:00:00Z&to=2024-06-01T01:00:00Z"

		Convey("The count covers the half-open window for the calling website only", func() {
			w := getStats(router, window, "ak_a")
			So(w.Code, ShouldEqual, http.StatusOK)
			resp := decode[models.StatsResponse](w)
			So(resp.Count, ShouldEqual, int64(2))
			So(resp.EventType, ShouldEqual, "pageview")
			So(resp.From.Equal(base), ShouldBeTrue)

			So(decode[models.StatsResponse](getStats(router, window, "ak_b")).Count, ShouldEqual, int64(1))
		})

		Convey("Missing or malformed parameters are rejected", func() {
			So(getStats(router, "?eventType=pageview", "ak_a").Code, ShouldEqual, http.StatusBadRequest)
			So(getStats(router, "?eventType=pageview&from=yesterday&to=2024-06-01T01:00:00Z", "ak_a").Code, ShouldEqual, http.StatusBadRequest)
			So(getStats(router, "?eventType=pageview&from=2024-06-01T01:00:00Z&to=2024-06-01T00:00:00Z", "ak_a").Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("An unknown key is unauthorized", func() {
			So(getStats(router, window, "ak_nope").Code, ShouldEqual, http.StatusUnauthorized)
		})
	})
}
