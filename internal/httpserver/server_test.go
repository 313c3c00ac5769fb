package httpserver

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/PratikDhanave/web-analytics-service/internal/metrics"
	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/internal/registry"
	"github.com/PratikDhanave/web-analytics-service/internal/store"
)

type pingerFunc func(context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(h http.Handler, method, path string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRouter(t *testing.T) {
	Convey("Given a router over in-memory backends", t, func() {
		reg := registry.NewMemory(models.Website{ID: "site_1", APIKey: "ak_test", IsActive: true})
		events := store.NewMemoryStore()
		rec := metrics.New()
		healthy := true
		router := NewRouter(Deps{
			Websites: reg,
			Events:   events,
			Metrics:  rec,
			Ready: []Pinger{events, pingerFunc(func(context.Context) error {
				if !healthy {
					return errors.New("db down")
				}
				return nil
			})},
		})

		Convey("/health is always ok", func() {
			So(serve(router, http.MethodGet, "/health", nil).Code, ShouldEqual, http.StatusOK)
		})

		Convey("/ready reflects the dependencies", func() {
			So(serve(router, http.MethodGet, "/ready", nil).Code, ShouldEqual, http.StatusOK)
			healthy = false
			w := serve(router, http.MethodGet, "/ready", nil)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldNotContainSubstring, "db down")
		})

		Convey("A preflight request is answered with CORS headers", func() {
			w := serve(router, http.MethodOptions, "/api/analytics/track", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			So(w.Header().Get("Access-Control-Allow-Methods"), ShouldEqual, "POST, OPTIONS")
			So(w.Header().Get("Access-Control-Allow-Headers"), ShouldEqual, "Content-Type, Authorization")
			So(events.Len(), ShouldEqual, 0)
		})

		Convey("A tracked event is accepted and carries CORS headers", func() {
			w := serve(router, http.MethodPost, "/api/analytics/track",
				bytes.NewBufferString(`{"apiKey":"ak_test","eventType":"pageview"}`))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
			So(events.Len(), ShouldEqual, 1)

			Convey("And is visible on /metrics", func() {
				body := serve(router, http.MethodGet, "/metrics", nil).Body.String()
				So(body, ShouldContainSubstring, `analytics_events_accepted_total{event_type="pageview"} 1`)
				So(body, ShouldContainSubstring, `route="/api/analytics/track"`)
			})
		})

		Convey("Stats require a header key", func() {
			w := serve(router, http.MethodGet, "/api/analytics/stats?eventType=pageview&from=2024-01-01T00:00:00Z&to=2025-01-01T00:00:00Z", nil)
			So(w.Code, ShouldEqual, http.StatusUnauthorized)
		})

		Convey("Unknown routes are 404", func() {
			So(serve(router, http.MethodGet, "/nope", nil).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestNewServer(t *testing.T) {
	Convey("New applies timeouts", t, func() {
		srv := New(":0", http.NotFoundHandler())
		So(srv.Addr, ShouldEqual, ":0")
		So(srv.ReadHeaderTimeout, ShouldEqual, readHeaderTimeout)
		So(srv.WriteTimeout, ShouldEqual, writeTimeout)
	})
}
