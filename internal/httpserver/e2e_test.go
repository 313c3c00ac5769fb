package httpserver_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/PratikDhanave/web-analytics-service/internal/httpserver"
	"github.com/PratikDhanave/web-analytics-service/internal/models"
	"github.com/PratikDhanave/web-analytics-service/internal/registry"
	"github.com/PratikDhanave/web-analytics-service/internal/store"
	"github.com/PratikDhanave/web-analytics-service/pkg/logger"
	"github.com/PratikDhanave/web-analytics-service/pkg/tracker"
	"github.com/PratikDhanave/web-analytics-service/pkg/tracker/trackertest"
)

const androidChromeUA = "Mozilla/5.0 (Linux; Android 14; Pixel 8) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Mobile Safari/537.36"

func TestTrackerAgainstServer(t *testing.T) {
	Convey("Given a running service with an active website", t, func() {
		events := store.NewMemoryStore()
		router := httpserver.NewRouter(httpserver.Deps{
			Websites: registry.NewMemory(models.Website{ID: "site_1", APIKey: "ak_test", IsActive: true}),
			Events:   events,
		})
		var requests atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			router.ServeHTTP(w, r)
		}))
		defer srv.Close()

		page := trackertest.NewPage("http://localhost:3000/docs/start",
			trackertest.WithTitle("Getting started"),
			trackertest.WithUserAgent(androidChromeUA))
		client := tracker.New(page, tracker.WithHTTPClient(srv.Client()), tracker.WithLogger(logger.Nop()))
		defer client.Close()

		Convey("When the client initializes with the registered key and tracks a page view", func() {
			So(client.Init("ak_test", tracker.WithEndpoint(srv.URL), tracker.WithPageViews(false), tracker.WithPerformance(false)), ShouldBeNil)
			client.TrackPageView("")
			client.Wait()

			Convey("Then one enriched pageview is stored for the website", func() {
				stored := events.Events()
				So(stored, ShouldHaveLength, 1)
				ev := stored[0]
				So(ev.WebsiteID, ShouldEqual, "site_1")
				So(ev.EventType, ShouldEqual, "pageview")
				So(ev.PageURL, ShouldEqual, "http://localhost:3000/docs/start")
				So(ev.SessionID, ShouldEqual, client.SessionID())
				So(ev.Metadata["title"], ShouldEqual, "Getting started")
				So(ev.Metadata["path"], ShouldEqual, "/docs/start")
				So(ev.Metadata["url"], ShouldEqual, "http://localhost:3000/docs/start")
				So(ev.DeviceType, ShouldEqual, "mobile")
				So(ev.Browser, ShouldEqual, "chrome")
				So(ev.OS, ShouldEqual, "android")
				So(ev.IPAddress, ShouldEqual, "127.0.0.1")
			})
		})

		Convey("When interactions follow a default init", func() {
			So(client.Init("ak_test", tracker.WithEndpoint(srv.URL)), ShouldBeNil)
			page.Click(tracker.Element{TagName: "BUTTON", Text: "Sign up"})
			page.Submit(tracker.Form{ID: "signup", Fields: []tracker.FormField{{Name: "email", Value: "a@b.c"}, {Name: "password", Value: "x"}}})
			page.Unload()
			client.Wait()

			Convey("Then every event reaches the store", func() {
				types := map[string]int{}
				for _, ev := range events.Events() {
					types[ev.EventType]++
				}
				So(types["pageview"], ShouldEqual, 1)
				So(types["click"], ShouldEqual, 1)
				So(types["form_submission"], ShouldEqual, 1)
				So(types["page_exit"], ShouldEqual, 1)
			})
		})

		Convey("When the client initializes with an unknown key", func() {
			So(client.Init("ak_unknown", tracker.WithEndpoint(srv.URL), tracker.WithPerformance(false)), ShouldBeNil)
			client.Track("signup", nil)
			client.Wait()

			Convey("Then the server refuses silently and stores nothing", func() {
				So(requests.Load(), ShouldEqual, int64(2))
				So(events.Len(), ShouldEqual, 0)
			})
		})

		Convey("When the client initializes with an empty key", func() {
			So(client.Init("", tracker.WithEndpoint(srv.URL)), ShouldEqual, tracker.ErrMissingAPIKey)
			client.Track("pageview", nil)
			client.Wait()

			Convey("Then no request is ever made", func() {
				So(requests.Load(), ShouldEqual, int64(0))
				So(events.Len(), ShouldEqual, 0)
			})
		})
	})
}
