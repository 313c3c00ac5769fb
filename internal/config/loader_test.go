package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/PratikDhanave/web-analytics-service/internal/config"
)

var configEnvVars = []string{
	"ANALYTICS_CONFIG", "ANALYTICS_ADDR", "ANALYTICS_STORE", "ANALYTICS_DB_URL",
	"ANALYTICS_WEBSITES", "ANALYTICS_WEBSITES_FILE", "ANALYTICS_LOG_LEVEL",
	"ANALYTICS_LOG_FORMAT", "ANALYTICS_LOG_MAX_SIZE_MB",
}

func clearConfigEnv(t *testing.T) {
	for _, k := range configEnvVars {
		t.Setenv(k, "")
		_ = os.Unsetenv(k)
	}
}

func TestLoad(t *testing.T) {
	Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnv(t)

		Convey("When loading with defaults only", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the in-memory defaults apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":8080")
				So(cfg.Store, ShouldEqual, config.StoreMemory)
				So(cfg.LogLevel, ShouldEqual, "info")
				So(cfg.LogMaxSizeMB, ShouldEqual, 100)
				So(cfg.LogMaxBackups, ShouldEqual, 3)

				sites, err := cfg.SeedWebsites()
				So(err, ShouldBeNil)
				So(sites, ShouldHaveLength, 1)
				So(sites[0].APIKey, ShouldEqual, "ak_test")
				So(sites[0].IsActive, ShouldBeTrue)
			})
		})

		Convey("When environment variables are set", func() {
			t.Setenv("ANALYTICS_ADDR", ":9090")
			t.Setenv("ANALYTICS_LOG_MAX_SIZE_MB", "5")
			t.Setenv("ANALYTICS_WEBSITES", "shop:ak_shop, blog:ak_blog")
			cfg, err := config.Load(ctx)

			Convey("Then they override the defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.LogMaxSizeMB, ShouldEqual, 5)

				sites, err := cfg.SeedWebsites()
				So(err, ShouldBeNil)
				So(sites, ShouldHaveLength, 2)
				So(sites[1].ID, ShouldEqual, "blog")
				So(sites[1].APIKey, ShouldEqual, "ak_blog")
			})
		})

		Convey("When a YAML file is named by ANALYTICS_CONFIG", func() {
			path := filepath.Join(t.TempDir(), "analytics.yaml")
			So(os.WriteFile(path, []byte("addr: \":7070\"\nstore: postgres\ndb_url: postgres://x@localhost/db\n"), 0o600), ShouldBeNil)
			t.Setenv("ANALYTICS_CONFIG", path)
			t.Setenv("ANALYTICS_ADDR", ":6060")
			cfg, err := config.Load(ctx)

			Convey("Then file values apply and env still wins", func() {
				So(err, ShouldBeNil)
				So(cfg.Store, ShouldEqual, config.StorePostgres)
				So(cfg.DBURL, ShouldEqual, "postgres://x@localhost/db")
				So(cfg.Addr, ShouldEqual, ":6060")

				sites, err := cfg.SeedWebsites()
				So(err, ShouldBeNil)
				So(sites, ShouldBeEmpty)
			})
		})

		Convey("When the file is missing", func() {
			t.Setenv("ANALYTICS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			_, err := config.Load(ctx)
			So(err, ShouldNotBeNil)
		})

		Convey("When postgres is selected without a db url", func() {
			t.Setenv("ANALYTICS_STORE", "postgres")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the store is unknown", func() {
			t.Setenv("ANALYTICS_STORE", "redis")
			_, err := config.Load(ctx)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}

func TestParseWebsites(t *testing.T) {
	Convey("ParseWebsites", t, func() {
		sites, err := config.ParseWebsites("")
		So(err, ShouldBeNil)
		So(sites, ShouldBeEmpty)

		sites, err = config.ParseWebsites("a:ak_1,,b:ak_2")
		So(err, ShouldBeNil)
		So(sites, ShouldHaveLength, 2)

		for _, bad := range []string{"a", "a:", ":ak_1", "a:ak_1,b:ak_1"} {
			_, err = config.ParseWebsites(bad)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		}
	})
}
