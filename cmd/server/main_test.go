package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	app "github.com/okian/agegrader/internal/app"
	"github.com/okian/agegrader/internal/config"
	"github.com/okian/agegrader/pkg/logger"
	"github.com/okian/agegrader/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("AGEGRADER_ADDR", ":8080")
			_ = os.Setenv("AGEGRADER_MAX_AGE", "99")
			defer func() {
				_ = os.Unsetenv("AGEGRADER_ADDR")
				_ = os.Unsetenv("AGEGRADER_MAX_AGE")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxAge, convey.ShouldEqual, 99)
			})
		})

		convey.Convey("When building the HTTP handler", func() {
			ctx := context.Background()
			svc := app.New()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()
			h := newHandler(ctx, svc)

			convey.Convey("Then API and docs routes should be served with a request ID", func() {
				for _, target := range []string{"/grade?age=40&gender=F&distance=10&time=40:00", "/", "/openapi.yaml", "/api-docs", "/healthz", "/stats"} {
					req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
					w := httptest.NewRecorder()
					h.ServeHTTP(w, req)
					convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
					convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)
				}
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When updating system metrics", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)

			convey.Convey("Then the gauges should be gathered", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "agegrader_engine_system_goroutine_count" {
						found = f.GetMetric()[0].GetGauge().GetValue() > 0
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			convey.Convey("Then the background loops should return", func() {
				convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
				convey.So(func() { reloadOnHangup(ctx, app.New(), logger.Get()) }, convey.ShouldNotPanic)
			})
		})
	})
}
