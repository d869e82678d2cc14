package service_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	service "github.com/okian/agegrader/internal/app"
	"github.com/okian/agegrader/internal/domain/agegrade"
	"github.com/okian/agegrader/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const missingAgeTable = "../adapters/reftable/testdata/missing_age.json"

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should not be started and have no engine", func() {
			So(svc, ShouldNotBeNil)
			stats := svc.GetStats()
			So(stats["started"], ShouldEqual, false)
			So(stats["table"], ShouldEqual, "bundled")

			_, err := svc.Grade(context.Background(), service.Query{Age: 35, Gender: "M", DistanceKM: 5, Seconds: 1000})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then the bundled table should be loaded", func() {
				So(err, ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldEqual, true)
				So(stats["entries"], ShouldBeGreaterThan, 0)
				So(stats["ageRecords"], ShouldBeGreaterThan, 0)
				So(stats["loads"], ShouldEqual, int64(1))
			})

			Convey("And starting twice should be a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(svc.GetStats()["loads"], ShouldEqual, int64(1))
			})
		})

		Convey("When stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped but still answer queries", func() {
				So(svc.GetStats()["started"], ShouldEqual, false)
				g, err := svc.Grade(ctx, service.Query{Age: 15, Gender: "M", DistanceKM: 5, Seconds: 1234})
				So(err, ShouldBeNil)
				So(g.Available, ShouldBeTrue)
			})

			Convey("And stopping twice should not panic", func() {
				So(func() { svc.Stop() }, ShouldNotPanic)
			})
		})

		Convey("When the table path does not exist", func() {
			bad := service.New(service.WithTablePath("/non/existent/table.json"))
			err := bad.Start(ctx)

			Convey("Then Start should fail", func() {
				So(err, ShouldNotBeNil)
				So(bad.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}

func TestService_Grade(t *testing.T) {
	Convey("Given a started service on the bundled table", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When grading a 15 year old male 5k in 1234 seconds", func() {
			g, err := svc.Grade(ctx, service.Query{Age: 15, Gender: "M", DistanceKM: 5.0, Seconds: 1234})

			Convey("Then the performance factor should round to 0.654", func() {
				So(err, ShouldBeNil)
				So(g.Available, ShouldBeTrue)
				So(round3(*g.PerformanceFactor), ShouldEqual, 0.654)
				So(g.Gender, ShouldEqual, "M")
			})
		})

		Convey("When the gender is lowercase", func() {
			g, err := svc.Grade(ctx, service.Query{Age: 15, Gender: "m", DistanceKM: 5.0, Seconds: 1234})
			So(err, ShouldBeNil)
			So(round3(*g.PerformanceFactor), ShouldEqual, 0.654)
		})

		Convey("When the query is invalid", func() {
			cases := []service.Query{
				{Age: 0, Gender: "M", DistanceKM: 5, Seconds: 1234},
				{Age: 121, Gender: "M", DistanceKM: 5, Seconds: 1234},
				{Age: 30, Gender: "X", DistanceKM: 5, Seconds: 1234},
				{Age: 30, Gender: "M", DistanceKM: 0, Seconds: 1234},
				{Age: 30, Gender: "M", DistanceKM: 5, Seconds: 0},
				{Age: 15, Gender: "M", DistanceKM: 5, Seconds: math.NaN()},
				{Age: 15, Gender: "M", DistanceKM: 5, Seconds: math.Inf(1)},
				{Age: 15, Gender: "M", DistanceKM: math.Inf(1), Seconds: 1234},
				{Age: 15, Gender: "M", DistanceKM: math.NaN(), Seconds: 1234},
			}

			Convey("Then every case should return ErrInvalidQuery", func() {
				for _, q := range cases {
					_, err := svc.Grade(ctx, q)
					So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
				}
			})
		})

		Convey("When a custom max age is configured", func() {
			limited := service.New(service.WithMaxAge(80))
			So(limited.Start(ctx), ShouldBeNil)
			defer limited.Stop()

			_, err := limited.Grade(ctx, service.Query{Age: 90, Gender: "F", DistanceKM: 10, Seconds: 4000})
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})

	Convey("Given a service on a table missing age 15", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithTablePath(missingAgeTable))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When grading age 15 at 5k", func() {
			g, err := svc.Grade(ctx, service.Query{Age: 15, Gender: "M", DistanceKM: 5.0, Seconds: 1234})

			Convey("Then the result should be unavailable without an error", func() {
				So(err, ShouldBeNil)
				So(g.Available, ShouldBeFalse)
				So(g.PerformanceFactor, ShouldBeNil)
				So(g.FinishTime, ShouldBeNil)
				So(g.SecondsPerMile, ShouldBeNil)
			})
		})

		Convey("When the gender has no entries at all", func() {
			svcMaleOnly := service.New(service.WithTable(agegrade.NewTable(nil)))
			So(svcMaleOnly.Start(ctx), ShouldBeNil)
			defer svcMaleOnly.Stop()

			_, err := svcMaleOnly.Grade(ctx, service.Query{Age: 30, Gender: "F", DistanceKM: 5, Seconds: 1000})
			So(errors.Is(err, agegrade.ErrNotFound), ShouldBeTrue)
		})
	})
}

func TestService_RecordAndDistances(t *testing.T) {
	Convey("Given a service on the bundled table", t, func() {
		ctx := context.Background()
		svc := service.New()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When looking up 7.5km for men", func() {
			b, err := svc.Record(ctx, service.RecordQuery{Gender: "M", DistanceKM: 7.5})

			Convey("Then it should bracket between tabulated distances", func() {
				So(err, ShouldBeNil)
				So(b.LowerKM, ShouldBeLessThanOrEqualTo, 7.5)
				So(b.HigherKM, ShouldBeGreaterThanOrEqualTo, 7.5)
				So(b.Ratio, ShouldBeBetween, 0, 1)
				So(b.AgeRecord, ShouldBeNil)
			})
		})

		Convey("When an age is included", func() {
			b, err := svc.Record(ctx, service.RecordQuery{Age: 15, Gender: "M", DistanceKM: 5})
			So(err, ShouldBeNil)
			So(b.AgeRecord, ShouldNotBeNil)
			So(*b.AgeRecord, ShouldEqual, 807)
		})

		Convey("When listing distances", func() {
			ds, err := svc.Distances(ctx, "female")
			So(err, ShouldBeNil)
			So(len(ds), ShouldBeGreaterThan, 1)
			So(ds[0], ShouldEqual, 5.0)

			_, err = svc.Distances(ctx, "?")
			So(errors.Is(err, service.ErrInvalidQuery), ShouldBeTrue)
		})
	})
}

func TestService_Reload(t *testing.T) {
	Convey("Given a service reading a table file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "table.json")
		So(os.WriteFile(path, []byte(tableJSON(800)), 0o600), ShouldBeNil)

		svc := service.New(service.WithTablePath(path))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the file becomes malformed and Reload is called", func() {
			So(os.WriteFile(path, []byte(`[{"gender": "M"`), 0o600), ShouldBeNil)
			err := svc.Reload(ctx)

			Convey("Then the error is returned and the previous table is kept", func() {
				So(err, ShouldNotBeNil)
				g, gerr := svc.Grade(ctx, service.Query{Age: 30, Gender: "M", DistanceKM: 5, Seconds: 1000})
				So(gerr, ShouldBeNil)
				So(*g.PerformanceFactor, ShouldAlmostEqual, 0.8, 1e-9)
			})
		})

		Convey("When the file changes and Reload is called", func() {
			So(os.WriteFile(path, []byte(tableJSON(900)), 0o600), ShouldBeNil)
			So(svc.Reload(ctx), ShouldBeNil)

			Convey("Then the new records should be used", func() {
				g, err := svc.Grade(ctx, service.Query{Age: 30, Gender: "M", DistanceKM: 5, Seconds: 1000})
				So(err, ShouldBeNil)
				So(*g.PerformanceFactor, ShouldAlmostEqual, 0.9, 1e-9)
				So(svc.GetStats()["loads"], ShouldEqual, int64(2))
			})
		})
	})
}

func TestService_Watch(t *testing.T) {
	Convey("Given a service watching its table file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "table.json")
		So(os.WriteFile(path, []byte(tableJSON(800)), 0o600), ShouldBeNil)

		svc := service.New(service.WithTablePath(path), service.WithTableWatch(true))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the file is rewritten", func() {
			// Give the watcher a moment to register before writing.
			time.Sleep(100 * time.Millisecond)
			So(os.WriteFile(path, []byte(tableJSON(950)), 0o600), ShouldBeNil)

			Convey("Then the service should pick up the new table", func() {
				deadline := time.Now().Add(5 * time.Second)
				var factor float64
				for time.Now().Before(deadline) {
					g, err := svc.Grade(ctx, service.Query{Age: 30, Gender: "M", DistanceKM: 5, Seconds: 1000})
					So(err, ShouldBeNil)
					factor = *g.PerformanceFactor
					if math.Abs(factor-0.95) < 1e-9 {
						break
					}
					time.Sleep(20 * time.Millisecond)
				}
				So(factor, ShouldAlmostEqual, 0.95, 1e-9)
			})
		})
	})
}

// tableJSON renders a one-entry table with age 30 at the given seconds.
func tableJSON(seconds int) string {
	return `[{"gender": "M", "distance": 5, "seconds": ` + strconv.Itoa(seconds) +
		`, "ages": [{"age": 30, "seconds": ` + strconv.Itoa(seconds) + `}]}]`
}
