package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	service "github.com/okian/fairshare/internal/app"
	"github.com/okian/fairshare/internal/domain/model"
	"github.com/okian/fairshare/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Size(), ShouldEqual, 0)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithDedupeSize(50),
			service.WithMaxContributors(8),
			service.WithNormalize(false),
			service.WithStrictValues(false),
		)

		Convey("Then it should construct without starting", func() {
			So(svc, ShouldNotBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["workerCount"], ShouldEqual, 2)
			So(stats["queueSize"], ShouldEqual, 100)
			So(stats["maxContributors"], ShouldEqual, 8)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(100))

		Convey("When starting and stopping", func() {
			So(svc.Start(ctx), ShouldBeNil)

			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)

			// Starting again is a no-op
			So(svc.Start(ctx), ShouldBeNil)

			svc.Stop()
			So(svc.GetStats()["started"], ShouldBeFalse)

			// Stopping again is a no-op
			svc.Stop()
		})

		Convey("When recomputing before start", func() {
			So(errors.Is(svc.Recompute(ctx), service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func waitForObservations(svc *service.Service, want int64) bool {
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		stats := svc.GetStats()
		if n, ok := stats["observations"].(int64); ok && n >= want {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func TestService_SubmitAndDedupe(t *testing.T) {
	Convey("Given a running service", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithWorkerCount(2), service.WithQueueSize(100))
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When submitting the same observation twice", func() {
			obs := model.Observation{ObservationID: "obs-1", Members: []string{"A", "B"}}

			So(svc.Submit(ctx, obs), ShouldBeTrue)
			So(svc.Submit(ctx, obs), ShouldBeTrue) // duplicate, dropped silently

			Convey("Then only one observation reaches the model", func() {
				So(waitForObservations(svc, 1), ShouldBeTrue)

				stats := svc.GetStats()
				So(stats["observations"], ShouldEqual, 1)
				So(svc.Size(), ShouldEqual, 1)
			})
		})

		Convey("When submitting observations without an ID", func() {
			obs := model.Observation{Members: []string{"A"}, TS: time.Now()}
			So(svc.Submit(ctx, obs), ShouldBeTrue)

			Convey("Then a content-derived ID dedupes redelivery", func() {
				So(svc.Submit(ctx, obs), ShouldBeTrue)
				So(waitForObservations(svc, 1), ShouldBeTrue)
				So(svc.GetStats()["observations"], ShouldEqual, 1)
			})
		})
	})
}

func TestService_RecomputeEndToEnd(t *testing.T) {
	Convey("Given a running service fed observations AB, AB, A", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(2),
			service.WithQueueSize(100),
			service.WithMaxContributors(10),
			service.WithNormalize(false),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		So(svc.Submit(ctx, model.Observation{ObservationID: "o1", Members: []string{"A", "B"}}), ShouldBeTrue)
		So(svc.Submit(ctx, model.Observation{ObservationID: "o2", Members: []string{"B", "A"}}), ShouldBeTrue)
		So(svc.Submit(ctx, model.Observation{ObservationID: "o3", Members: []string{"A"}}), ShouldBeTrue)
		So(waitForObservations(svc, 3), ShouldBeTrue)

		Convey("When recomputing", func() {
			So(svc.Recompute(ctx), ShouldBeNil)

			Convey("Then A outranks B with the exact allocation", func() {
				// v(A)=1, v(AB)=2 gives phi_A=1.5, phi_B=0.5.
				entries, err := svc.TopN(ctx, 10)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)

				So(entries[0].Contributor, ShouldEqual, "A")
				So(entries[0].Rank, ShouldEqual, 1)
				So(entries[0].Value, ShouldAlmostEqual, 1.5, 1e-9)
				So(entries[0].Fraction, ShouldAlmostEqual, 0.75, 1e-9)

				So(entries[1].Contributor, ShouldEqual, "B")
				So(entries[1].Value, ShouldAlmostEqual, 0.5, 1e-9)
			})

			Convey("And Rank resolves individual contributors", func() {
				entry, err := svc.Rank(ctx, "B")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)

				_, err = svc.Rank(ctx, "Z")
				So(err, ShouldNotBeNil)
			})

			Convey("And the universe covers both contributors", func() {
				So(svc.Universe(ctx).Members(), ShouldResemble, []string{"A", "B"})
			})
		})

		Convey("When recomputing on an empty model", func() {
			empty := service.New(service.WithWorkerCount(1), service.WithQueueSize(10))
			So(empty.Start(ctx), ShouldBeNil)
			defer empty.Stop()

			Convey("Then it is a no-op", func() {
				So(empty.Recompute(ctx), ShouldBeNil)
			})
		})
	})
}

func TestService_UniverseLimit(t *testing.T) {
	Convey("Given a service capped at 2 contributors", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(100),
			service.WithMaxContributors(2),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		So(svc.Submit(ctx, model.Observation{ObservationID: "o1", Members: []string{"A", "B", "C"}}), ShouldBeTrue)
		So(waitForObservations(svc, 1), ShouldBeTrue)

		Convey("When the universe outgrows the cap", func() {
			err := svc.Recompute(ctx)

			Convey("Then recompute is refused", func() {
				So(errors.Is(err, service.ErrTooManyContributors), ShouldBeTrue)
			})
		})
	})
}

func TestService_PeriodicRecompute(t *testing.T) {
	Convey("Given a service with a recompute ticker", t, func() {
		ctx := context.Background()
		svc := service.New(
			service.WithWorkerCount(1),
			service.WithQueueSize(100),
			service.WithRecomputeInterval(20*time.Millisecond),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		So(svc.Submit(ctx, model.Observation{ObservationID: "o1", Members: []string{"A"}}), ShouldBeTrue)
		So(waitForObservations(svc, 1), ShouldBeTrue)

		Convey("Then the allocation is published without an explicit call", func() {
			deadline := time.Now().Add(5 * time.Second)
			published := false
			for time.Now().Before(deadline) {
				entries, err := svc.TopN(ctx, 1)
				if err == nil && len(entries) == 1 {
					published = true
					break
				}
				time.Sleep(10 * time.Millisecond)
			}
			So(published, ShouldBeTrue)
		})
	})
}
