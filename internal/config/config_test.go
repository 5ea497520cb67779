package config_test

import (
	"context"
	"runtime"
	"testing"

	"github.com/okian/fairshare/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.MetricsAddr, convey.ShouldEqual, "")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU()*2)
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 50_000)
			convey.So(cfg.MaxContributors, convey.ShouldEqual, 20)
			convey.So(cfg.Normalize, convey.ShouldBeTrue)
			convey.So(cfg.StrictValues, convey.ShouldBeFalse)
			convey.So(cfg.RecomputeIntervalMS, convey.ShouldEqual, 0)
			convey.So(cfg.TopN, convey.ShouldEqual, 10)
		})
	})
}
