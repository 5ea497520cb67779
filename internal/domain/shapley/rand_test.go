package shapley_test

import (
	"testing"

	shapley "github.com/okian/fairshare/internal/domain/shapley"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRandAllocation(t *testing.T) {
	contributors := []string{"a", "b", "c", "d"}

	Convey("Given a fixed seed", t, func() {
		first := shapley.RandAllocation(contributors, shapley.WithSeed(7))
		second := shapley.RandAllocation(contributors, shapley.WithSeed(7))

		Convey("Then the fixture is reproducible", func() {
			So(second, ShouldResemble, first)
		})

		Convey("And every contributor gets a value in [0,1)", func() {
			So(len(first), ShouldEqual, len(contributors))
			for _, id := range contributors {
				So(first[id], ShouldBeGreaterThanOrEqualTo, 0)
				So(first[id], ShouldBeLessThan, 1)
			}
		})
	})

	Convey("Given different seeds", t, func() {
		first := shapley.RandAllocation(contributors, shapley.WithSeed(1))
		second := shapley.RandAllocation(contributors, shapley.WithSeed(2))

		Convey("Then the fixtures differ", func() {
			So(second, ShouldNotResemble, first)
		})
	})

	Convey("Given the sum-to-one option", t, func() {
		alloc := shapley.RandAllocation(contributors, shapley.WithSumToOne())

		Convey("Then values are rescaled to a unit total", func() {
			So(alloc.Sum(), ShouldAlmostEqual, 1, tolerance)
		})
	})

	Convey("Given no contributors", t, func() {
		So(len(shapley.RandAllocation(nil)), ShouldEqual, 0)
	})
}
