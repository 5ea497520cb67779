package coalition_test

import (
	"errors"
	"fmt"
	"testing"

	coalition "github.com/okian/fairshare/internal/domain/coalition"
	. "github.com/smartystreets/goconvey/convey"
)

func collect(seq func(yield func(coalition.Coalition) bool)) []coalition.Coalition {
	var out []coalition.Coalition
	seq(func(c coalition.Coalition) bool {
		out = append(out, c)
		return true
	})
	return out
}

func TestSubsets(t *testing.T) {
	Convey("Given a coalition of size k", t, func() {
		for k := 0; k <= 10; k++ {
			Convey(fmt.Sprintf("When enumerating all subsets for k=%d", k), func() {
				members := make([]string, k)
				for i := range members {
					members[i] = fmt.Sprintf("m%02d", i)
				}
				c := coalition.New(members...)

				seq, err := coalition.Subsets(c)
				So(err, ShouldBeNil)
				subsets := collect(seq)

				Convey("Then there are exactly 2^k of them, all distinct", func() {
					So(len(subsets), ShouldEqual, 1<<k)

					seen := make(map[coalition.Key]struct{}, len(subsets))
					for _, s := range subsets {
						seen[s.Key()] = struct{}{}
						So(c.ContainsAll(s), ShouldBeTrue)
					}
					So(len(seen), ShouldEqual, len(subsets))
				})
			})
		}
	})

	Convey("Given two enumerations of the same coalition", t, func() {
		c := coalition.New("a", "b", "c", "d")
		first, err := coalition.Subsets(c)
		So(err, ShouldBeNil)
		second, err := coalition.Subsets(c)
		So(err, ShouldBeNil)

		Convey("Then the order is identical", func() {
			a, b := collect(first), collect(second)
			So(len(a), ShouldEqual, len(b))
			for i := range a {
				So(a[i].Key(), ShouldEqual, b[i].Key())
			}
		})
	})

	Convey("Given an early-terminating consumer", t, func() {
		seq, err := coalition.Subsets(coalition.New("a", "b", "c"))
		So(err, ShouldBeNil)

		count := 0
		seq(func(coalition.Coalition) bool {
			count++
			return count < 3
		})

		Convey("Then enumeration stops immediately", func() {
			So(count, ShouldEqual, 3)
		})
	})
}

func TestProperSubsets(t *testing.T) {
	Convey("Given a coalition {a,b,c}", t, func() {
		c := coalition.New("a", "b", "c")
		seq, err := coalition.ProperSubsets(c)
		So(err, ShouldBeNil)
		subsets := collect(seq)

		Convey("Then there are 2^3-1 subsets and none equals the coalition", func() {
			So(len(subsets), ShouldEqual, 7)
			for _, s := range subsets {
				So(s.Equal(c), ShouldBeFalse)
			}
		})
	})

	Convey("Given the empty coalition", t, func() {
		seq, err := coalition.ProperSubsets(coalition.New())
		So(err, ShouldBeNil)

		Convey("Then there are no proper subsets", func() {
			So(len(collect(seq)), ShouldEqual, 0)
		})
	})
}

func TestSupersets(t *testing.T) {
	Convey("Given a universe {a,b,c,d}", t, func() {
		universe := coalition.New("a", "b", "c", "d")

		Convey("When enumerating supersets of {a,b}", func() {
			seq, err := coalition.Supersets(coalition.New("a", "b"), universe)
			So(err, ShouldBeNil)
			supersets := collect(seq)

			Convey("Then there are 2^2 of them, all containing {a,b}", func() {
				So(len(supersets), ShouldEqual, 4)
				base := coalition.New("a", "b")
				for _, s := range supersets {
					So(s.ContainsAll(base), ShouldBeTrue)
					So(universe.ContainsAll(s), ShouldBeTrue)
				}
			})
		})

		Convey("When the coalition is not contained in the universe", func() {
			_, err := coalition.Supersets(coalition.New("a", "z"), universe)

			Convey("Then ErrNotSubset is returned", func() {
				So(errors.Is(err, coalition.ErrNotSubset), ShouldBeTrue)
			})
		})

		Convey("When enumerating supersets of the universe itself", func() {
			seq, err := coalition.Supersets(universe, universe)
			So(err, ShouldBeNil)
			supersets := collect(seq)

			Convey("Then only the universe is yielded", func() {
				So(len(supersets), ShouldEqual, 1)
				So(supersets[0].Equal(universe), ShouldBeTrue)
			})
		})
	})
}

func TestEnumerationBounds(t *testing.T) {
	Convey("Given a coalition larger than the enumerable bound", t, func() {
		members := make([]string, coalition.MaxEnumerable+1)
		for i := range members {
			members[i] = fmt.Sprintf("m%03d", i)
		}
		c := coalition.New(members...)

		Convey("Then enumeration is refused", func() {
			_, err := coalition.Subsets(c)
			So(errors.Is(err, coalition.ErrUniverseTooLarge), ShouldBeTrue)

			_, err = coalition.Supersets(coalition.New(), c)
			So(errors.Is(err, coalition.ErrUniverseTooLarge), ShouldBeTrue)
		})
	})
}
