package pipeline_test

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/okian/courtstats/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

type pair struct {
	a, b   string
	winner string
}

type side struct {
	id  string
	won bool
}

func scanOf[T any](items []T, failAfter int) pipeline.ScanFunc[T] {
	return func(_ context.Context, fn func(T) error) error {
		for i, v := range items {
			if failAfter >= 0 && i == failAfter {
				return errors.New("store gone")
			}
			if err := fn(v); err != nil {
				return err
			}
		}
		return nil
	}
}

func TestFromScan(t *testing.T) {
	ctx := context.Background()

	Convey("Given a callback scan", t, func() {
		Convey("When the scan completes", func() {
			src := pipeline.FromScan(ctx, scanOf([]int{1, 2, 3}, -1))
			got := slices.Collect(src.Seq())

			Convey("Then every record is yielded and no error is kept", func() {
				So(got, ShouldResemble, []int{1, 2, 3})
				So(src.Err(), ShouldBeNil)
			})
		})

		Convey("When the scan fails midway", func() {
			src := pipeline.FromScan(ctx, scanOf([]int{1, 2, 3}, 2))
			got := slices.Collect(src.Seq())

			Convey("Then the records before the failure are yielded and Err reports it", func() {
				So(got, ShouldResemble, []int{1, 2})
				So(src.Err(), ShouldNotBeNil)
			})
		})

		Convey("When the consumer stops early", func() {
			src := pipeline.FromScan(ctx, scanOf([]int{1, 2, 3}, -1))
			var got []int
			for v := range src.Seq() {
				got = append(got, v)
				if v == 2 {
					break
				}
			}

			Convey("Then stopping is not reported as an error", func() {
				So(got, ShouldResemble, []int{1, 2})
				So(src.Err(), ShouldBeNil)
			})
		})
	})
}

func TestJoinAndRoleFlatten(t *testing.T) {
	Convey("Given two matches and a lookup on one of them", t, func() {
		matches := []pair{{a: "p1", b: "p2", winner: "p1"}, {a: "p3", b: "p1", winner: "p1"}}
		surfaces := map[string]string{"p1": "Clay"}

		Convey("When joining on player a", func() {
			joined := slices.Collect(pipeline.Join(slices.Values(matches), surfaces,
				func(p pair) string { return p.a },
				func(p pair, s string) string { return p.b + "@" + s }))

			Convey("Then unmatched records are dropped", func() {
				So(joined, ShouldResemble, []string{"p2@Clay"})
			})
		})

		Convey("When flattening both roles", func() {
			sides := slices.Collect(pipeline.RoleFlatten(slices.Values(matches),
				func(p pair) side { return side{id: p.a, won: p.a == p.winner} },
				func(p pair) side { return side{id: p.b, won: p.b == p.winner} }))

			Convey("Then every match contributes one record per role", func() {
				So(len(sides), ShouldEqual, 4)
				So(sides[0], ShouldResemble, side{id: "p1", won: true})
				So(sides[1], ShouldResemble, side{id: "p2", won: false})
				So(sides[3], ShouldResemble, side{id: "p1", won: true})
			})
		})
	})
}

func TestGroupAggregate(t *testing.T) {
	Convey("Given words to group by first letter", t, func() {
		words := []string{"bob", "alice", "bill", "anna", "carl"}

		groups := pipeline.GroupAggregate(slices.Values(words),
			func(w string) byte { return w[0] },
			func(n int, _ string) int { return n + 1 })

		Convey("Then groups keep first-seen order with folded counts", func() {
			So(len(groups), ShouldEqual, 3)
			So(groups[0].Key, ShouldEqual, byte('b'))
			So(groups[0].Acc, ShouldEqual, 2)
			So(groups[1].Key, ShouldEqual, byte('a'))
			So(groups[1].Acc, ShouldEqual, 2)
			So(groups[2].Acc, ShouldEqual, 1)
		})
	})
}

func TestFilterSortLimit(t *testing.T) {
	Convey("Given a slice of words", t, func() {
		words := []string{"pear", "fig", "apple", "kiwi", "plum"}

		Convey("When filtering, mapping, sorting and limiting", func() {
			long := slices.Collect(pipeline.Map(
				pipeline.Filter(slices.Values(words), func(w string) bool { return len(w) == 4 }),
				strings.ToUpper))
			pipeline.SortBy(long, func(a, b string) int { return cmp.Compare(a, b) })

			Convey("Then the stages compose", func() {
				So(long, ShouldResemble, []string{"KIWI", "PEAR", "PLUM"})
				So(pipeline.Limit(long, 2), ShouldResemble, []string{"KIWI", "PEAR"})
				So(pipeline.Limit(long, 10), ShouldResemble, long)
			})
		})

		Convey("When sorting on a key with ties", func() {
			sorted := pipeline.SortBy(slices.Clone(words), func(a, b string) int { return cmp.Compare(len(a), len(b)) })

			Convey("Then equal keys keep their input order", func() {
				So(sorted, ShouldResemble, []string{"fig", "pear", "kiwi", "plum", "apple"})
			})
		})

		Convey("When the limit is zero or negative", func() {
			Convey("Then the result is empty but not nil", func() {
				So(pipeline.Limit(words, 0), ShouldNotBeNil)
				So(pipeline.Limit(words, 0), ShouldBeEmpty)
				So(pipeline.Limit(words, -3), ShouldBeEmpty)
			})
		})
	})
}
