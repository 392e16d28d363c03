package pipeline_test

import (
	"testing"

	"github.com/okian/courtstats/internal/domain/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAccumulator(t *testing.T) {
	Convey("Given an empty accumulator", t, func() {
		var acc pipeline.Accumulator

		Convey("Then its average is zero", func() {
			So(acc.Avg(), ShouldEqual, 0)
		})

		Convey("When adding values", func() {
			for _, v := range []float64{120, 60, 90} {
				acc.Add(v)
			}

			Convey("Then count, sum, min, max and avg track them", func() {
				So(acc.Count, ShouldEqual, 3)
				So(acc.Sum, ShouldEqual, 270)
				So(acc.Min, ShouldEqual, 60)
				So(acc.Max, ShouldEqual, 120)
				So(acc.Avg(), ShouldEqual, 90)
			})
		})
	})
}

func TestBucketize(t *testing.T) {
	Convey("Given duration boundaries", t, func() {
		bounds := []int{0, 90, 120, 180, 240}

		Convey("When values sit on and between the boundaries", func() {
			counts := pipeline.Bucketize([]int{0, 89, 90, 119, 120, 240, 500}, bounds)

			Convey("Then ranges are half-open and the last is open-ended", func() {
				So(counts, ShouldResemble, []int{2, 2, 1, 0, 2})
			})
		})

		Convey("When a value falls below the first boundary", func() {
			counts := pipeline.Bucketize([]int{-5}, bounds)

			Convey("Then it is not counted", func() {
				So(counts, ShouldResemble, []int{0, 0, 0, 0, 0})
			})
		})
	})
}

func TestRounding(t *testing.T) {
	Convey("Given values at rounding ties", t, func() {
		So(pipeline.Round1(66.66666), ShouldEqual, 66.7)
		So(pipeline.Round1(0.25), ShouldEqual, 0.3)
		So(pipeline.Round1(-0.25), ShouldEqual, -0.3)
		So(pipeline.RoundInt(89.5), ShouldEqual, 90)
		So(pipeline.RoundInt(-89.5), ShouldEqual, -90)
		So(pipeline.RoundInt(89.49), ShouldEqual, 89)
	})

	Convey("Given a zero denominator", t, func() {
		So(pipeline.Ratio(3, 0), ShouldEqual, 0)
		So(pipeline.Ratio(1, 4), ShouldEqual, 0.25)
	})
}
