package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/courtstats/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewResponse(t *testing.T) {
	Convey("Given report rows", t, func() {
		Convey("When wrapping a nil slice", func() {
			resp := types.NewResponse[types.SurfaceWinRate](nil, 7)

			Convey("Then stats is an empty array and count is zero", func() {
				So(resp.Stats, ShouldNotBeNil)
				So(resp.Stats, ShouldBeEmpty)
				So(resp.Count, ShouldEqual, 0)
				So(resp.ExecutionTimeMs, ShouldEqual, 7)

				raw, err := json.Marshal(resp)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, `{"stats":[],"executionTimeMs":7,"count":0}`)
			})
		})

		Convey("When wrapping populated rows", func() {
			rows := []types.YearSurfaceCount{
				{Year: 2023, Surface: "Grass", MatchCount: 3, AverageDuration: 101},
				{Year: 2024, Surface: "Grass", MatchCount: 1, AverageDuration: 88},
			}
			resp := types.NewResponse(rows, 12)

			Convey("Then count matches the row count", func() {
				So(resp.Count, ShouldEqual, 2)
				So(resp.Stats[0].Year, ShouldEqual, 2023)
			})
		})
	})
}

func TestRowJSONShape(t *testing.T) {
	Convey("Given a win percentage row", t, func() {
		row := types.SurfaceWinRate{PlayerID: "p1", Surface: "Clay", TotalMatches: 1, Wins: 1, WinPercentage: 100}

		Convey("Then it uses camelCase keys", func() {
			raw, err := json.Marshal(row)
			So(err, ShouldBeNil)
			var m map[string]any
			So(json.Unmarshal(raw, &m), ShouldBeNil)
			So(m, ShouldContainKey, "playerId")
			So(m, ShouldContainKey, "winPercentage")
			So(m, ShouldContainKey, "totalMatches")
		})
	})

	Convey("Given an open-ended duration bucket", t, func() {
		raw, err := json.Marshal(types.DurationBucket{Lower: 240, Count: 4})

		Convey("Then the upper bound is omitted", func() {
			So(err, ShouldBeNil)
			So(string(raw), ShouldEqual, `{"lower":240,"count":4}`)
		})
	})
}
