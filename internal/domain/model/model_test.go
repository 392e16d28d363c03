package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMatchValidate(t *testing.T) {
	Convey("Given a match between two players", t, func() {
		m := model.Match{ID: "m1", TournamentID: "t1", Player1ID: "p1", Player2ID: "p2", WinnerID: "p1"}

		Convey("When the winner is player1", func() {
			Convey("Then it is valid", func() {
				So(m.Validate(), ShouldBeNil)
			})
		})

		Convey("When both roles reference the same player", func() {
			m.Player2ID = "p1"

			Convey("Then ErrSamePlayers is reported", func() {
				So(errors.Is(m.Validate(), model.ErrSamePlayers), ShouldBeTrue)
			})
		})

		Convey("When the winner did not play", func() {
			m.WinnerID = "p3"

			Convey("Then ErrWinnerNotParticipant is reported", func() {
				So(errors.Is(m.Validate(), model.ErrWinnerNotParticipant), ShouldBeTrue)
			})
		})
	})
}

func TestMatchRoleProjections(t *testing.T) {
	Convey("Given a match with per-role stats", t, func() {
		date := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
		m := model.Match{
			ID: "m1", Player1ID: "p1", Player2ID: "p2", WinnerID: "p2",
			Date: date, Duration: 95,
			Stats: model.MatchStats{
				Player1: model.RoleStats{Aces: 4, DoubleFaults: 2, FirstServePercentage: 61.5, BreakPointsConverted: 1},
				Player2: model.RoleStats{Aces: 9, DoubleFaults: 1, FirstServePercentage: 70, BreakPointsConverted: 3},
			},
		}

		Convey("When projecting both roles", func() {
			p1 := m.Player1(model.Clay)
			p2 := m.Player2(model.Clay)

			Convey("Then each record carries its own role", func() {
				So(p1.PlayerID, ShouldEqual, "p1")
				So(p1.IsWinner, ShouldBeFalse)
				So(p1.Stats.Aces, ShouldEqual, 4)
				So(p2.PlayerID, ShouldEqual, "p2")
				So(p2.IsWinner, ShouldBeTrue)
				So(p2.Stats.Aces, ShouldEqual, 9)
			})

			Convey("And both share the match-level fields", func() {
				So(p1.Surface, ShouldEqual, model.Clay)
				So(p2.Duration, ShouldEqual, 95)
				So(p2.Date, ShouldEqual, date)
				So(p1.MatchID, ShouldEqual, p2.MatchID)
			})
		})
	})
}

func TestParseSurface(t *testing.T) {
	Convey("Given surface names", t, func() {
		Convey("Then every known surface parses", func() {
			for _, s := range model.Surfaces() {
				got, err := model.ParseSurface(string(s))
				So(err, ShouldBeNil)
				So(got, ShouldEqual, s)
			}
		})

		Convey("Then unknown or differently-cased names are rejected", func() {
			_, err := model.ParseSurface("clay")
			So(errors.Is(err, model.ErrUnknownSurface), ShouldBeTrue)
			_, err = model.ParseSurface("Sand")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given a tournament roster", t, func() {
		tour := model.Tournament{ID: "t1", Players: []string{"a", "b", "c"}}
		So(tour.PlayerCount(), ShouldEqual, 3)
	})
}
