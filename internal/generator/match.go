package generator

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/pipeline"
)

// Fixture is what a worker needs to know about a tournament to schedule
// a match in it.
type Fixture struct {
	GrandSlam bool
	Start     time.Time
	Days      int
}

// Per-role stat bounds, inclusive.
const (
	maxAces                 = 30
	maxDoubleFaults         = 15
	maxBreakPointsConverted = 10
	minFirstServe           = 40.0
	maxFirstServe           = 80.0
	minSetMinutes           = 30
	maxSetMinutes           = 65
)

// newMatch synthesizes one match between two distinct players of pool.
func newMatch(src *source, tournamentID string, fx Fixture, pool []string) model.Match {
	i := src.IntN(len(pool))
	j := src.IntN(len(pool) - 1)
	if j >= i {
		j++
	}
	p1, p2 := pool[i], pool[j]
	p1Wins := src.IntN(2) == 0
	winner := p2
	if p1Wins {
		winner = p1
	}

	bestOf := 3
	if fx.GrandSlam {
		bestOf = 5
	}
	score, sets := scoreLine(src, bestOf, p1Wins)

	return model.Match{
		ID:           src.id(),
		TournamentID: tournamentID,
		Player1ID:    p1,
		Player2ID:    p2,
		WinnerID:     winner,
		Round:        pick(src, model.Rounds()),
		Score:        score,
		Date:         fx.Start.AddDate(0, 0, src.IntN(fx.Days+1)),
		Duration:     sets * src.between(minSetMinutes, maxSetMinutes),
		Stats: model.MatchStats{
			Player1: roleStats(src),
			Player2: roleStats(src),
		},
	}
}

// scoreLine returns a best-of-n score from player1's perspective and the
// number of sets played. The match winner takes the deciding set.
func scoreLine(src *source, bestOf int, p1Wins bool) (string, int) {
	need := bestOf/2 + 1
	lost := src.IntN(need)
	sets := need + lost

	// Pick which of the first sets-1 sets the eventual loser took.
	loserSets := make([]bool, sets)
	for _, k := range src.Perm(sets - 1)[:lost] {
		loserSets[k] = true
	}

	parts := make([]string, sets)
	for k := range sets {
		w, l := setScore(src)
		p1TakesSet := p1Wins != loserSets[k]
		if p1TakesSet {
			parts[k] = strconv.Itoa(w) + "-" + strconv.Itoa(l)
		} else {
			parts[k] = strconv.Itoa(l) + "-" + strconv.Itoa(w)
		}
	}
	return strings.Join(parts, " "), sets
}

// setScore returns the games of the set winner and loser.
func setScore(src *source) (int, int) {
	switch r := src.IntN(10); {
	case r < 7:
		return 6, src.IntN(5)
	case r < 9:
		return 7, 5
	default:
		return 7, 6
	}
}

func roleStats(src *source) model.RoleStats {
	return model.RoleStats{
		Aces:                 src.IntN(maxAces + 1),
		DoubleFaults:         src.IntN(maxDoubleFaults + 1),
		FirstServePercentage: pipeline.Round1(minFirstServe + src.Float64()*(maxFirstServe-minFirstServe)),
		BreakPointsConverted: src.IntN(maxBreakPointsConverted + 1),
	}
}
