// Package model contains the entity shapes shared by the generator, the
// store adapters and the aggregation engine.
package model

import (
	"fmt"
	"time"
)

// Collection names one of the three persisted entity kinds.
type Collection string

// Persisted collections.
const (
	Players     Collection = "players"
	Tournaments Collection = "tournaments"
	Matches     Collection = "matches"
)

// Collections lists every collection in dependency order (referenced first).
func Collections() []Collection {
	return []Collection{Players, Tournaments, Matches}
}

// Surface is the playing-ground category of a tournament.
type Surface string

// Known surfaces.
const (
	Hard   Surface = "Hard"
	Clay   Surface = "Clay"
	Grass  Surface = "Grass"
	Carpet Surface = "Carpet"
	Indoor Surface = "Indoor"
)

// Surfaces returns every surface in declaration order.
func Surfaces() []Surface {
	return []Surface{Hard, Clay, Grass, Carpet, Indoor}
}

// ParseSurface validates s against the known surfaces.
func ParseSurface(s string) (Surface, error) {
	for _, v := range Surfaces() {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSurface, s)
}

// Hand is a player's playing hand.
type Hand string

// Playing hands.
const (
	Left  Hand = "Left"
	Right Hand = "Right"
)

// Tournament categories, ordered by prestige.
const (
	CategoryGrandSlam  = "Grand Slam"
	CategoryMasters    = "Masters 1000"
	CategoryATP500     = "ATP 500"
	CategoryATP250     = "ATP 250"
	CategoryChallenger = "Challenger"
)

// Categories lists tournament categories.
func Categories() []string {
	return []string{CategoryGrandSlam, CategoryMasters, CategoryATP500, CategoryATP250, CategoryChallenger}
}

// Rounds lists match rounds from first round to final.
func Rounds() []string {
	return []string{"R128", "R64", "R32", "R16", "QF", "SF", "F"}
}

// Player is immutable once generated.
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Rank       int    `json:"rank"`
	Country    string `json:"country"`
	Age        int    `json:"age"`
	Hand       Hand   `json:"hand"`
	Height     int    `json:"height"`
	GrandSlams int    `json:"grandSlams"`
}

// Tournament carries a roster sampled independently of the matches played
// in it; PlayerCount is therefore not the number of distinct participants.
type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Category  string    `json:"category"`
	Surface   Surface   `json:"surface"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Prize     int64     `json:"prize"`
	Players   []string  `json:"players"`
}

// PlayerCount returns the roster size.
func (t Tournament) PlayerCount() int {
	return len(t.Players)
}

// RoleStats are the numeric stats of one side of a match.
type RoleStats struct {
	Aces                 int     `json:"aces"`
	DoubleFaults         int     `json:"doubleFaults"`
	FirstServePercentage float64 `json:"firstServePercentage"`
	BreakPointsConverted int     `json:"breakPointsConverted"`
}

// MatchStats keys RoleStats by role.
type MatchStats struct {
	Player1 RoleStats `json:"player1"`
	Player2 RoleStats `json:"player2"`
}

// Match is a single encounter between two players in a tournament.
type Match struct {
	ID           string     `json:"id"`
	TournamentID string     `json:"tournamentId"`
	Player1ID    string     `json:"player1Id"`
	Player2ID    string     `json:"player2Id"`
	WinnerID     string     `json:"winnerId"`
	Round        string     `json:"round"`
	Score        string     `json:"score"`
	Date         time.Time  `json:"date"`
	Duration     int        `json:"duration"`
	Stats        MatchStats `json:"stats"`
}

// Validate checks the two-participant invariants.
func (m Match) Validate() error {
	if m.Player1ID == m.Player2ID {
		return fmt.Errorf("match %s: %w", m.ID, ErrSamePlayers)
	}
	if m.WinnerID != m.Player1ID && m.WinnerID != m.Player2ID {
		return fmt.Errorf("match %s: %w", m.ID, ErrWinnerNotParticipant)
	}
	return nil
}

// Participant is the participant-centric view of one role in a match.
// Surface is empty when the match's tournament is unknown.
type Participant struct {
	MatchID  string
	PlayerID string
	IsWinner bool
	Surface  Surface
	Duration int
	Date     time.Time
	Stats    RoleStats
}

// Player1 projects the match onto its first role.
func (m Match) Player1(surface Surface) Participant {
	return Participant{
		MatchID:  m.ID,
		PlayerID: m.Player1ID,
		IsWinner: m.Player1ID == m.WinnerID,
		Surface:  surface,
		Duration: m.Duration,
		Date:     m.Date,
		Stats:    m.Stats.Player1,
	}
}

// Player2 projects the match onto its second role.
func (m Match) Player2(surface Surface) Participant {
	return Participant{
		MatchID:  m.ID,
		PlayerID: m.Player2ID,
		IsWinner: m.Player2ID == m.WinnerID,
		Surface:  surface,
		Duration: m.Duration,
		Date:     m.Date,
		Stats:    m.Stats.Player2,
	}
}

// Participants returns both role projections, player1 first.
func (m Match) Participants(surface Surface) [2]Participant {
	return [2]Participant{m.Player1(surface), m.Player2(surface)}
}
