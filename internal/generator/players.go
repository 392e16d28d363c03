package generator

import (
	"github.com/okian/courtstats/internal/domain/model"
)

var firstNames = []string{ //nolint:gochecknoglobals // static name pool
	"Rafael", "Novak", "Roger", "Andy", "Carlos", "Jannik", "Daniil", "Alexander",
	"Stefanos", "Casper", "Holger", "Taylor", "Felix", "Hubert", "Alex", "Lorenzo",
	"Frances", "Grigor", "Karen", "Tommy", "Ben", "Sebastian", "Nicolas", "Diego",
}

var lastNames = []string{ //nolint:gochecknoglobals // static name pool
	"Alvarez", "Berg", "Costa", "Dimitrov", "Evans", "Fischer", "Garcia", "Horvat",
	"Ivanov", "Jensen", "Kowalski", "Lopez", "Moreau", "Novak", "Olsen", "Petrov",
	"Quinn", "Rossi", "Silva", "Tanaka", "Ueda", "Varga", "Weber", "Zeller",
}

var countries = []string{ //nolint:gochecknoglobals // static country pool
	"ESP", "SRB", "SUI", "GBR", "ITA", "RUS", "GER", "GRE", "NOR", "DEN",
	"USA", "CAN", "AUS", "FRA", "ARG", "BUL", "POL", "CRO", "JPN", "CHI",
}

// Player attribute bounds, inclusive.
const (
	minAge            = 18
	maxAge            = 40
	minHeight         = 165
	maxHeight         = 210
	minGrandSlams     = 0
	maxGrandSlams     = 24
	leftHandedPercent = 15
)

// generatePlayers builds count players whose ranks are a shuffled
// permutation of 1..count.
func generatePlayers(src *source, count int) []model.Player {
	ranks := src.Perm(count)
	players := make([]model.Player, count)
	for i := range players {
		hand := model.Right
		if src.IntN(100) < leftHandedPercent {
			hand = model.Left
		}
		players[i] = model.Player{
			ID:         src.id(),
			Name:       pick(src, firstNames) + " " + pick(src, lastNames),
			Rank:       ranks[i] + 1,
			Country:    pick(src, countries),
			Age:        src.between(minAge, maxAge),
			Hand:       hand,
			Height:     src.between(minHeight, maxHeight),
			GrandSlams: src.between(minGrandSlams, maxGrandSlams),
		}
	}
	return players
}
