package generator

import (
	"time"

	"github.com/okian/courtstats/internal/domain/model"
)

var venues = []struct{ name, city string }{ //nolint:gochecknoglobals // static venue pool
	{"Australian", "Melbourne"}, {"Roland", "Paris"}, {"Wimbledon", "London"}, {"Flushing", "New York"},
	{"Desert", "Indian Wells"}, {"Sunshine", "Miami"}, {"Riviera", "Monte Carlo"}, {"Caja", "Madrid"},
	{"Foro", "Rome"}, {"Maple", "Toronto"}, {"Queen City", "Cincinnati"}, {"Huangpu", "Shanghai"},
	{"Bercy", "Paris"}, {"Harbour", "Rotterdam"}, {"Gulf", "Dubai"}, {"Alpine", "Kitzbuhel"},
	{"Fjord", "Stockholm"}, {"Danube", "Vienna"}, {"Pampas", "Buenos Aires"}, {"Sakura", "Tokyo"},
}

var rosterSizes = []int{16, 32, 64, 128} //nolint:gochecknoglobals // draw sizes

// Prize ranges per category, in currency units.
var prizeRanges = map[string][2]int64{ //nolint:gochecknoglobals // static prize table
	model.CategoryGrandSlam:  {40_000_000, 60_000_000},
	model.CategoryMasters:    {5_000_000, 9_000_000},
	model.CategoryATP500:     {2_000_000, 3_000_000},
	model.CategoryATP250:     {500_000, 1_500_000},
	model.CategoryChallenger: {50_000, 200_000},
}

const (
	minEventDays = 7
	maxEventDays = 14
)

// generateTournaments builds count tournaments. Rosters are sampled
// without replacement from playerIDs, independently of any match.
func generateTournaments(src *source, count int, playerIDs []string, startYear, endYear int) []model.Tournament {
	first := time.Date(startYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(endYear, time.December, 31, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -maxEventDays)
	span := max(1, int(last.Sub(first).Hours()/24)+1)

	// Partial Fisher-Yates over a scratch copy; every prefix is a fresh
	// uniform sample and the scratch stays a permutation between draws.
	scratch := append([]string(nil), playerIDs...)

	tournaments := make([]model.Tournament, count)
	for i := range tournaments {
		venue := pick(src, venues)
		category := pick(src, model.Categories())
		start := first.AddDate(0, 0, src.IntN(span))
		prize := prizeRanges[category]

		size := min(pick(src, rosterSizes), len(scratch))
		for j := range size {
			k := j + src.IntN(len(scratch)-j)
			scratch[j], scratch[k] = scratch[k], scratch[j]
		}

		tournaments[i] = model.Tournament{
			ID:        src.id(),
			Name:      venue.name + " " + category + " " + start.Format("2006"),
			Location:  venue.city,
			Category:  category,
			Surface:   pick(src, model.Surfaces()),
			StartDate: start,
			EndDate:   start.AddDate(0, 0, src.between(minEventDays, maxEventDays)),
			Prize:     prize[0] + src.Int64N(prize[1]-prize[0]+1),
			Players:   append([]string(nil), scratch[:size]...),
		}
	}
	return tournaments
}
