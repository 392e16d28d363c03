package repository

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/courtstats/internal/domain/model"
)

// IndexSpec describes a single-field or compound index.
type IndexSpec struct {
	Collection model.Collection
	Fields     []string
	Unique     bool
}

// Name returns the deterministic index name, e.g. idx_matches_tournament_id_date.
func (s IndexSpec) Name() string {
	prefix := "idx"
	if s.Unique {
		prefix = "ux"
	}
	return prefix + "_" + string(s.Collection) + "_" + strings.Join(s.Fields, "_")
}

func (s IndexSpec) String() string {
	u := ""
	if s.Unique {
		u = " unique"
	}
	return fmt.Sprintf("%s(%s)%s", s.Collection, strings.Join(s.Fields, ", "), u)
}

// Validate checks the collection and every field against the stored columns.
func (s IndexSpec) Validate() error {
	known, ok := collectionFields[s.Collection]
	if !ok {
		return fmt.Errorf("%w: collection %q", ErrUnknownField, s.Collection)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields for %s", ErrUnknownField, s.Collection)
	}
	for _, f := range s.Fields {
		if !slices.Contains(known, f) {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, s.Collection, f)
		}
	}
	return nil
}

// Indexable fields per collection. They double as SQLite column names.
var collectionFields = map[model.Collection][]string{ //nolint:gochecknoglobals // static schema
	model.Players:     {"id", "name", "rank", "country", "age", "hand", "height", "grand_slams"},
	model.Tournaments: {"id", "name", "location", "category", "surface", "start_date", "end_date", "prize"},
	model.Matches:     {"id", "tournament_id", "player1_id", "player2_id", "winner_id", "round", "score", "date", "duration"},
}

func sortSpecs(specs []IndexSpec) {
	slices.SortFunc(specs, func(a, b IndexSpec) int { return strings.Compare(a.Name(), b.Name()) })
}
