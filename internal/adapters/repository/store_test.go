package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
)

// backends returns a fresh instance of every store implementation.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()
	sqlite, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "courtstats.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		DriverMemory: NewMemoryStore(),
		DriverSQLite: sqlite,
	}
}

func fixture() ([]model.Player, []model.Tournament, []model.Match) {
	day := time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC)
	players := []model.Player{
		{ID: "p1", Name: "Ana", Rank: 1, Country: "ES", Age: 24, Hand: model.Right, Height: 180, GrandSlams: 2},
		{ID: "p2", Name: "Bo", Rank: 2, Country: "SE", Age: 31, Hand: model.Left, Height: 191, GrandSlams: 0},
	}
	tournaments := []model.Tournament{
		{ID: "t1", Name: "Roland", Location: "Paris", Category: model.CategoryGrandSlam, Surface: model.Clay,
			StartDate: day, EndDate: day.AddDate(0, 0, 14), Prize: 50_000_000, Players: []string{"p1", "p2"}},
	}
	matches := []model.Match{
		{ID: "m1", TournamentID: "t1", Player1ID: "p1", Player2ID: "p2", WinnerID: "p1", Round: "F",
			Score: "6-4 6-4 6-4", Date: day.AddDate(0, 0, 13), Duration: 150,
			Stats: model.MatchStats{
				Player1: model.RoleStats{Aces: 12, DoubleFaults: 2, FirstServePercentage: 68.5, BreakPointsConverted: 3},
				Player2: model.RoleStats{Aces: 7, DoubleFaults: 5, FirstServePercentage: 55, BreakPointsConverted: 0},
			}},
		{ID: "m2", TournamentID: "missing", Player1ID: "p2", Player2ID: "p1", WinnerID: "p1", Round: "SF",
			Score: "4-6 3-6", Date: day.AddDate(0, 0, 10), Duration: 80},
	}
	return players, tournaments, matches
}

func load(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	players, tournaments, matches := fixture()
	if err := s.InsertPlayers(ctx, players); err != nil {
		t.Fatalf("InsertPlayers: %v", err)
	}
	if err := s.InsertTournaments(ctx, tournaments); err != nil {
		t.Fatalf("InsertTournaments: %v", err)
	}
	if err := s.InsertMatches(ctx, matches); err != nil {
		t.Fatalf("InsertMatches: %v", err)
	}
}

func TestStore_InsertScanRoundTrip(t *testing.T) {
	ctx := context.Background()
	wantPlayers, wantTournaments, wantMatches := fixture()

	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			load(t, s)

			var players []model.Player
			if err := s.ScanPlayers(ctx, func(p model.Player) error { players = append(players, p); return nil }); err != nil {
				t.Fatalf("ScanPlayers: %v", err)
			}
			if len(players) != 2 || players[0] != wantPlayers[0] || players[1] != wantPlayers[1] {
				t.Errorf("players = %+v", players)
			}

			var tournaments []model.Tournament
			if err := s.ScanTournaments(ctx, func(tr model.Tournament) error { tournaments = append(tournaments, tr); return nil }); err != nil {
				t.Fatalf("ScanTournaments: %v", err)
			}
			if len(tournaments) != 1 {
				t.Fatalf("expected 1 tournament, got %d", len(tournaments))
			}
			got := tournaments[0]
			if got.Surface != model.Clay || got.PlayerCount() != 2 || !got.StartDate.Equal(wantTournaments[0].StartDate) {
				t.Errorf("tournament = %+v", got)
			}

			var matches []model.Match
			if err := s.ScanMatches(ctx, func(m model.Match) error { matches = append(matches, m); return nil }); err != nil {
				t.Fatalf("ScanMatches: %v", err)
			}
			if len(matches) != 2 {
				t.Fatalf("expected 2 matches, got %d", len(matches))
			}
			if matches[0].Stats != wantMatches[0].Stats || !matches[0].Date.Equal(wantMatches[0].Date) {
				t.Errorf("match = %+v", matches[0])
			}
			if matches[1].ID != "m2" {
				t.Errorf("expected insertion order, got %s second", matches[1].ID)
			}

			for c, want := range map[model.Collection]int{model.Players: 2, model.Tournaments: 1, model.Matches: 2} {
				n, err := s.Count(ctx, c)
				if err != nil {
					t.Fatalf("Count(%s): %v", c, err)
				}
				if n != want {
					t.Errorf("Count(%s) = %d, want %d", c, n, want)
				}
			}
		})
	}
}

func TestStore_Truncate(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			load(t, s)
			if err := s.Truncate(ctx); err != nil {
				t.Fatalf("Truncate: %v", err)
			}
			for _, c := range model.Collections() {
				if n, _ := s.Count(ctx, c); n != 0 {
					t.Errorf("Count(%s) = %d after truncate", c, n)
				}
			}
			// Regenerating after truncate must not trip unique indexes.
			if err := s.CreateIndex(ctx, IndexSpec{Collection: model.Players, Fields: []string{"id"}, Unique: true}); err != nil {
				t.Fatalf("CreateIndex: %v", err)
			}
			load(t, s)
			if err := s.Truncate(ctx); err != nil {
				t.Fatalf("second Truncate: %v", err)
			}
			load(t, s)
		})
	}
}

func TestStore_CreateIndex(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			specs := []IndexSpec{
				{Collection: model.Players, Fields: []string{"rank"}, Unique: true},
				{Collection: model.Matches, Fields: []string{"tournament_id", "date"}},
			}
			for range 2 {
				for _, spec := range specs {
					if err := s.CreateIndex(ctx, spec); err != nil {
						t.Fatalf("CreateIndex(%s): %v", spec, err)
					}
				}
			}

			got, err := s.Indexes(ctx)
			if err != nil {
				t.Fatalf("Indexes: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("expected 2 indexes after idempotent creation, got %+v", got)
			}
			if got[0].Name() != "idx_matches_tournament_id_date" || len(got[0].Fields) != 2 || got[0].Unique {
				t.Errorf("unexpected first index %+v", got[0])
			}
			if got[1].Name() != "ux_players_rank" || !got[1].Unique {
				t.Errorf("unexpected second index %+v", got[1])
			}

			err = s.CreateIndex(ctx, IndexSpec{Collection: model.Matches, Fields: []string{"surface"}})
			if !errors.Is(err, ErrUnknownField) {
				t.Errorf("expected ErrUnknownField, got %v", err)
			}
			err = s.CreateIndex(ctx, IndexSpec{Collection: "umpires", Fields: []string{"id"}})
			if !errors.Is(err, ErrUnknownField) {
				t.Errorf("expected ErrUnknownField for unknown collection, got %v", err)
			}
		})
	}
}

func TestStore_UniqueIndexRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.CreateIndex(ctx, IndexSpec{Collection: model.Players, Fields: []string{"rank"}, Unique: true}); err != nil {
				t.Fatalf("CreateIndex: %v", err)
			}
			batch := []model.Player{{ID: "a", Rank: 1}, {ID: "b", Rank: 1}}
			if err := s.InsertPlayers(ctx, batch); !errors.Is(err, ErrDuplicateKey) {
				t.Fatalf("expected ErrDuplicateKey, got %v", err)
			}
			// The batch is atomic: nothing from it was kept.
			if n, _ := s.Count(ctx, model.Players); n != 0 {
				t.Errorf("expected rejected batch to leave no rows, got %d", n)
			}
			if err := s.InsertPlayers(ctx, batch[:1]); err != nil {
				t.Fatalf("InsertPlayers: %v", err)
			}
			if err := s.InsertPlayers(ctx, []model.Player{{ID: "c", Rank: 1}}); !errors.Is(err, ErrDuplicateKey) {
				t.Errorf("expected ErrDuplicateKey across batches, got %v", err)
			}
		})
	}
}

func TestStore_ScanCallbackErrorAborts(t *testing.T) {
	ctx := context.Background()
	stop := errors.New("stop")
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			load(t, s)
			seen := 0
			err := s.ScanMatches(ctx, func(model.Match) error {
				seen++
				return stop
			})
			if !errors.Is(err, stop) || errors.Is(err, ErrStoreUnavailable) {
				t.Errorf("expected callback error unchanged, got %v", err)
			}
			if seen != 1 {
				t.Errorf("expected scan to stop after first record, saw %d", seen)
			}
		})
	}
}

func TestSQLiteStore_ScanParticipants(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "p.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	load(t, s)

	var got []model.Participant
	if err := s.ScanParticipants(ctx, func(p model.Participant) error { got = append(got, p); return nil }); err != nil {
		t.Fatalf("ScanParticipants: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected two records per match, got %d", len(got))
	}

	_, _, matches := fixture()
	want := map[string]model.Participant{}
	for _, m := range matches {
		surface := model.Surface("")
		if m.TournamentID == "t1" {
			surface = model.Clay
		}
		for _, p := range m.Participants(surface) {
			want[p.MatchID+"/"+p.PlayerID] = p
		}
	}
	for _, p := range got {
		w, ok := want[p.MatchID+"/"+p.PlayerID]
		if !ok {
			t.Fatalf("unexpected participant %+v", p)
		}
		if p.IsWinner != w.IsWinner || p.Surface != w.Surface || p.Stats != w.Stats || p.Duration != w.Duration || !p.Date.Equal(w.Date) {
			t.Errorf("participant %s/%s = %+v, want %+v", p.MatchID, p.PlayerID, p, w)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, DriverMemory, "")
	if err != nil {
		t.Fatalf("Open memory: %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("expected *MemoryStore, got %T", s)
	}

	s, err = Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "o.db"), WithBusyTimeout(time.Second))
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer s.Close()
	if _, ok := s.(ParticipantScanner); !ok {
		t.Error("expected the sqlite store to push down participant scans")
	}

	if _, err := Open(ctx, "mongo", ""); !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("expected ErrUnknownDriver, got %v", err)
	}
	if _, err := Open(ctx, DriverSQLite, ""); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable for empty dsn, got %v", err)
	}
}

func TestStore_ClosedSQLiteIsUnavailable(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(ctx, filepath.Join(t.TempDir(), "c.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s.Close()
	err = s.ScanPlayers(ctx, func(model.Player) error { return nil })
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}
