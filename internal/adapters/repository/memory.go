package repository

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/pkg/metrics"
)

const backendMemory = "memory"

// ctxCheckEvery bounds how many records a scan yields between context checks.
const ctxCheckEvery = 1024

type memIndex struct {
	spec IndexSpec
	keys map[string]struct{} // nil unless unique
}

// MemoryStore keeps every collection in insertion order behind an RWMutex.
// Records are immutable once inserted, so scans iterate a snapshot of the
// slice header without holding the lock.
type MemoryStore struct {
	mu          sync.RWMutex
	players     []model.Player
	tournaments []model.Tournament
	matches     []model.Match
	indexes     map[string]*memIndex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{indexes: make(map[string]*memIndex)}
}

func observeMemory(op string, write bool, start time.Time) {
	if write {
		metrics.RecordStoreUpdate(backendMemory, op, time.Since(start))
		return
	}
	metrics.RecordStoreQuery(backendMemory, op, time.Since(start))
}

// InsertPlayers appends one batch of players.
func (s *MemoryStore) InsertPlayers(ctx context.Context, players []model.Player) error {
	defer observeMemory("insert_players", true, time.Now())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("insert players: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reserveKeys(model.Players, len(players), func(i int, f string) string { return playerField(players[i], f) }); err != nil {
		return fmt.Errorf("insert players: %w", err)
	}
	s.players = append(s.players, players...)
	return nil
}

// InsertTournaments appends one batch of tournaments.
func (s *MemoryStore) InsertTournaments(ctx context.Context, tournaments []model.Tournament) error {
	defer observeMemory("insert_tournaments", true, time.Now())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("insert tournaments: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reserveKeys(model.Tournaments, len(tournaments), func(i int, f string) string { return tournamentField(tournaments[i], f) }); err != nil {
		return fmt.Errorf("insert tournaments: %w", err)
	}
	for _, t := range tournaments {
		t.Players = slices.Clone(t.Players)
		s.tournaments = append(s.tournaments, t)
	}
	return nil
}

// InsertMatches appends one batch of matches.
func (s *MemoryStore) InsertMatches(ctx context.Context, matches []model.Match) error {
	defer observeMemory("insert_matches", true, time.Now())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reserveKeys(model.Matches, len(matches), func(i int, f string) string { return matchField(matches[i], f) }); err != nil {
		return fmt.Errorf("insert matches: %w", err)
	}
	s.matches = append(s.matches, matches...)
	return nil
}

// reserveKeys checks the batch against every unique index of c and, when
// no key collides, records the new keys. Caller holds the write lock.
func (s *MemoryStore) reserveKeys(c model.Collection, n int, field func(i int, f string) string) error {
	pending := make(map[*memIndex][]string)
	for _, idx := range s.indexes {
		if idx.keys == nil || idx.spec.Collection != c {
			continue
		}
		seen := make(map[string]struct{}, n)
		keys := make([]string, 0, n)
		for i := range n {
			k := compositeKey(idx.spec.Fields, func(f string) string { return field(i, f) })
			if _, dup := idx.keys[k]; dup {
				return fmt.Errorf("%w: %s %q", ErrDuplicateKey, idx.spec.Name(), k)
			}
			if _, dup := seen[k]; dup {
				return fmt.Errorf("%w: %s %q", ErrDuplicateKey, idx.spec.Name(), k)
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		pending[idx] = keys
	}
	for idx, keys := range pending {
		for _, k := range keys {
			idx.keys[k] = struct{}{}
		}
	}
	return nil
}

// Truncate clears all collections. Index definitions survive.
func (s *MemoryStore) Truncate(ctx context.Context) error {
	defer observeMemory("truncate", true, time.Now())
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players, s.tournaments, s.matches = nil, nil, nil
	for _, idx := range s.indexes {
		if idx.keys != nil {
			idx.keys = make(map[string]struct{})
		}
	}
	return nil
}

// CreateIndex registers spec. Unique indexes are enforced on later inserts
// and fail with ErrDuplicateKey if existing records already collide.
func (s *MemoryStore) CreateIndex(ctx context.Context, spec IndexSpec) error {
	defer observeMemory("create_index", true, time.Now())
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	name := spec.Name()
	if _, ok := s.indexes[name]; ok {
		return nil
	}
	idx := &memIndex{spec: IndexSpec{Collection: spec.Collection, Fields: slices.Clone(spec.Fields), Unique: spec.Unique}}
	if spec.Unique {
		idx.keys = make(map[string]struct{})
		add := func(k string) error {
			if _, dup := idx.keys[k]; dup {
				return fmt.Errorf("create index: %w: %s %q", ErrDuplicateKey, name, k)
			}
			idx.keys[k] = struct{}{}
			return nil
		}
		var err error
		switch spec.Collection {
		case model.Players:
			for _, p := range s.players {
				if err = add(compositeKey(spec.Fields, func(f string) string { return playerField(p, f) })); err != nil {
					return err
				}
			}
		case model.Tournaments:
			for _, t := range s.tournaments {
				if err = add(compositeKey(spec.Fields, func(f string) string { return tournamentField(t, f) })); err != nil {
					return err
				}
			}
		case model.Matches:
			for _, m := range s.matches {
				if err = add(compositeKey(spec.Fields, func(f string) string { return matchField(m, f) })); err != nil {
					return err
				}
			}
		}
	}
	s.indexes[name] = idx
	return nil
}

// Indexes lists registered indexes ordered by name.
func (s *MemoryStore) Indexes(_ context.Context) ([]IndexSpec, error) {
	defer observeMemory("list_indexes", false, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]IndexSpec, 0, len(s.indexes))
	for _, idx := range s.indexes {
		out = append(out, idx.spec)
	}
	sortSpecs(out)
	return out, nil
}

// ScanPlayers yields players in insertion order.
func (s *MemoryStore) ScanPlayers(ctx context.Context, fn func(model.Player) error) error {
	defer observeMemory("scan_players", false, time.Now())
	s.mu.RLock()
	snapshot := s.players
	s.mu.RUnlock()
	return scanSlice(ctx, snapshot, fn)
}

// ScanTournaments yields tournaments in insertion order.
func (s *MemoryStore) ScanTournaments(ctx context.Context, fn func(model.Tournament) error) error {
	defer observeMemory("scan_tournaments", false, time.Now())
	s.mu.RLock()
	snapshot := s.tournaments
	s.mu.RUnlock()
	return scanSlice(ctx, snapshot, fn)
}

// ScanMatches yields matches in insertion order.
func (s *MemoryStore) ScanMatches(ctx context.Context, fn func(model.Match) error) error {
	defer observeMemory("scan_matches", false, time.Now())
	s.mu.RLock()
	snapshot := s.matches
	s.mu.RUnlock()
	return scanSlice(ctx, snapshot, fn)
}

// Count returns the number of records in c.
func (s *MemoryStore) Count(_ context.Context, c model.Collection) (int, error) {
	defer observeMemory("count", false, time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch c {
	case model.Players:
		return len(s.players), nil
	case model.Tournaments:
		return len(s.tournaments), nil
	case model.Matches:
		return len(s.matches), nil
	default:
		return 0, fmt.Errorf("count: %w: collection %q", ErrUnknownField, c)
	}
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}

func scanSlice[T any](ctx context.Context, items []T, fn func(T) error) error {
	for i, v := range items {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	return nil
}

func compositeKey(fields []string, value func(f string) string) string {
	if len(fields) == 1 {
		return value(fields[0])
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = value(f)
	}
	return strings.Join(parts, "\x00")
}

func playerField(p model.Player, f string) string {
	switch f {
	case "id":
		return p.ID
	case "name":
		return p.Name
	case "rank":
		return strconv.Itoa(p.Rank)
	case "country":
		return p.Country
	case "age":
		return strconv.Itoa(p.Age)
	case "hand":
		return string(p.Hand)
	case "height":
		return strconv.Itoa(p.Height)
	case "grand_slams":
		return strconv.Itoa(p.GrandSlams)
	}
	return ""
}

func tournamentField(t model.Tournament, f string) string {
	switch f {
	case "id":
		return t.ID
	case "name":
		return t.Name
	case "location":
		return t.Location
	case "category":
		return t.Category
	case "surface":
		return string(t.Surface)
	case "start_date":
		return formatTime(t.StartDate)
	case "end_date":
		return formatTime(t.EndDate)
	case "prize":
		return strconv.FormatInt(t.Prize, 10)
	}
	return ""
}

func matchField(m model.Match, f string) string {
	switch f {
	case "id":
		return m.ID
	case "tournament_id":
		return m.TournamentID
	case "player1_id":
		return m.Player1ID
	case "player2_id":
		return m.Player2ID
	case "winner_id":
		return m.WinnerID
	case "round":
		return m.Round
	case "score":
		return m.Score
	case "date":
		return formatTime(m.Date)
	case "duration":
		return strconv.Itoa(m.Duration)
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
