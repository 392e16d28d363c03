package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/pkg/metrics"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

const (
	backendSQLite      = "sqlite"
	defaultBusyTimeout = 5 * time.Second
)

// SQLiteStore persists the collections in SQLite through the pure-Go
// modernc driver. SQLite admits a single writer, so the pool is capped at
// one connection and concurrent workers serialize on it.
type SQLiteStore struct {
	db          *sql.DB
	busyTimeout time.Duration
	journalMode string
}

// NewSQLiteStore opens (or creates) the database at dsn and applies the schema.
func NewSQLiteStore(ctx context.Context, dsn string, opts ...SQLiteOption) (*SQLiteStore, error) {
	s := &SQLiteStore{busyTimeout: defaultBusyTimeout, journalMode: "WAL"}
	for _, opt := range opts {
		opt(s)
	}
	if dsn == "" {
		return nil, fmt.Errorf("open sqlite: %w: empty dsn", ErrStoreUnavailable)
	}

	db, err := sql.Open("sqlite", s.withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w: %w", ErrStoreUnavailable, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w: %w", ErrStoreUnavailable, err)
	}
	s.db = db
	return s, nil
}

func (s *SQLiteStore) withPragmas(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s_pragma=busy_timeout(%d)&_pragma=journal_mode(%s)",
		dsn, sep, s.busyTimeout.Milliseconds(), s.journalMode)
}

func observeSQLite(op string, write bool, start time.Time) {
	if write {
		metrics.RecordStoreUpdate(backendSQLite, op, time.Since(start))
		return
	}
	metrics.RecordStoreQuery(backendSQLite, op, time.Since(start))
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// insertBatch runs exec for every row inside one transaction with a
// prepared statement.
func (s *SQLiteStore) insertBatch(ctx context.Context, query string, n int, exec func(stmt *sql.Stmt, i int) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i := range n {
		if err := exec(stmt, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// InsertPlayers writes one batch of players in a transaction.
func (s *SQLiteStore) InsertPlayers(ctx context.Context, players []model.Player) error {
	defer observeSQLite("insert_players", true, time.Now())
	err := s.insertBatch(ctx, `
		INSERT INTO players(id, name, rank, country, age, hand, height, grand_slams)
		VALUES (?,?,?,?,?,?,?,?)`, len(players), func(stmt *sql.Stmt, i int) error {
		p := players[i]
		_, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Rank, p.Country, p.Age, string(p.Hand), p.Height, p.GrandSlams)
		return err
	})
	if err != nil {
		return writeError("insert players", err)
	}
	return nil
}

// InsertTournaments writes one batch of tournaments in a transaction. The
// roster is stored as a JSON array.
func (s *SQLiteStore) InsertTournaments(ctx context.Context, tournaments []model.Tournament) error {
	defer observeSQLite("insert_tournaments", true, time.Now())
	err := s.insertBatch(ctx, `
		INSERT INTO tournaments(id, name, location, category, surface, start_date, end_date, prize, roster)
		VALUES (?,?,?,?,?,?,?,?,?)`, len(tournaments), func(stmt *sql.Stmt, i int) error {
		t := tournaments[i]
		roster := t.Players
		if roster == nil {
			roster = []string{}
		}
		raw, err := json.Marshal(roster)
		if err != nil {
			return fmt.Errorf("encode roster of %s: %w", t.ID, err)
		}
		_, err = stmt.ExecContext(ctx, t.ID, t.Name, t.Location, t.Category, string(t.Surface),
			formatTime(t.StartDate), formatTime(t.EndDate), t.Prize, string(raw))
		return err
	})
	if err != nil {
		return writeError("insert tournaments", err)
	}
	return nil
}

// InsertMatches writes one batch of matches in a transaction.
func (s *SQLiteStore) InsertMatches(ctx context.Context, matches []model.Match) error {
	defer observeSQLite("insert_matches", true, time.Now())
	err := s.insertBatch(ctx, `
		INSERT INTO matches(
			id, tournament_id, player1_id, player2_id, winner_id, round, score, date, duration,
			p1_aces, p1_double_faults, p1_first_serve_pct, p1_break_points_converted,
			p2_aces, p2_double_faults, p2_first_serve_pct, p2_break_points_converted
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, len(matches), func(stmt *sql.Stmt, i int) error {
		m := matches[i]
		p1, p2 := m.Stats.Player1, m.Stats.Player2
		_, err := stmt.ExecContext(ctx,
			m.ID, m.TournamentID, m.Player1ID, m.Player2ID, m.WinnerID, m.Round, m.Score, formatTime(m.Date), m.Duration,
			p1.Aces, p1.DoubleFaults, p1.FirstServePercentage, p1.BreakPointsConverted,
			p2.Aces, p2.DoubleFaults, p2.FirstServePercentage, p2.BreakPointsConverted,
		)
		return err
	})
	if err != nil {
		return writeError("insert matches", err)
	}
	return nil
}

// writeError maps unique constraint violations to ErrDuplicateKey and
// everything else to ErrStoreUnavailable.
func writeError(op string, err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%s: %w: %w", op, ErrDuplicateKey, err)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return unavailable(op, err)
}

// Truncate deletes every row of the three collections in one transaction.
func (s *SQLiteStore) Truncate(ctx context.Context) error {
	defer observeSQLite("truncate", true, time.Now())
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("truncate", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit
	for _, table := range []string{"matches", "tournaments", "players"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return unavailable("truncate "+table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return unavailable("truncate", err)
	}
	return nil
}

// CreateIndex issues CREATE [UNIQUE] INDEX IF NOT EXISTS for spec.
func (s *SQLiteStore) CreateIndex(ctx context.Context, spec IndexSpec) error {
	defer observeSQLite("create_index", true, time.Now())
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	unique := ""
	if spec.Unique {
		unique = "UNIQUE "
	}
	// Identifiers come from the validated field list, never from callers.
	stmt := fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s(%s)",
		unique, spec.Name(), spec.Collection, strings.Join(spec.Fields, ", "))
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return writeError("create index "+spec.Name(), err)
	}
	return nil
}

// Indexes lists user-created indexes of the three collections ordered by name.
func (s *SQLiteStore) Indexes(ctx context.Context) ([]IndexSpec, error) {
	defer observeSQLite("list_indexes", false, time.Now())
	var out []IndexSpec
	for _, c := range model.Collections() {
		rows, err := s.db.QueryContext(ctx, `
			SELECT il.name, il."unique", ii.name
			FROM pragma_index_list(?) AS il, pragma_index_info(il.name) AS ii
			WHERE il.origin = 'c'
			ORDER BY il.name, ii.seqno`, string(c))
		if err != nil {
			return nil, unavailable("list indexes", err)
		}
		byName := make(map[string]int)
		for rows.Next() {
			var name, field string
			var unique bool
			if err := rows.Scan(&name, &unique, &field); err != nil {
				rows.Close()
				return nil, unavailable("list indexes", err)
			}
			i, ok := byName[name]
			if !ok {
				i = len(out)
				byName[name] = i
				out = append(out, IndexSpec{Collection: c, Unique: unique})
			}
			out[i].Fields = append(out[i].Fields, field)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, unavailable("list indexes", err)
		}
	}
	sortSpecs(out)
	return out, nil
}

// scanRows runs query and hands each row to fn after decoding it with scan.
func scanRows[T any](ctx context.Context, db *sql.DB, op, query string, scan func(*sql.Rows) (T, error), fn func(T) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return unavailable(op, err)
	}
	defer rows.Close()
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return unavailable(op, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return unavailable(op, err)
	}
	return nil
}

// ScanPlayers yields players in insertion order.
func (s *SQLiteStore) ScanPlayers(ctx context.Context, fn func(model.Player) error) error {
	defer observeSQLite("scan_players", false, time.Now())
	return scanRows(ctx, s.db, "scan players", `
		SELECT id, name, rank, country, age, hand, height, grand_slams
		FROM players ORDER BY rowid`,
		func(r *sql.Rows) (model.Player, error) {
			var p model.Player
			var hand string
			err := r.Scan(&p.ID, &p.Name, &p.Rank, &p.Country, &p.Age, &hand, &p.Height, &p.GrandSlams)
			p.Hand = model.Hand(hand)
			return p, err
		}, fn)
}

// ScanTournaments yields tournaments in insertion order.
func (s *SQLiteStore) ScanTournaments(ctx context.Context, fn func(model.Tournament) error) error {
	defer observeSQLite("scan_tournaments", false, time.Now())
	return scanRows(ctx, s.db, "scan tournaments", `
		SELECT id, name, location, category, surface, start_date, end_date, prize, roster
		FROM tournaments ORDER BY rowid`,
		func(r *sql.Rows) (model.Tournament, error) {
			var t model.Tournament
			var surface, start, end, roster string
			if err := r.Scan(&t.ID, &t.Name, &t.Location, &t.Category, &surface, &start, &end, &t.Prize, &roster); err != nil {
				return t, err
			}
			t.Surface = model.Surface(surface)
			var err error
			if t.StartDate, err = time.Parse(time.RFC3339, start); err != nil {
				return t, err
			}
			if t.EndDate, err = time.Parse(time.RFC3339, end); err != nil {
				return t, err
			}
			if err := json.Unmarshal([]byte(roster), &t.Players); err != nil {
				return t, fmt.Errorf("decode roster of %s: %w", t.ID, err)
			}
			return t, nil
		}, fn)
}

// ScanMatches yields matches in insertion order.
func (s *SQLiteStore) ScanMatches(ctx context.Context, fn func(model.Match) error) error {
	defer observeSQLite("scan_matches", false, time.Now())
	return scanRows(ctx, s.db, "scan matches", `
		SELECT id, tournament_id, player1_id, player2_id, winner_id, round, score, date, duration,
			p1_aces, p1_double_faults, p1_first_serve_pct, p1_break_points_converted,
			p2_aces, p2_double_faults, p2_first_serve_pct, p2_break_points_converted
		FROM matches ORDER BY rowid`,
		func(r *sql.Rows) (model.Match, error) {
			var m model.Match
			var date string
			p1, p2 := &m.Stats.Player1, &m.Stats.Player2
			if err := r.Scan(&m.ID, &m.TournamentID, &m.Player1ID, &m.Player2ID, &m.WinnerID, &m.Round, &m.Score, &date, &m.Duration,
				&p1.Aces, &p1.DoubleFaults, &p1.FirstServePercentage, &p1.BreakPointsConverted,
				&p2.Aces, &p2.DoubleFaults, &p2.FirstServePercentage, &p2.BreakPointsConverted,
			); err != nil {
				return m, err
			}
			var err error
			m.Date, err = time.Parse(time.RFC3339, date)
			return m, err
		}, fn)
}

// participantsQuery role-flattens matches as the union of a player1 and a
// player2 projection, each left-joined to its tournament's surface.
const participantsQuery = `
	SELECT m.id, m.player1_id, m.player1_id = m.winner_id, COALESCE(t.surface, ''), m.duration, m.date,
		m.p1_aces, m.p1_double_faults, m.p1_first_serve_pct, m.p1_break_points_converted
	FROM matches m LEFT JOIN tournaments t ON t.id = m.tournament_id
	UNION ALL
	SELECT m.id, m.player2_id, m.player2_id = m.winner_id, COALESCE(t.surface, ''), m.duration, m.date,
		m.p2_aces, m.p2_double_faults, m.p2_first_serve_pct, m.p2_break_points_converted
	FROM matches m LEFT JOIN tournaments t ON t.id = m.tournament_id`

// ScanParticipants yields two participant records per match.
func (s *SQLiteStore) ScanParticipants(ctx context.Context, fn func(model.Participant) error) error {
	defer observeSQLite("scan_participants", false, time.Now())
	return scanRows(ctx, s.db, "scan participants", participantsQuery,
		func(r *sql.Rows) (model.Participant, error) {
			var p model.Participant
			var surface, date string
			st := &p.Stats
			if err := r.Scan(&p.MatchID, &p.PlayerID, &p.IsWinner, &surface, &p.Duration, &date,
				&st.Aces, &st.DoubleFaults, &st.FirstServePercentage, &st.BreakPointsConverted); err != nil {
				return p, err
			}
			p.Surface = model.Surface(surface)
			var err error
			p.Date, err = time.Parse(time.RFC3339, date)
			return p, err
		}, fn)
}

// Count returns the number of rows in c.
func (s *SQLiteStore) Count(ctx context.Context, c model.Collection) (int, error) {
	defer observeSQLite("count", false, time.Now())
	if _, ok := collectionFields[c]; !ok {
		return 0, fmt.Errorf("count: %w: collection %q", ErrUnknownField, c)
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+string(c)).Scan(&n); err != nil {
		return 0, unavailable("count "+string(c), err)
	}
	return n, nil
}

// Close closes the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
