// Package analytics is the aggregation engine: five fixed, parameterized
// reports computed from scratch over the store on every call. The engine
// only reads, so it is safe for concurrent use.
package analytics

import (
	"context"
	"fmt"
	"iter"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/pipeline"
	"github.com/okian/courtstats/pkg/logger"
)

// Report names.
const (
	ReportWinPercentageBySurface  = "player_win_percentage_by_surface"
	ReportDurationBySurface       = "match_duration_stats_by_surface"
	ReportPlayerPerformance       = "player_performance_stats"
	ReportTournamentStatistics    = "tournament_statistics"
	ReportMatchesByYearAndSurface = "matches_by_year_and_surface"
)

// Descriptor describes a report for callers that dispatch by name.
type Descriptor struct {
	Name          string
	Description   string
	Defaults      Params
	HasLimit      bool
	HasMinMatches bool
}

// Reports lists every report in a stable order.
func Reports() []Descriptor {
	return []Descriptor{
		{
			Name: ReportWinPercentageBySurface, Description: "Win percentage per player and surface",
			Defaults: Params{Limit: DefaultWinLimit, MinMatches: DefaultWinMinMatches}, HasLimit: true, HasMinMatches: true,
		},
		{Name: ReportDurationBySurface, Description: "Match duration distribution per surface"},
		{
			Name: ReportPlayerPerformance, Description: "Serve and conversion stats per player",
			Defaults: Params{Limit: DefaultPerformanceLimit, MinMatches: DefaultPerformanceMinMatches}, HasLimit: true, HasMinMatches: true,
		},
		{
			Name: ReportTournamentStatistics, Description: "Roster size and match count per tournament",
			Defaults: Params{Limit: DefaultTournamentLimit}, HasLimit: true,
		},
		{Name: ReportMatchesByYearAndSurface, Description: "Match count and average duration per year and surface"},
	}
}

// Lookup returns the descriptor for name.
func Lookup(name string) (Descriptor, bool) {
	for _, d := range Reports() {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}

// Engine computes reports from a store Reader.
type Engine struct {
	reader repository.Reader
	log    logger.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// New creates an Engine over reader. If reader also implements
// repository.ParticipantScanner, role-flattening is pushed down to it.
func New(reader repository.Reader, opts ...Option) *Engine {
	e := &Engine{reader: reader, log: logger.Nop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run dispatches a report by name. The result is the report's
// types.Response value.
func (e *Engine) Run(ctx context.Context, name string, p Params) (any, error) {
	switch name {
	case ReportWinPercentageBySurface:
		return e.PlayerWinPercentageBySurface(ctx, p.Limit, p.MinMatches)
	case ReportDurationBySurface:
		return e.MatchDurationStatsBySurface(ctx)
	case ReportPlayerPerformance:
		return e.PlayerPerformanceStats(ctx, p.Limit, p.MinMatches)
	case ReportTournamentStatistics:
		return e.TournamentStatistics(ctx, p.Limit)
	case ReportMatchesByYearAndSurface:
		return e.MatchesByYearAndSurface(ctx)
	default:
		return nil, &ReportError{Report: name, Err: fmt.Errorf("%w: unknown report", ErrInvalidParameter)}
	}
}

func (e *Engine) playersByID(ctx context.Context) (map[string]model.Player, error) {
	src := pipeline.FromScan(ctx, e.reader.ScanPlayers)
	idx := pipeline.Index(src.Seq(), func(p model.Player) string { return p.ID })
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan players: %w", ErrQueryExecution, err)
	}
	return idx, nil
}

func (e *Engine) tournamentsByID(ctx context.Context) (map[string]model.Tournament, error) {
	src := pipeline.FromScan(ctx, e.reader.ScanTournaments)
	idx := pipeline.Index(src.Seq(), func(t model.Tournament) string { return t.ID })
	if err := src.Err(); err != nil {
		return nil, fmt.Errorf("%w: scan tournaments: %w", ErrQueryExecution, err)
	}
	return idx, nil
}

// surfaced is a match joined to its tournament's surface.
type surfaced struct {
	model.Match
	surface model.Surface
}

// matchesWithSurface inner-joins matches to tournaments. Matches of
// unknown tournaments are dropped. Call errf after consuming the sequence.
func (e *Engine) matchesWithSurface(ctx context.Context) (seq iter.Seq[surfaced], errf func() error, err error) {
	tournaments, err := e.tournamentsByID(ctx)
	if err != nil {
		return nil, nil, err
	}
	src := pipeline.FromScan(ctx, e.reader.ScanMatches)
	seq = pipeline.Join(src.Seq(), tournaments,
		func(m model.Match) string { return m.TournamentID },
		func(m model.Match, t model.Tournament) surfaced { return surfaced{Match: m, surface: t.Surface} })
	return seq, scanErr("scan matches", src), nil
}

// participants streams the role-flattened view of every match with its
// tournament's surface, empty when the tournament is unknown. Stores that
// implement repository.ParticipantScanner do the flattening themselves.
func (e *Engine) participants(ctx context.Context) (seq iter.Seq[model.Participant], errf func() error, err error) {
	if ps, ok := e.reader.(repository.ParticipantScanner); ok {
		src := pipeline.FromScan(ctx, ps.ScanParticipants)
		return src.Seq(), scanErr("scan participants", src), nil
	}

	tournaments, err := e.tournamentsByID(ctx)
	if err != nil {
		return nil, nil, err
	}
	src := pipeline.FromScan(ctx, e.reader.ScanMatches)
	withSurface := pipeline.Map(src.Seq(), func(m model.Match) surfaced {
		return surfaced{Match: m, surface: tournaments[m.TournamentID].Surface}
	})
	roles := pipeline.Map(withSurface, func(s surfaced) [2]model.Participant { return s.Participants(s.surface) })
	seq = pipeline.RoleFlatten(roles,
		func(p [2]model.Participant) model.Participant { return p[0] },
		func(p [2]model.Participant) model.Participant { return p[1] },
	)
	return seq, scanErr("scan matches", src), nil
}

func scanErr[T any](op string, src *pipeline.Source[T]) func() error {
	return func() error {
		if err := src.Err(); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrQueryExecution, op, err)
		}
		return nil
	}
}
