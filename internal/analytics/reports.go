package analytics

import (
	"cmp"
	"context"
	"math"
	"slices"

	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/domain/pipeline"
	"github.com/okian/courtstats/internal/domain/types"
)

// DurationBoundaries are the lower bounds, in minutes, of the duration
// histogram buckets. The last bucket is open-ended.
var DurationBoundaries = []int{0, 90, 120, 180, 240} //nolint:gochecknoglobals // fixed histogram shape

type playerSurface struct {
	playerID string
	surface  model.Surface
}

type winTally struct {
	total, wins int
}

// PlayerWinPercentageBySurface returns win percentages per (player,
// surface) for groups with at least minMatches matches, best first.
func (e *Engine) PlayerWinPercentageBySurface(ctx context.Context, limit, minMatches int) (types.Response[types.SurfaceWinRate], error) {
	p := &Params{Limit: limit, MinMatches: minMatches}
	return timed(ctx, e, ReportWinPercentageBySurface, p, func(ctx context.Context) ([]types.SurfaceWinRate, error) {
		parts, errf, err := e.participants(ctx)
		if err != nil {
			return nil, err
		}
		groups := pipeline.GroupAggregate(
			pipeline.Filter(parts, func(p model.Participant) bool { return p.Surface != "" }),
			func(p model.Participant) playerSurface { return playerSurface{p.PlayerID, p.Surface} },
			func(acc winTally, p model.Participant) winTally {
				acc.total++
				if p.IsWinner {
					acc.wins++
				}
				return acc
			})
		if err := errf(); err != nil {
			return nil, err
		}

		players, err := e.playersByID(ctx)
		if err != nil {
			return nil, err
		}
		rows := slices.Collect(pipeline.Join(
			pipeline.Filter(slices.Values(groups), func(g pipeline.Group[playerSurface, winTally]) bool {
				return g.Acc.total >= minMatches
			}),
			players,
			func(g pipeline.Group[playerSurface, winTally]) string { return g.Key.playerID },
			func(g pipeline.Group[playerSurface, winTally], pl model.Player) types.SurfaceWinRate {
				return types.SurfaceWinRate{
					PlayerID:      pl.ID,
					Name:          pl.Name,
					Country:       pl.Country,
					Surface:       string(g.Key.surface),
					TotalMatches:  g.Acc.total,
					Wins:          g.Acc.wins,
					WinPercentage: percent(g.Acc.wins, g.Acc.total),
				}
			}))

		pipeline.SortBy(rows, func(a, b types.SurfaceWinRate) int {
			return cmp.Or(
				cmp.Compare(b.WinPercentage, a.WinPercentage),
				cmp.Compare(b.TotalMatches, a.TotalMatches),
				cmp.Compare(a.PlayerID, b.PlayerID),
				cmp.Compare(a.Surface, b.Surface),
			)
		})
		return pipeline.Limit(rows, limit), nil
	})
}

type durationTally struct {
	acc       pipeline.Accumulator
	durations []int
}

// MatchDurationStatsBySurface returns duration statistics and a duration
// histogram per surface, longest average first.
func (e *Engine) MatchDurationStatsBySurface(ctx context.Context) (types.Response[types.SurfaceDuration], error) {
	return timed(ctx, e, ReportDurationBySurface, nil, func(ctx context.Context) ([]types.SurfaceDuration, error) {
		matches, errf, err := e.matchesWithSurface(ctx)
		if err != nil {
			return nil, err
		}
		groups := pipeline.GroupAggregate(matches,
			func(m surfaced) model.Surface { return m.surface },
			func(t durationTally, m surfaced) durationTally {
				t.acc.Add(float64(m.Duration))
				t.durations = append(t.durations, m.Duration)
				return t
			})
		if err := errf(); err != nil {
			return nil, err
		}

		rows := make([]types.SurfaceDuration, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, types.SurfaceDuration{
				Surface:         string(g.Key),
				AverageDuration: pipeline.RoundInt(g.Acc.acc.Avg()),
				MinDuration:     int(g.Acc.acc.Min),
				MaxDuration:     int(g.Acc.acc.Max),
				TotalMatches:    g.Acc.acc.Count,
				DurationBuckets: durationBuckets(pipeline.Bucketize(g.Acc.durations, DurationBoundaries)),
			})
		}
		return pipeline.SortBy(rows, func(a, b types.SurfaceDuration) int {
			return cmp.Or(
				cmp.Compare(b.AverageDuration, a.AverageDuration),
				cmp.Compare(a.Surface, b.Surface),
			)
		}), nil
	})
}

func durationBuckets(counts []int) []types.DurationBucket {
	out := make([]types.DurationBucket, len(DurationBoundaries))
	for i, lower := range DurationBoundaries {
		out[i] = types.DurationBucket{Lower: lower, Count: counts[i]}
		if i+1 < len(DurationBoundaries) {
			out[i].Upper = DurationBoundaries[i+1]
		}
	}
	return out
}

// firstServe is kept in millionths so the sum does not depend on the
// order in which a store yields participants.
type performanceTally struct {
	total, wins  int
	aces, faults int
	bpc          int
	firstServe   int64
}

const firstServeScale = 1e6

// PlayerPerformanceStats returns per-player serve and conversion stats for
// players with at least minMatches matches, best win percentage first.
func (e *Engine) PlayerPerformanceStats(ctx context.Context, limit, minMatches int) (types.Response[types.PlayerPerformance], error) {
	p := &Params{Limit: limit, MinMatches: minMatches}
	return timed(ctx, e, ReportPlayerPerformance, p, func(ctx context.Context) ([]types.PlayerPerformance, error) {
		parts, errf, err := e.participants(ctx)
		if err != nil {
			return nil, err
		}
		groups := pipeline.GroupAggregate(parts,
			func(p model.Participant) string { return p.PlayerID },
			func(t performanceTally, p model.Participant) performanceTally {
				t.total++
				if p.IsWinner {
					t.wins++
				}
				t.aces += p.Stats.Aces
				t.faults += p.Stats.DoubleFaults
				t.firstServe += int64(math.Round(p.Stats.FirstServePercentage * firstServeScale))
				t.bpc += p.Stats.BreakPointsConverted
				return t
			})
		if err := errf(); err != nil {
			return nil, err
		}

		players, err := e.playersByID(ctx)
		if err != nil {
			return nil, err
		}
		rows := slices.Collect(pipeline.Join(
			pipeline.Filter(slices.Values(groups), func(g pipeline.Group[string, performanceTally]) bool {
				return g.Acc.total >= minMatches
			}),
			players,
			func(g pipeline.Group[string, performanceTally]) string { return g.Key },
			func(g pipeline.Group[string, performanceTally], pl model.Player) types.PlayerPerformance {
				t, n := g.Acc, float64(g.Acc.total)
				return types.PlayerPerformance{
					PlayerID:                pl.ID,
					Name:                    pl.Name,
					Country:                 pl.Country,
					Rank:                    pl.Rank,
					TotalMatches:            t.total,
					Wins:                    t.wins,
					WinPercentage:           percent(t.wins, t.total),
					TotalAces:               t.aces,
					TotalDoubleFaults:       t.faults,
					AcesPerMatch:            pipeline.Round1(pipeline.Ratio(float64(t.aces), n)),
					DoubleFaultsPerMatch:    pipeline.Round1(pipeline.Ratio(float64(t.faults), n)),
					AvgFirstServePercentage: pipeline.Round1(pipeline.Ratio(float64(t.firstServe)/firstServeScale, n)),
					AvgBreakPointsConverted: pipeline.Round1(pipeline.Ratio(float64(t.bpc), n)),
				}
			}))

		pipeline.SortBy(rows, func(a, b types.PlayerPerformance) int {
			return cmp.Or(
				cmp.Compare(b.WinPercentage, a.WinPercentage),
				cmp.Compare(a.PlayerID, b.PlayerID),
			)
		})
		return pipeline.Limit(rows, limit), nil
	})
}

// TournamentStatistics returns roster size and match count for every
// tournament, busiest first. Tournaments without matches are included.
func (e *Engine) TournamentStatistics(ctx context.Context, limit int) (types.Response[types.TournamentSummary], error) {
	p := &Params{Limit: limit}
	return timed(ctx, e, ReportTournamentStatistics, p, func(ctx context.Context) ([]types.TournamentSummary, error) {
		src := pipeline.FromScan(ctx, e.reader.ScanMatches)
		groups := pipeline.GroupAggregate(src.Seq(),
			func(m model.Match) string { return m.TournamentID },
			func(n int, _ model.Match) int { return n + 1 })
		if err := scanErr("scan matches", src)(); err != nil {
			return nil, err
		}
		counts := make(map[string]int, len(groups))
		for _, g := range groups {
			counts[g.Key] = g.Acc
		}

		tsrc := pipeline.FromScan(ctx, e.reader.ScanTournaments)
		rows := slices.Collect(pipeline.Map(tsrc.Seq(), func(t model.Tournament) types.TournamentSummary {
			return types.TournamentSummary{
				TournamentID: t.ID,
				Name:         t.Name,
				Location:     t.Location,
				Category:     t.Category,
				Surface:      string(t.Surface),
				PlayerCount:  t.PlayerCount(),
				MatchCount:   counts[t.ID],
			}
		}))
		if err := scanErr("scan tournaments", tsrc)(); err != nil {
			return nil, err
		}

		pipeline.SortBy(rows, func(a, b types.TournamentSummary) int {
			return cmp.Or(
				cmp.Compare(b.MatchCount, a.MatchCount),
				cmp.Compare(a.TournamentID, b.TournamentID),
			)
		})
		return pipeline.Limit(rows, limit), nil
	})
}

type yearSurface struct {
	year    int
	surface model.Surface
}

// MatchesByYearAndSurface returns match counts and average duration per
// (year, surface), oldest year first.
func (e *Engine) MatchesByYearAndSurface(ctx context.Context) (types.Response[types.YearSurfaceCount], error) {
	return timed(ctx, e, ReportMatchesByYearAndSurface, nil, func(ctx context.Context) ([]types.YearSurfaceCount, error) {
		matches, errf, err := e.matchesWithSurface(ctx)
		if err != nil {
			return nil, err
		}
		groups := pipeline.GroupAggregate(matches,
			func(m surfaced) yearSurface { return yearSurface{m.Date.UTC().Year(), m.surface} },
			func(acc pipeline.Accumulator, m surfaced) pipeline.Accumulator {
				acc.Add(float64(m.Duration))
				return acc
			})
		if err := errf(); err != nil {
			return nil, err
		}

		rows := make([]types.YearSurfaceCount, 0, len(groups))
		for _, g := range groups {
			rows = append(rows, types.YearSurfaceCount{
				Year:            g.Key.year,
				Surface:         string(g.Key.surface),
				MatchCount:      g.Acc.Count,
				AverageDuration: pipeline.RoundInt(g.Acc.Avg()),
			})
		}
		return pipeline.SortBy(rows, func(a, b types.YearSurfaceCount) int {
			return cmp.Or(
				cmp.Compare(a.Year, b.Year),
				cmp.Compare(a.Surface, b.Surface),
			)
		}), nil
	})
}

// percent is wins/total as a percentage rounded to one decimal.
func percent(wins, total int) float64 {
	return pipeline.Round1(pipeline.Ratio(float64(wins)*100, float64(total)))
}
