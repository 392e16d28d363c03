// Package generator synthesizes a referentially consistent corpus of
// players, tournaments and matches and bulk-loads it into a store. Match
// generation, the dominant cost, is partitioned across a worker pool.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// IndexEnsurer creates the indexes the corpus needs before it is written.
type IndexEnsurer interface {
	Ensure(ctx context.Context) (int, error)
}

// Summary describes a finished generation run.
type Summary struct {
	Players     int           `json:"players"`
	Tournaments int           `json:"tournaments"`
	Matches     int           `json:"matches"`
	Workers     int           `json:"workers"`
	Duration    time.Duration `json:"duration"`
}

// Generator writes a synthetic corpus through a store Writer.
type Generator struct {
	store   repository.Writer
	indexes IndexEnsurer
	cfg     Config
	seed    int64
	log     logger.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the generator logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Generator) {
		if l != nil {
			g.log = l
		}
	}
}

// New validates cfg and returns a Generator. indexes may be nil when the
// caller manages indexes itself.
func New(store repository.Writer, indexes IndexEnsurer, cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{store: store, indexes: indexes, cfg: cfg, seed: cfg.seed(), log: logger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the validated configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Run regenerates the whole corpus: truncate, ensure indexes, then
// players, tournaments and matches. Batches already committed when a step
// fails stay in the store; the next run truncates them.
func (g *Generator) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	sum, err := g.run(ctx)
	sum.Duration = time.Since(start)
	if err != nil {
		metrics.RecordGenerationRun(metrics.StatusError, sum.Duration)
		metrics.RecordErrorByComponent("generator", errorType(err))
		g.log.Error(ctx, "generation failed", logger.Error(err), logger.Duration("took", sum.Duration))
		return sum, err
	}
	metrics.RecordGenerationRun(metrics.StatusOK, sum.Duration)
	g.log.Info(ctx, "generation complete",
		logger.Int("players", sum.Players),
		logger.Int("tournaments", sum.Tournaments),
		logger.Int("matches", sum.Matches),
		logger.Int("workers", sum.Workers),
		logger.Duration("took", sum.Duration),
	)
	return sum, nil
}

func (g *Generator) run(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := g.store.Truncate(ctx); err != nil {
		return sum, fmt.Errorf("truncate: %w", err)
	}
	if g.indexes != nil {
		if _, err := g.indexes.Ensure(ctx); err != nil {
			return sum, err
		}
	}

	players, err := g.GeneratePlayers(ctx, g.cfg.Players)
	if err != nil {
		return sum, err
	}
	sum.Players = len(players)

	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	tournaments, err := g.GenerateTournaments(ctx, g.cfg.Tournaments, ids)
	if err != nil {
		return sum, err
	}
	sum.Tournaments = len(tournaments)

	results, err := g.GenerateMatches(ctx, g.cfg.Matches, g.cfg.Workers, ids, tournaments)
	sum.Workers = len(results)
	for _, r := range results {
		sum.Matches += r.Written
	}
	return sum, err
}

// GeneratePlayers creates and writes count players.
func (g *Generator) GeneratePlayers(ctx context.Context, count int) ([]model.Player, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative player count %d", ErrInvalidConfig, count)
	}
	players := generatePlayers(newSource(g.seed, streamPlayers), count)
	if err := writeBatches(ctx, g.cfg.BatchSize, model.Players, players, g.store.InsertPlayers); err != nil {
		return nil, err
	}
	g.log.Info(ctx, "players written", logger.Int("count", len(players)))
	return players, nil
}

// GenerateTournaments creates and writes count tournaments with rosters
// sampled from playerIDs.
func (g *Generator) GenerateTournaments(ctx context.Context, count int, playerIDs []string) ([]model.Tournament, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative tournament count %d", ErrInvalidConfig, count)
	}
	tournaments := generateTournaments(newSource(g.seed, streamTournaments), count, playerIDs, g.cfg.StartYear, g.cfg.EndYear)
	if err := writeBatches(ctx, g.cfg.BatchSize, model.Tournaments, tournaments, g.store.InsertTournaments); err != nil {
		return nil, err
	}
	g.log.Info(ctx, "tournaments written", logger.Int("count", len(tournaments)))
	return tournaments, nil
}

// GenerateMatches fans count matches out to at most max(1, workers)
// workers and waits for all of them. The first worker failure cancels the others,
// which stop after their in-flight batch, and is returned as a
// *WorkerError.
func (g *Generator) GenerateMatches(ctx context.Context, count, workers int, playerIDs []string, tournaments []model.Tournament) ([]WorkerResult, error) {
	if count < 0 {
		return nil, fmt.Errorf("%w: negative match count %d", ErrInvalidConfig, count)
	}
	shards := partition(count, workers)
	if len(shards) == 0 {
		return nil, nil
	}
	if len(playerIDs) < 2 || len(tournaments) == 0 {
		return nil, fmt.Errorf("%w: %d players and %d tournaments cannot host matches", ErrInvalidConfig, len(playerIDs), len(tournaments))
	}

	tournamentIDs := make([]string, len(tournaments))
	calendar := make(map[string]Fixture, len(tournaments))
	for i, t := range tournaments {
		tournamentIDs[i] = t.ID
		calendar[t.ID] = Fixture{
			GrandSlam: t.Category == model.CategoryGrandSlam,
			Start:     t.StartDate,
			Days:      max(0, int(t.EndDate.Sub(t.StartDate).Hours()/24)),
		}
	}

	results := make([]WorkerResult, len(shards))
	eg, gctx := errgroup.WithContext(ctx)
	for w, n := range shards {
		task := WorkerTask{
			WorkerID:      w,
			TournamentIDs: tournamentIDs,
			PlayerIDs:     playerIDs,
			NumMatches:    n,
			BatchSize:     g.cfg.BatchSize,
			Calendar:      calendar,
		}
		eg.Go(func() error {
			res, err := runWorker(gctx, g.store, g.seed, task, g.log)
			results[w] = res
			if err != nil {
				return &WorkerError{WorkerID: w, Err: err}
			}
			return nil
		})
	}
	g.log.Info(ctx, "match workers started", logger.Int("workers", len(shards)), logger.Int("matches", count))

	if err := eg.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// writeBatches writes items in chunks of size through insert.
func writeBatches[T any](ctx context.Context, size int, c model.Collection, items []T, insert func(context.Context, []T) error) error {
	for lo := 0; lo < len(items); lo += size {
		hi := min(lo+size, len(items))
		start := time.Now()
		if err := insert(ctx, items[lo:hi]); err != nil {
			return fmt.Errorf("write %s batch at %d: %w", c, lo, err)
		}
		metrics.RecordBatch(string(c), hi-lo, time.Since(start))
	}
	return nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrWorkerFailed):
		return "worker_failed"
	case errors.Is(err, repository.ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
