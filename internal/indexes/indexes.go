// Package indexes ensures the secondary indexes the report workload joins
// and groups on exist before the generator writes any record.
package indexes

import (
	"context"
	"fmt"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// Required returns the fixed index set, in creation order.
func Required() []repository.IndexSpec {
	one := func(c model.Collection, field string, unique bool) repository.IndexSpec {
		return repository.IndexSpec{Collection: c, Fields: []string{field}, Unique: unique}
	}
	return []repository.IndexSpec{
		one(model.Players, "id", true),
		one(model.Players, "rank", true),
		one(model.Tournaments, "id", true),
		one(model.Tournaments, "surface", false),
		one(model.Matches, "id", true),
		one(model.Matches, "tournament_id", false),
		one(model.Matches, "player1_id", false),
		one(model.Matches, "player2_id", false),
		one(model.Matches, "winner_id", false),
		one(model.Matches, "date", false),
		{Collection: model.Matches, Fields: []string{"tournament_id", "date"}},
		{Collection: model.Matches, Fields: []string{"player1_id", "winner_id"}},
		{Collection: model.Matches, Fields: []string{"player2_id", "winner_id"}},
	}
}

// Coordinator creates the required indexes on a store.
type Coordinator struct {
	store repository.Indexer
	specs []repository.IndexSpec
	log   logger.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the coordinator logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSpecs replaces the required index set.
func WithSpecs(specs []repository.IndexSpec) Option {
	return func(c *Coordinator) {
		c.specs = specs
	}
}

// New creates a Coordinator for store.
func New(store repository.Indexer, opts ...Option) *Coordinator {
	c := &Coordinator{store: store, specs: Required(), log: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ensure creates every index in order and stops at the first failure. It
// returns how many indexes were ensured.
func (c *Coordinator) Ensure(ctx context.Context) (int, error) {
	for i, spec := range c.specs {
		if err := c.store.CreateIndex(ctx, spec); err != nil {
			metrics.RecordErrorByComponent("indexes", "create_index")
			return i, fmt.Errorf("ensure index %s: %w", spec, err)
		}
		metrics.RecordIndexEnsured()
		c.log.Debug(ctx, "index ensured", logger.String("index", spec.Name()))
	}
	c.log.Info(ctx, "indexes ready", logger.Int("count", len(c.specs)))
	return len(c.specs), nil
}
