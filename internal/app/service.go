// Package service composes the store, the index coordinator, the dataset
// generator and the aggregation engine. It is constructed once at process
// start and passed by reference to whatever exposes the reports.
package service

import (
	"context"
	"fmt"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/analytics"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/internal/generator"
	"github.com/okian/courtstats/internal/indexes"
	"github.com/okian/courtstats/pkg/logger"
)

// Service owns the store handle and the components built on it.
type Service struct {
	store     repository.Store
	indexes   *indexes.Coordinator
	generator *generator.Generator
	engine    *analytics.Engine

	genConfig generator.Config
	logger    logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore sets the store. The service closes it on Close.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithGeneratorConfig sets the corpus shape used by Generate.
func WithGeneratorConfig(cfg generator.Config) Option {
	return func(s *Service) {
		s.genConfig = cfg
	}
}

// New constructs a Service. Without WithStore it runs on an in-memory store.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		genConfig: generator.DefaultConfig(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
	}

	s.indexes = indexes.New(s.store, indexes.WithLogger(s.logger.Named("indexes")))
	gen, err := generator.New(s.store, s.indexes, s.genConfig, generator.WithLogger(s.logger.Named("generator")))
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.generator = gen
	s.engine = analytics.New(s.store, analytics.WithLogger(s.logger.Named("analytics")))
	return s, nil
}

// Generate regenerates the whole corpus.
func (s *Service) Generate(ctx context.Context) (generator.Summary, error) {
	return s.generator.Run(ctx)
}

// EnsureIndexes creates the indexes the reports rely on.
func (s *Service) EnsureIndexes(ctx context.Context) (int, error) {
	return s.indexes.Ensure(ctx)
}

// Indexes lists the indexes present in the store.
func (s *Service) Indexes(ctx context.Context) ([]repository.IndexSpec, error) {
	return s.store.Indexes(ctx)
}

// Truncate clears every collection.
func (s *Service) Truncate(ctx context.Context) error {
	if err := s.store.Truncate(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "store truncated")
	return nil
}

// Counts returns the number of records per collection.
func (s *Service) Counts(ctx context.Context) (map[model.Collection]int, error) {
	out := make(map[model.Collection]int, len(model.Collections()))
	for _, c := range model.Collections() {
		n, err := s.store.Count(ctx, c)
		if err != nil {
			return nil, err
		}
		out[c] = n
	}
	return out, nil
}

// Engine exposes the reports.
func (s *Service) Engine() *analytics.Engine {
	return s.engine
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}
