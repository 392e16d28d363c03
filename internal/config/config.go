// Package config defines process configuration and its loading.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Functions accept context.Context as the first parameter.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"context"

	"github.com/okian/courtstats/internal/generator"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// StoreDriver selects the store backend: memory or sqlite.
	StoreDriver string `koanf:"store_driver" validate:"oneof=memory sqlite"`

	// StoreDSN is the SQLite database path or DSN.
	StoreDSN string `koanf:"store_dsn" validate:"required_if=StoreDriver sqlite"`

	// Corpus shape.
	Players     int `koanf:"players" validate:"gte=0"`
	Tournaments int `koanf:"tournaments" validate:"gte=0"`
	Matches     int `koanf:"matches" validate:"gte=0"`

	// WorkerCount sets the number of match-generation workers.
	WorkerCount int `koanf:"worker_count" validate:"gte=1"`

	// BatchSize bounds every bulk insert.
	BatchSize int `koanf:"batch_size" validate:"gte=1"`

	// Seed makes generation reproducible; 0 picks a time-based seed.
	Seed int64 `koanf:"seed"`

	StartYear int `koanf:"start_year" validate:"gte=1900"`
	EndYear   int `koanf:"end_year" validate:"gtefield=StartYear"`

	// MetricsAddr serves /metrics when set, e.g. ":9090".
	MetricsAddr string `koanf:"metrics_addr" validate:"omitempty,hostname_port"`
}

// New creates a Config with defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:    "info",
		LogFormat:   "text",
		StoreDriver: "sqlite",
		StoreDSN:    "courtstats.db",
		Players:     generator.DefaultPlayers,
		Tournaments: generator.DefaultTournaments,
		Matches:     generator.DefaultMatches,
		WorkerCount: generator.DefaultWorkers(),
		BatchSize:   generator.DefaultBatchSize,
		StartYear:   generator.DefaultStartYear,
		EndYear:     generator.DefaultEndYear,
	}
}

// GeneratorConfig returns the corpus shape for the dataset generator.
func (c *Config) GeneratorConfig() generator.Config {
	return generator.Config{
		Players:     c.Players,
		Tournaments: c.Tournaments,
		Matches:     c.Matches,
		Workers:     c.WorkerCount,
		BatchSize:   c.BatchSize,
		Seed:        c.Seed,
		StartYear:   c.StartYear,
		EndYear:     c.EndYear,
	}
}
