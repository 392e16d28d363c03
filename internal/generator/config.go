package generator

import (
	"fmt"
	"runtime"
	"time"
)

// Default corpus shape.
const (
	DefaultPlayers     = 10_000
	DefaultTournaments = 1_000
	DefaultMatches     = 100_000
	DefaultBatchSize   = 1_000
	DefaultStartYear   = 2019
	DefaultEndYear     = 2024
)

// Config sizes a generation run.
type Config struct {
	Players     int
	Tournaments int
	Matches     int
	// Workers is the number of concurrent match writers.
	Workers   int
	BatchSize int
	// Seed drives every PRNG of the run. Zero picks a time-based seed.
	Seed      int64
	StartYear int
	EndYear   int
}

// DefaultWorkers leaves one CPU for the caller.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// DefaultConfig returns the full-scale corpus configuration.
func DefaultConfig() Config {
	return Config{
		Players:     DefaultPlayers,
		Tournaments: DefaultTournaments,
		Matches:     DefaultMatches,
		Workers:     DefaultWorkers(),
		BatchSize:   DefaultBatchSize,
		StartYear:   DefaultStartYear,
		EndYear:     DefaultEndYear,
	}
}

// Validate rejects configurations that cannot produce a consistent corpus.
func (c Config) Validate() error {
	switch {
	case c.Players < 0 || c.Tournaments < 0 || c.Matches < 0:
		return fmt.Errorf("%w: counts must not be negative", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be at least 1", ErrInvalidConfig)
	case c.BatchSize < 1:
		return fmt.Errorf("%w: batch size must be at least 1", ErrInvalidConfig)
	case c.EndYear < c.StartYear:
		return fmt.Errorf("%w: end year %d before start year %d", ErrInvalidConfig, c.EndYear, c.StartYear)
	case c.Matches > 0 && c.Players < 2:
		return fmt.Errorf("%w: matches need at least 2 players", ErrInvalidConfig)
	case c.Matches > 0 && c.Tournaments < 1:
		return fmt.Errorf("%w: matches need at least 1 tournament", ErrInvalidConfig)
	}
	return nil
}

func (c Config) seed() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}
