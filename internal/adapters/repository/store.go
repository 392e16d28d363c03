// Package repository defines the store contract shared by the dataset
// generator and the aggregation engine, and its in-memory and SQLite
// implementations.
package repository

import (
	"context"
	"fmt"

	"github.com/okian/courtstats/internal/domain/model"
)

// Writer bulk-loads the three collections. Each Insert call is one batch
// and is applied atomically.
type Writer interface {
	InsertPlayers(ctx context.Context, players []model.Player) error
	InsertTournaments(ctx context.Context, tournaments []model.Tournament) error
	InsertMatches(ctx context.Context, matches []model.Match) error

	// Truncate clears all three collections.
	Truncate(ctx context.Context) error
}

// Indexer manages secondary indexes.
type Indexer interface {
	// CreateIndex is idempotent. Unknown collections or fields return
	// ErrUnknownField.
	CreateIndex(ctx context.Context, spec IndexSpec) error
	// Indexes lists the created indexes ordered by name.
	Indexes(ctx context.Context) ([]IndexSpec, error)
}

// Reader streams stored records. A non-nil error from fn aborts the scan
// and is returned unchanged.
type Reader interface {
	ScanPlayers(ctx context.Context, fn func(model.Player) error) error
	ScanTournaments(ctx context.Context, fn func(model.Tournament) error) error
	ScanMatches(ctx context.Context, fn func(model.Match) error) error
	Count(ctx context.Context, c model.Collection) (int, error)
}

// ParticipantScanner is implemented by stores that can role-flatten
// matches and join them to their tournament's surface natively. Surface
// is empty for matches whose tournament does not exist.
type ParticipantScanner interface {
	ScanParticipants(ctx context.Context, fn func(model.Participant) error) error
}

// Store is the full capability surface.
type Store interface {
	Writer
	Indexer
	Reader
	Close() error
}

// Supported drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Open creates a store for driver. dsn is ignored by the memory driver.
func Open(ctx context.Context, driver, dsn string, opts ...SQLiteOption) (Store, error) {
	switch driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(ctx, dsn, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
}
