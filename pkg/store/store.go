// Package store persists journal entries either in a local diskv file or in
// a hosted Postgres database scoped to the signed-in owner.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
)

var (
	// ErrNotFound is returned by Update for an unknown entry id.
	ErrNotFound = errors.New("store: entry not found")
	// ErrUnauthorized is returned by owner-scoped backends when no owner is
	// signed in.
	ErrUnauthorized = errors.New("store: not signed in")
	// ErrBackend wraps every disk, driver or network failure. Nothing is
	// retried automatically.
	ErrBackend = errors.New("store: backend failure")
)

// Persistence defines the persistence contract for journal entries.
type Persistence interface {
	// LoadAll returns the owner's entries sorted by date descending.
	// Malformed records are skipped and logged.
	LoadAll(ctx context.Context, owner string) ([]*entry.Entry, error)
	// Create stores a new entry and returns the authoritative copy.
	Create(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	// Update replaces an existing entry and returns the authoritative copy.
	Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error)
	// Delete removes an entry. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id, owner string) error
	// Watch streams change notifications made outside this process.
	Watch(ctx context.Context) (<-chan Event, error)
	Close() error
}

// Config selects and configures a Persistence strategy.
type Config interface {
	StoreBackend() string
	BasePath() string
	DatabaseDSN() string
}

const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

// Load creates the Persistence named by cfg.
func Load(ctx context.Context, cfg Config, log logging.Logger) (Persistence, error) {
	if cfg == nil {
		return nil, errors.New("store: no config")
	}
	if log == nil {
		log = logging.Nop()
	}
	switch b := cfg.StoreBackend(); b {
	case "", BackendLocal:
		return NewLocal(cfg.BasePath(), log)
	case BackendPostgres:
		return OpenPostgres(ctx, cfg.DatabaseDSN(), log)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", b)
	}
}

func backendErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrBackend, op, err)
}

// SortEntries orders entries by date descending. The sort is stable so
// entries sharing a date keep their relative order.
func SortEntries(entries []*entry.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		left := entries[i]
		right := entries[j]
		if left == nil || right == nil {
			return left != nil
		}
		return left.Date.After(right.Date.Time)
	})
}
