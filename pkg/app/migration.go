package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/store"
)

// MigrationResult counts what an import did.
type MigrationResult struct {
	Imported int
	Skipped  int
	Invalid  int
}

// MigrateFrom copies every entry of src into the journal, taking ownership
// for the journal's owner. Entries whose id already exists are skipped, so
// running a migration twice is harmless.
func (s *Service) MigrateFrom(ctx context.Context, src store.Persistence, srcOwner string) (MigrationResult, error) {
	if err := s.ready(); err != nil {
		return MigrationResult{}, err
	}
	if src == nil {
		return MigrationResult{}, errors.New("app: no migration source")
	}
	entries, err := src.LoadAll(ctx, srcOwner)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("app: load migration source: %w", err)
	}
	return s.importEntries(ctx, entries)
}

// Import reads a JSON array of entries, either this tool's own format or a
// web client dump, and adds the ones not yet present.
func (s *Service) Import(ctx context.Context, r io.Reader) (MigrationResult, error) {
	if err := s.ready(); err != nil {
		return MigrationResult{}, err
	}
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return MigrationResult{}, fmt.Errorf("app: decode import: %w", err)
	}
	var (
		entries []*entry.Entry
		invalid int
	)
	for i, item := range raw {
		e := &entry.Entry{}
		if err := json.Unmarshal(item, e); err != nil {
			s.log().Warn(ctx, "skipping malformed import element", "index", i, "err", err)
			invalid++
			continue
		}
		entries = append(entries, e)
	}
	result, err := s.importEntries(ctx, entries)
	result.Invalid += invalid
	return result, err
}

func (s *Service) importEntries(ctx context.Context, entries []*entry.Entry) (MigrationResult, error) {
	var result MigrationResult
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if e.ID != "" {
			if _, exists := s.Journal.Get(e.ID); exists {
				result.Skipped++
				continue
			}
		}
		cp := e.Clone()
		cp.Owner = s.Journal.Owner()
		if _, err := s.Journal.Add(cp); err != nil {
			s.log().Warn(ctx, "skipping invalid entry", "id", e.ID, "err", err)
			result.Invalid++
			continue
		}
		result.Imported++
	}
	return result, nil
}
