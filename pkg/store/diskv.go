package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/peterbourgon/diskv/v3"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
)

const (
	// entriesKey is the single diskv key holding the whole collection.
	entriesKey = "entries"
	tempDir    = ".tmp"
)

// Local keeps the whole collection as one JSON array. Every mutation
// re-serializes the collection.
type Local struct {
	mu       sync.Mutex
	d        *diskv.Diskv
	basePath string
	log      logging.Logger
}

// NewLocal opens (creating if needed) a local store rooted at basePath.
func NewLocal(basePath string, log logging.Logger) (*Local, error) {
	if basePath == "" {
		return nil, errors.New("store: base path unknown")
	}
	if log == nil {
		log = logging.Nop()
	}
	if err := os.MkdirAll(filepath.Join(basePath, tempDir), 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}
	return &Local{
		d: diskv.New(diskv.Options{
			BasePath: basePath,
			TempDir:  filepath.Join(basePath, tempDir),
			// No cache: another process may rewrite the file.
			CacheSizeMax: 0,
		}),
		basePath: basePath,
		log:      log.With("store", "local"),
	}, nil
}

// collection is the decoded file plus the raw elements that failed to
// decode, kept so a rewrite does not destroy them.
type collection struct {
	entries   []*entry.Entry
	malformed []json.RawMessage
}

func (p *Local) read(ctx context.Context) (*collection, error) {
	c := &collection{}
	if !p.d.Has(entriesKey) {
		return c, nil
	}
	val, err := p.d.Read(entriesKey)
	if err != nil {
		return nil, backendErr("read", err)
	}
	if len(val) == 0 {
		return c, nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(val, &raw); err != nil {
		// The whole file is unreadable; treat it as empty rather than fail
		// the load, but keep it aside so nothing is lost.
		p.log.Warn(ctx, "discarding unreadable entries file", "err", err)
		backup := filepath.Join(p.basePath, entriesKey+".corrupt")
		_ = os.WriteFile(backup, val, 0o644)
		return c, nil
	}
	for i, item := range raw {
		e := &entry.Entry{}
		if err := json.Unmarshal(item, e); err != nil {
			p.log.Warn(ctx, "skipping malformed entry", "index", i, "err", err)
			c.malformed = append(c.malformed, item)
			continue
		}
		c.entries = append(c.entries, e)
	}
	SortEntries(c.entries)
	return c, nil
}

func (p *Local) write(c *collection) error {
	SortEntries(c.entries)
	raw := make([]json.RawMessage, 0, len(c.entries)+len(c.malformed))
	for _, e := range c.entries {
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("store: encode %s: %w", e.ID, err)
		}
		raw = append(raw, b)
	}
	raw = append(raw, c.malformed...)
	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := p.d.Write(entriesKey, data); err != nil {
		return backendErr("write", err)
	}
	return nil
}

func (p *Local) LoadAll(ctx context.Context, _ string) ([]*entry.Entry, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.read(ctx)
	if err != nil {
		return nil, err
	}
	return c.entries, nil
}

func (p *Local) Create(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if e == nil || e.ID == "" {
		return nil, errors.New("store: entry id required")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.read(ctx)
	if err != nil {
		return nil, err
	}
	saved := e.Clone()
	replaced := false
	for i, existing := range c.entries {
		if existing.ID == e.ID {
			c.entries[i] = saved
			replaced = true
			break
		}
	}
	if !replaced {
		c.entries = append(c.entries, saved)
	}
	if err := p.write(c); err != nil {
		return nil, err
	}
	return saved.Clone(), nil
}

func (p *Local) Update(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if e == nil {
		return nil, ErrNotFound
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.read(ctx)
	if err != nil {
		return nil, err
	}
	for i, existing := range c.entries {
		if existing.ID != e.ID {
			continue
		}
		saved := e.Clone()
		if saved.Created.IsZero() {
			saved.Created = existing.Created
		}
		c.entries[i] = saved
		if err := p.write(c); err != nil {
			return nil, err
		}
		return saved.Clone(), nil
	}
	return nil, ErrNotFound
}

func (p *Local) Delete(ctx context.Context, id, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, err := p.read(ctx)
	if err != nil {
		return err
	}
	kept := c.entries[:0]
	found := false
	for _, e := range c.entries {
		if e.ID == id {
			found = true
			continue
		}
		kept = append(kept, e)
	}
	if !found {
		return nil
	}
	c.entries = kept
	return p.write(c)
}

func (p *Local) Close() error {
	return nil
}
