// Package storetest provides an in-memory store.Persistence for tests.
package storetest

import (
	"context"
	"sync"
	"time"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/store"
)

// Memory is a store.Persistence kept in a map. Set Fail to make every
// mutation return that error.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*entry.Entry
	order   []string
	Fail    error
	// Block, when non-nil, is received from before each mutation.
	Block chan struct{}

	Creates, Updates, Deletes int
}

func NewMemory(entries ...*entry.Entry) *Memory {
	m := &Memory{entries: make(map[string]*entry.Entry)}
	for _, e := range entries {
		m.entries[e.ID] = e.Clone()
		m.order = append(m.order, e.ID)
	}
	return m
}

// SetFail changes the injected failure.
func (m *Memory) SetFail(err error) {
	m.mu.Lock()
	m.Fail = err
	m.mu.Unlock()
}

// Stored returns a copy of the persisted entry with id.
func (m *Memory) Stored(id string) (*entry.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (m *Memory) Counts() (creates, updates, deletes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Creates, m.Updates, m.Deletes
}

func (m *Memory) LoadAll(_ context.Context, owner string) ([]*entry.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*entry.Entry, 0, len(m.order))
	for _, id := range m.order {
		e, ok := m.entries[id]
		if !ok {
			continue
		}
		if owner != "" && e.Owner != "" && e.Owner != owner {
			continue
		}
		out = append(out, e.Clone())
	}
	store.SortEntries(out)
	return out, nil
}

func (m *Memory) wait() {
	if m.Block != nil {
		<-m.Block
	}
}

func (m *Memory) Create(_ context.Context, e *entry.Entry) (*entry.Entry, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Creates++
	if m.Fail != nil {
		return nil, m.Fail
	}
	saved := e.Clone()
	if saved.Created.IsZero() {
		saved.Created = entry.Timestamp{Time: time.Now().UTC()}
	}
	if _, ok := m.entries[saved.ID]; !ok {
		m.order = append(m.order, saved.ID)
	}
	m.entries[saved.ID] = saved
	return saved.Clone(), nil
}

func (m *Memory) Update(_ context.Context, e *entry.Entry) (*entry.Entry, error) {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Updates++
	if m.Fail != nil {
		return nil, m.Fail
	}
	if _, ok := m.entries[e.ID]; !ok {
		return nil, store.ErrNotFound
	}
	saved := e.Clone()
	m.entries[saved.ID] = saved
	return saved.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, id, _ string) error {
	m.wait()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	if m.Fail != nil {
		return m.Fail
	}
	delete(m.entries, id)
	return nil
}

func (m *Memory) Watch(ctx context.Context) (<-chan store.Event, error) {
	ch := make(chan store.Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (m *Memory) Close() error { return nil }
