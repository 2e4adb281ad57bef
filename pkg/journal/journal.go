// Package journal holds the in-memory entry collection and writes every
// mutation through to a store.Persistence in the background.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
	"tableflip.dev/diary/pkg/store"
)

var (
	// ErrNotFound is returned by Update for an unknown entry id.
	ErrNotFound = errors.New("journal: entry not found")
	// ErrClosed is reported for writes queued after Close.
	ErrClosed = errors.New("journal: closed")
)

// WriteError describes a background persistence write that failed. The
// optimistic mutation behind it has been reverted unless a later mutation
// of the same entry superseded it.
type WriteError struct {
	Op       string
	ID       string
	Reverted bool
	Err      error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("journal: %s %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opCreate:
		return "create"
	case opUpdate:
		return "update"
	default:
		return "delete"
	}
}

type op struct {
	kind  opKind
	entry *entry.Entry
	// prev is the copy to restore when the write fails.
	prev *entry.Entry
	rev  uint64
}

// Option configures a Journal.
type Option func(*Journal)

// WithOwner scopes the journal to a signed-in owner. New entries are stamped
// with it and persistence calls pass it along.
func WithOwner(owner string) Option {
	return func(j *Journal) { j.owner = owner }
}

// WithErrorHandler receives every failed background write.
func WithErrorHandler(fn func(error)) Option {
	return func(j *Journal) { j.onError = fn }
}

func WithLogger(log logging.Logger) Option {
	return func(j *Journal) { j.log = log }
}

// WithClock overrides the clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(j *Journal) { j.now = now }
}

// WithIDGenerator overrides the id source. Generated ids that collide with
// any id the journal has seen are re-rolled.
func WithIDGenerator(fn func() string) Option {
	return func(j *Journal) { j.newID = fn }
}

// Journal is the canonical in-memory collection. Reads always observe the
// latest mutation; persistence catches up on a single writer goroutine in
// mutation order.
type Journal struct {
	p       store.Persistence
	owner   string
	onError func(error)
	log     logging.Logger
	now     func() time.Time
	newID   func() string

	mu      sync.Mutex
	settled *sync.Cond
	entries []*entry.Entry
	seen    map[string]struct{}
	revs    map[string]uint64
	rev     uint64
	queue   []op
	pending int
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// New starts a journal over p. Call Load to rehydrate it and Close to flush
// queued writes.
func New(p store.Persistence, opts ...Option) *Journal {
	j := &Journal{
		p:     p,
		now:   time.Now,
		newID: uuid.NewString,
		seen:  make(map[string]struct{}),
		revs:  make(map[string]uint64),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.log == nil {
		j.log = logging.Nop()
	}
	j.log = j.log.With("component", "journal")
	j.settled = sync.NewCond(&j.mu)
	go j.writer()
	return j
}

func (j *Journal) Owner() string {
	return j.owner
}

// Load replaces the collection with the persisted entries.
func (j *Journal) Load(ctx context.Context) error {
	loaded, err := j.p.LoadAll(ctx, j.owner)
	if err != nil {
		return err
	}
	store.SortEntries(loaded)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = loaded
	for _, e := range loaded {
		j.seen[e.ID] = struct{}{}
	}
	return nil
}

// Reload waits for queued writes to settle, then loads again. It is used
// when another process changed the store.
func (j *Journal) Reload(ctx context.Context) error {
	j.Wait()
	return j.Load(ctx)
}

// Add assigns an id if e has none, inserts e and enqueues its creation. The
// returned copy is what the journal now holds.
func (j *Journal) Add(e *entry.Entry) (*entry.Entry, error) {
	if e == nil {
		return nil, entry.ErrDescriptionRequired
	}
	added := e.Clone()
	added.Normalize()
	if err := added.Validate(); err != nil {
		return nil, err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if added.ID == "" {
		added.ID = j.freshID()
	}
	if added.Owner == "" {
		added.Owner = j.owner
	}
	if added.Created.IsZero() {
		added.Created = entry.Timestamp{Time: j.now().UTC()}
	}
	j.seen[added.ID] = struct{}{}
	j.entries = append(j.entries, added)
	store.SortEntries(j.entries)
	j.enqueue(op{kind: opCreate, entry: added.Clone(), rev: j.bump(added.ID)})
	return added.Clone(), nil
}

// Update replaces the entry with the same id.
func (j *Journal) Update(e *entry.Entry) error {
	if e == nil {
		return ErrNotFound
	}
	updated := e.Clone()
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexOf(updated.ID)
	if i < 0 {
		return ErrNotFound
	}
	j.replaceLocked(i, updated)
	return nil
}

// Modify applies fn to a copy of the entry with id and stores the result.
// The journal stays locked from the read to the write, so fn must not call
// back into the journal. An error from fn leaves the entry unchanged.
func (j *Journal) Modify(id string, fn func(*entry.Entry) error) (*entry.Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexOf(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	updated := j.entries[i].Clone()
	if err := fn(updated); err != nil {
		return nil, err
	}
	updated.ID = id
	updated.Normalize()
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	j.replaceLocked(i, updated)
	return updated.Clone(), nil
}

func (j *Journal) replaceLocked(i int, updated *entry.Entry) {
	prev := j.entries[i]
	if updated.Owner == "" {
		updated.Owner = prev.Owner
	}
	if updated.Created.IsZero() {
		updated.Created = prev.Created
	}
	j.entries[i] = updated
	store.SortEntries(j.entries)
	j.enqueue(op{kind: opUpdate, entry: updated.Clone(), prev: prev, rev: j.bump(updated.ID)})
}

// Remove deletes the entry with id. Removing an unknown id is a no-op.
func (j *Journal) Remove(id string) {
	j.mu.Lock()
	defer j.mu.Unlock()

	i := j.indexOf(id)
	if i < 0 {
		return
	}
	prev := j.entries[i]
	j.entries = append(j.entries[:i], j.entries[i+1:]...)
	j.enqueue(op{kind: opDelete, entry: prev.Clone(), prev: prev, rev: j.bump(id)})
}

// List returns copies of every entry, newest date first.
func (j *Journal) List() []*entry.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*entry.Entry, 0, len(j.entries))
	for _, e := range j.entries {
		out = append(out, e.Clone())
	}
	return out
}

func (j *Journal) Get(id string) (*entry.Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if i := j.indexOf(id); i >= 0 {
		return j.entries[i].Clone(), true
	}
	return nil, false
}

func (j *Journal) Len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.entries)
}

// Wait blocks until every queued write has been attempted.
func (j *Journal) Wait() {
	j.mu.Lock()
	defer j.mu.Unlock()
	for j.pending > 0 {
		j.settled.Wait()
	}
}

// Close flushes queued writes and stops the writer. The Persistence is not
// closed.
func (j *Journal) Close() error {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		j.signal()
	}
	j.mu.Unlock()
	<-j.done
	return nil
}

func (j *Journal) freshID() string {
	for {
		id := j.newID()
		if _, taken := j.seen[id]; !taken && id != "" {
			return id
		}
	}
}

func (j *Journal) indexOf(id string) int {
	for i, e := range j.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (j *Journal) bump(id string) uint64 {
	j.rev++
	j.revs[id] = j.rev
	return j.rev
}

// enqueue must be called with mu held.
func (j *Journal) enqueue(o op) {
	if j.closed {
		go j.report(&WriteError{Op: o.kind.String(), ID: o.entry.ID, Err: ErrClosed})
		return
	}
	j.queue = append(j.queue, o)
	j.pending++
	j.signal()
}

func (j *Journal) signal() {
	select {
	case j.wake <- struct{}{}:
	default:
	}
}

func (j *Journal) report(err error) {
	j.log.Error(context.Background(), "persistence write failed", "err", err)
	if j.onError != nil {
		j.onError(err)
	}
}

func (j *Journal) writer() {
	defer close(j.done)
	for {
		j.mu.Lock()
		if len(j.queue) == 0 {
			closed := j.closed
			j.mu.Unlock()
			if closed {
				return
			}
			<-j.wake
			continue
		}
		next := j.queue[0]
		j.queue = j.queue[1:]
		j.mu.Unlock()

		saved, err := j.apply(next)

		j.mu.Lock()
		if err != nil {
			reverted := j.revert(next)
			j.mu.Unlock()
			j.report(&WriteError{Op: next.kind.String(), ID: next.entry.ID, Reverted: reverted, Err: err})
			j.mu.Lock()
		} else if saved != nil {
			j.reconcile(next, saved)
		}
		j.pending--
		if j.pending == 0 {
			j.settled.Broadcast()
		}
		j.mu.Unlock()
	}
}

func (j *Journal) apply(o op) (*entry.Entry, error) {
	ctx := context.Background()
	switch o.kind {
	case opCreate:
		return j.p.Create(ctx, o.entry)
	case opUpdate:
		return j.p.Update(ctx, o.entry)
	default:
		return nil, j.p.Delete(ctx, o.entry.ID, o.entry.Owner)
	}
}

// reconcile swaps in the authoritative copy unless the entry changed since
// the write was queued. Called with mu held.
func (j *Journal) reconcile(o op, saved *entry.Entry) {
	if j.revs[o.entry.ID] != o.rev {
		return
	}
	i := j.indexOf(saved.ID)
	if i < 0 {
		return
	}
	j.entries[i] = saved.Clone()
	store.SortEntries(j.entries)
}

// revert undoes a failed optimistic mutation. Called with mu held.
func (j *Journal) revert(o op) bool {
	if j.revs[o.entry.ID] != o.rev {
		return false
	}
	switch o.kind {
	case opCreate:
		if i := j.indexOf(o.entry.ID); i >= 0 {
			j.entries = append(j.entries[:i], j.entries[i+1:]...)
		}
	case opUpdate:
		if i := j.indexOf(o.entry.ID); i >= 0 {
			j.entries[i] = o.prev
		}
	case opDelete:
		if j.indexOf(o.entry.ID) < 0 {
			j.entries = append(j.entries, o.prev)
		}
	}
	store.SortEntries(j.entries)
	return true
}
