package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	p, err := NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	return p
}

func testEntry(id string, kind entry.Kind, day int) *entry.Entry {
	e := entry.New(kind, "entry "+id, entry.NewDate(2024, 1, day))
	e.ID = id
	return e
}

func TestLocalLoadAllEmpty(t *testing.T) {
	p := newTestLocal(t)
	got, err := p.LoadAll(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}

func TestLocalCreateSortsByDateDescending(t *testing.T) {
	ctx := context.Background()
	p := newTestLocal(t)
	for _, e := range []*entry.Entry{
		testEntry("a", entry.Note, 3),
		testEntry("b", entry.Event, 5),
		testEntry("c", entry.Note, 2),
	} {
		if _, err := p.Create(ctx, e); err != nil {
			t.Fatalf("Create %s: %v", e.ID, err)
		}
	}

	got, err := p.LoadAll(ctx, "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	want := []string{"b", "a", "c"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
	}
}

func TestLocalReopenKeepsExpenseFields(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	p, err := NewLocal(dir, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	e := testEntry("x", entry.Expense, 4)
	e.Expense.Amount = decimal.NewNullDecimal(decimal.RequireFromString("12.50"))
	e.Expense.Vendor = "Cafe"
	e.Expense.LineItems = []entry.LineItem{{Name: "soup", Price: decimal.RequireFromString("7.5")}}
	if _, err := p.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	reopened, err := NewLocal(dir, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	got, err := reopened.LoadAll(ctx, "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}
	amount, ok := got[0].Amount()
	if !ok || !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected amount %v (%v)", amount, ok)
	}
	if got[0].Vendor() != "Cafe" {
		t.Fatalf("unexpected vendor %q", got[0].Vendor())
	}
	if len(got[0].Expense.LineItems) != 1 || got[0].Expense.LineItems[0].Name != "soup" {
		t.Fatalf("unexpected line items %+v", got[0].Expense.LineItems)
	}
}

func TestLocalUpdate(t *testing.T) {
	ctx := context.Background()
	p := newTestLocal(t)
	e := testEntry("a", entry.Note, 3)
	if _, err := p.Create(ctx, e); err != nil {
		t.Fatalf("Create: %v", err)
	}

	e.Promote()
	saved, err := p.Update(ctx, e)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if saved.Kind != entry.Event {
		t.Fatalf("expected event, got %s", saved.Kind)
	}

	if _, err := p.Update(ctx, testEntry("missing", entry.Note, 1)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalDelete(t *testing.T) {
	ctx := context.Background()
	p := newTestLocal(t)
	if _, err := p.Create(ctx, testEntry("a", entry.Note, 3)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := p.Delete(ctx, "a", ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := p.Delete(ctx, "a", ""); err != nil {
		t.Fatalf("second Delete should be a no-op, got %v", err)
	}
	got, err := p.LoadAll(ctx, "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no entries, got %d", len(got))
	}
}

func TestLocalSkipsMalformedElements(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	raw := `[{"id":"ok","date":"2024-01-02","kind":"note","description":"fine"},{"id":"bad","kind":"mystery","description":"?"}]`
	if err := os.WriteFile(filepath.Join(dir, entriesKey), []byte(raw), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p, err := NewLocal(dir, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}

	got, err := p.LoadAll(ctx, "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("expected only the valid entry, got %+v", got)
	}

	// A rewrite keeps the malformed element on disk.
	if _, err := p.Create(ctx, testEntry("new", entry.Note, 9)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, entriesKey))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), `"mystery"`) {
		t.Fatalf("malformed element dropped: %s", data)
	}
}

func TestLocalUnreadableFileTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, entriesKey), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p, err := NewLocal(dir, nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	got, err := p.LoadAll(context.Background(), "")
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty collection, got %d", len(got))
	}
	if _, err := os.Stat(filepath.Join(dir, entriesKey+".corrupt")); err != nil {
		t.Fatalf("expected backup file: %v", err)
	}
}

func TestLoadSelectsBackend(t *testing.T) {
	p, err := Load(context.Background(), fakeConfig{backend: BackendLocal, path: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := p.(*Local); !ok {
		t.Fatalf("expected *Local, got %T", p)
	}
	if _, err := Load(context.Background(), fakeConfig{backend: "ftp"}, nil); err == nil {
		t.Fatalf("expected unknown backend error")
	}
}

type fakeConfig struct {
	backend, path, dsn string
}

func (c fakeConfig) StoreBackend() string { return c.backend }
func (c fakeConfig) BasePath() string     { return c.path }
func (c fakeConfig) DatabaseDSN() string  { return c.dsn }
