package remove

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/store/storetest"
)

func newService(t *testing.T) (*app.Service, *storetest.Memory) {
	t.Helper()
	e := entry.New(entry.Note, "old", entry.NewDate(2024, 2, 2))
	e.ID = "a"
	mem := storetest.NewMemory(e)
	j := journal.New(mem)
	t.Cleanup(func() { _ = j.Close() })
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &app.Service{Journal: j}, mem
}

func TestRemoveDeclined(t *testing.T) {
	svc, _ := newService(t)
	asked := ""
	r := &Remove{ID: "a", Service: svc, Out: &bytes.Buffer{}, Confirm: func(d string) (bool, error) {
		asked = d
		return false, nil
	}}
	if err := r.Do(context.Background()); !errors.Is(err, ErrAborted) {
		t.Fatalf("expected ErrAborted, got %v", err)
	}
	if asked != "old" {
		t.Fatalf("confirm saw %q", asked)
	}
	if svc.Journal.Len() != 1 {
		t.Fatalf("entry should remain")
	}
}

func TestRemoveConfirmed(t *testing.T) {
	svc, mem := newService(t)
	r := &Remove{ID: "a", Service: svc, Out: &bytes.Buffer{}, Confirm: func(string) (bool, error) { return true, nil }}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	svc.Journal.Wait()
	if _, ok := mem.Stored("a"); ok {
		t.Fatalf("expected entry deleted from store")
	}
}

func TestRemoveUnknown(t *testing.T) {
	svc, _ := newService(t)
	r := &Remove{ID: "zzz", Service: svc, Out: &bytes.Buffer{}}
	if err := r.Do(context.Background()); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
