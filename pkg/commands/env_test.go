package commands

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/store/storetest"
)

func TestFinishReportsFailedWrites(t *testing.T) {
	boom := errors.New("disk full")
	mem := storetest.NewMemory()
	mem.SetFail(boom)

	var stderr bytes.Buffer
	e := &env{Persistence: mem}
	e.Journal = journal.New(mem, journal.WithErrorHandler(e.writeFailed(&stderr)))
	if _, err := e.Journal.Add(entry.New(entry.Note, "lost", entry.NewDate(2024, 1, 2))); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := e.finish(nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected the failed write, got %v", err)
	}
	var we *journal.WriteError
	if !errors.As(err, &we) {
		t.Fatalf("expected a WriteError, got %T", err)
	}
	if !strings.Contains(stderr.String(), "could not save") {
		t.Fatalf("failure not printed: %q", stderr.String())
	}
}

func TestFinishPrefersCommandError(t *testing.T) {
	mem := storetest.NewMemory()
	e := &env{Persistence: mem, Journal: journal.New(mem)}
	want := errors.New("bad input")
	if err := e.finish(want); !errors.Is(err, want) {
		t.Fatalf("expected command error, got %v", err)
	}
}

func TestFinishCleanRun(t *testing.T) {
	mem := storetest.NewMemory()
	e := &env{Persistence: mem}
	e.Journal = journal.New(mem, journal.WithErrorHandler(e.writeFailed(&bytes.Buffer{})))
	added, err := e.Journal.Add(entry.New(entry.Note, "kept", entry.NewDate(2024, 1, 2)))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := e.finish(nil); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if _, ok := mem.Stored(added.ID); !ok {
		t.Fatalf("entry not persisted")
	}
}
