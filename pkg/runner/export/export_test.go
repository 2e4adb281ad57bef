package export

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	diaryexport "tableflip.dev/diary/pkg/export"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/store/storetest"
	"tableflip.dev/diary/pkg/view"
)

func newService(t *testing.T, seed ...*entry.Entry) *app.Service {
	t.Helper()
	j := journal.New(storetest.NewMemory(seed...))
	t.Cleanup(func() { _ = j.Close() })
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &app.Service{Journal: j}
}

func note(id, desc string) *entry.Entry {
	e := entry.New(entry.Note, desc, entry.NewDate(2024, 5, 1))
	e.ID = id
	return e
}

func TestExportToFile(t *testing.T) {
	svc := newService(t, note("a", "first"), note("b", "second"))
	path := filepath.Join(t.TempDir(), "out.csv")

	var out bytes.Buffer
	r := &Export{Service: svc, Format: diaryexport.CSV, Path: path, Out: &out,
		Now: func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(b), "first") || !strings.Contains(string(b), "second") {
		t.Fatalf("unexpected export %q", b)
	}
	if !strings.Contains(out.String(), "exported 2 entries") {
		t.Fatalf("unexpected summary %q", out.String())
	}
}

func TestExportFilteredToStdout(t *testing.T) {
	svc := newService(t, note("a", "first"), note("b", "second"))
	var stdout bytes.Buffer
	r := &Export{Service: svc, Format: diaryexport.CSV, Path: "-", Stdout: &stdout, Query: view.Query{Term: "sec"}}
	if err := r.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if strings.Contains(stdout.String(), "first") || !strings.Contains(stdout.String(), "second") {
		t.Fatalf("unexpected export %q", stdout.String())
	}
}

func TestExportNothing(t *testing.T) {
	svc := newService(t)
	path := filepath.Join(t.TempDir(), "out.html")
	r := &Export{Service: svc, Format: diaryexport.HTML, Path: path}
	if err := r.Do(context.Background()); !errors.Is(err, diaryexport.ErrNothingToExport) {
		t.Fatalf("expected ErrNothingToExport, got %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be written")
	}
}
