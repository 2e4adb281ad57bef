package get

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/store/storetest"
	"tableflip.dev/diary/pkg/view"
)

func newService(t *testing.T) *app.Service {
	t.Helper()
	color.NoColor = true
	a := entry.New(entry.Note, "walk the dog", entry.NewDate(2024, 2, 1))
	a.ID = "a"
	b := entry.New(entry.Event, "concert", entry.NewDate(2024, 2, 3))
	b.ID = "b"
	j := journal.New(storetest.NewMemory(a, b))
	t.Cleanup(func() { _ = j.Close() })
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return &app.Service{Journal: j}
}

func TestGetFiltersByKind(t *testing.T) {
	var buf bytes.Buffer
	g := &Get{Service: newService(t), Query: view.Query{Kind: entry.Event}, Out: &buf}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "concert") || strings.Contains(out, "walk the dog") {
		t.Fatalf("unexpected %q", out)
	}
	if !strings.Contains(out, "1 entry") {
		t.Fatalf("expected count in %q", out)
	}
}

func TestGetOnDayJSON(t *testing.T) {
	var buf bytes.Buffer
	day := entry.NewDate(2024, 2, 1)
	g := &Get{Service: newService(t), On: &day, JSON: true, Out: &buf}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	var got []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if len(got) != 1 || got[0]["id"] != "a" {
		t.Fatalf("unexpected %v", got)
	}
}

func TestGetByID(t *testing.T) {
	var buf bytes.Buffer
	g := &Get{Service: newService(t), ID: "b", Out: &buf}
	if err := g.Do(context.Background()); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if !strings.Contains(buf.String(), "kind:     event") {
		t.Fatalf("unexpected %q", buf.String())
	}
}
