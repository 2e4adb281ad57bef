package serve

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/reminder"
	"tableflip.dev/diary/pkg/store/storetest"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []reminder.Notification
}

func (r *recordingNotifier) Notify(_ context.Context, n reminder.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestServeFiresDueReminderAndStops(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	due := entry.New(entry.Note, "stretch", entry.DateOf(now))
	due.ID = "a"
	due.SetReminder(now.Add(-time.Minute))

	mem := storetest.NewMemory(due)
	j := journal.New(mem)
	defer j.Close()
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	notifier := &recordingNotifier{}
	r := &Serve{
		Service:     &app.Service{Journal: j},
		Persistence: mem,
		Scheduler: &reminder.Scheduler{
			Journal:  j,
			Notifier: notifier,
			Interval: time.Hour,
			Now:      func() time.Time { return now },
		},
		Out: &bytes.Buffer{},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Do(ctx) }()

	deadline := time.After(5 * time.Second)
	for notifier.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("reminder never fired")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Do: %v", err)
	}

	got, ok := j.Get("a")
	if !ok || got.Reminder != nil {
		t.Fatalf("expected reminder cleared, got %+v", got)
	}
}
