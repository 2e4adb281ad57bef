package reminder

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/store/storetest"
)

type captureNotifier struct {
	mu   sync.Mutex
	sent []Notification
	err  error
}

func (c *captureNotifier) Notify(_ context.Context, n Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, n)
	return nil
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

var now = time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)

func withReminder(id string, at time.Time) *entry.Entry {
	e := entry.New(entry.Note, "call "+id, entry.DateOf(now))
	e.ID = id
	e.SetReminder(at)
	return e
}

func newJournal(t *testing.T, entries ...*entry.Entry) *journal.Journal {
	t.Helper()
	j := journal.New(storetest.NewMemory(entries...))
	t.Cleanup(func() { _ = j.Close() })
	if err := j.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return j
}

func TestPastReminderFiresOnceAndClears(t *testing.T) {
	j := newJournal(t, withReminder("a", now.Add(-time.Minute)))
	n := &captureNotifier{}
	s := &Scheduler{Journal: j, Notifier: n, Now: func() time.Time { return now }}

	if fired := s.Tick(context.Background()); fired != 1 {
		t.Fatalf("expected 1 fired, got %d", fired)
	}
	if fired := s.Tick(context.Background()); fired != 0 {
		t.Fatalf("expected no second firing, got %d", fired)
	}
	if n.count() != 1 {
		t.Fatalf("expected exactly one notification, got %d", n.count())
	}
	got, _ := j.Get("a")
	if got.Reminder != nil {
		t.Fatalf("reminder not cleared: %v", got.Reminder)
	}
}

func TestFutureReminderWaitsForItsTime(t *testing.T) {
	j := newJournal(t, withReminder("a", now.Add(30*time.Second)))
	n := &captureNotifier{}
	clock := now
	s := &Scheduler{Journal: j, Notifier: n, Now: func() time.Time { return clock }}

	if fired := s.Tick(context.Background()); fired != 0 {
		t.Fatalf("future reminder fired early")
	}
	clock = now.Add(DefaultInterval)
	if fired := s.Tick(context.Background()); fired != 1 {
		t.Fatalf("expected reminder within one interval, got %d", fired)
	}
}

func TestDeniedPermissionSuppressesDispatch(t *testing.T) {
	j := newJournal(t, withReminder("a", now.Add(-time.Minute)))
	n := &captureNotifier{}
	allowed := false
	s := &Scheduler{
		Journal:   j,
		Notifier:  n,
		Now:       func() time.Time { return now },
		Permitted: func() bool { return allowed },
	}

	if fired := s.Tick(context.Background()); fired != 0 || n.count() != 0 {
		t.Fatalf("dispatched without permission")
	}
	got, _ := j.Get("a")
	if got.Reminder == nil {
		t.Fatalf("reminder cleared without dispatch")
	}

	allowed = true
	if fired := s.Tick(context.Background()); fired != 1 {
		t.Fatalf("expected dispatch once permitted, got %d", fired)
	}
}

func TestFailedDispatchKeepsReminder(t *testing.T) {
	j := newJournal(t, withReminder("a", now.Add(-time.Minute)))
	n := &captureNotifier{err: errors.New("no notification daemon")}
	s := &Scheduler{Journal: j, Notifier: n, Now: func() time.Time { return now }}

	if fired := s.Tick(context.Background()); fired != 0 {
		t.Fatalf("expected nothing fired")
	}
	got, _ := j.Get("a")
	if got.Reminder == nil {
		t.Fatalf("failed dispatch cleared the reminder")
	}
}

func TestRunTicksImmediately(t *testing.T) {
	j := newJournal(t, withReminder("a", now.Add(-time.Minute)))
	n := &captureNotifier{}
	s := &Scheduler{Journal: j, Notifier: n, Now: func() time.Time { return now }, Interval: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	deadline := time.After(time.Second)
	for n.count() == 0 {
		select {
		case <-deadline:
			t.Fatalf("Run did not tick at start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	c := Console{Out: &buf}
	if err := c.Notify(context.Background(), NotificationFor(withReminder("a", now))); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if !strings.Contains(buf.String(), "Reminder: call a") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestMultiSucceedsWhenOneDelivers(t *testing.T) {
	ok := &captureNotifier{}
	bad := &captureNotifier{err: errors.New("nope")}
	if err := (Multi{bad, ok}).Notify(context.Background(), Notification{Title: "x"}); err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if err := (Multi{bad}).Notify(context.Background(), Notification{Title: "x"}); err == nil {
		t.Fatalf("expected failure when nothing delivered")
	}
}
