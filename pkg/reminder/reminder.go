// Package reminder fires one notification per elapsed entry reminder by
// polling the journal on a fixed interval.
package reminder

import (
	"context"
	"time"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/logging"
)

// DefaultInterval is the scan period used when Scheduler.Interval is zero.
const DefaultInterval = time.Minute

// Notification is what a Notifier shows for one due reminder.
type Notification struct {
	EntryID string
	Title   string
	Body    string
	At      time.Time
}

// Notifier delivers notifications locally.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Journal is the slice of journal.Journal the scheduler needs.
type Journal interface {
	List() []*entry.Entry
	Modify(id string, fn func(*entry.Entry) error) (*entry.Entry, error)
}

// Scheduler checks the current time against every stored reminder once per
// tick. There are no per-entry timers, so past-due reminders are fired by
// the first permitted tick that observes them.
type Scheduler struct {
	Journal  Journal
	Notifier Notifier
	// Permitted reports whether notifications may be shown. Nil means yes.
	Permitted func() bool
	Interval  time.Duration
	Now       func() time.Time
	Log       logging.Logger
}

func (s *Scheduler) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Scheduler) log() logging.Logger {
	if s.Log == nil {
		return logging.Nop()
	}
	return s.Log
}

// NotificationFor builds the notification shown for e.
func NotificationFor(e *entry.Entry) Notification {
	n := Notification{
		EntryID: e.ID,
		Title:   "Reminder: " + e.Description,
		Body:    e.Description,
	}
	if e.Reminder != nil {
		n.At = e.Reminder.Time
	}
	switch e.Kind {
	case entry.Expense:
		if amount, ok := e.Amount(); ok {
			n.Body = e.Description + " (" + amount.StringFixed(2) + ")"
		}
		if v := e.Vendor(); v != "" {
			n.Body += " at " + v
		}
	case entry.Event:
		n.Body = e.Description + " on " + e.Date.String()
	case entry.Note:
	}
	return n
}

// Tick scans the journal once and returns how many reminders fired.
func (s *Scheduler) Tick(ctx context.Context) int {
	if s.Permitted != nil && !s.Permitted() {
		s.log().Debug(ctx, "notifications not permitted, skipping dispatch")
		return 0
	}
	now := s.now()
	fired := 0
	for _, e := range s.Journal.List() {
		if !e.ReminderDue(now) {
			continue
		}
		if err := s.Notifier.Notify(ctx, NotificationFor(e)); err != nil {
			s.log().Warn(ctx, "reminder dispatch failed", "id", e.ID, "err", err)
			continue
		}
		_, err := s.Journal.Modify(e.ID, func(m *entry.Entry) error {
			m.ClearReminder()
			return nil
		})
		if err != nil {
			s.log().Warn(ctx, "clearing reminder", "id", e.ID, "err", err)
			continue
		}
		fired++
	}
	return fired
}

// Run ticks immediately and then every Interval until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	s.Tick(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}
