// Package remind provides the runner that sets and clears reminders.
package remind

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/printers"
)

// Remind schedules a reminder at At, or clears it when Clear is set.
type Remind struct {
	ID      string
	At      time.Time
	Clear   bool
	Service *app.Service
	Out     io.Writer
}

func (n *Remind) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not remind, no journal")
	}
	var (
		e   *entry.Entry
		err error
	)
	if n.Clear {
		e, err = n.Service.ClearReminder(ctx, n.ID)
	} else {
		if n.At.IsZero() {
			return errors.New("a reminder time is required")
		}
		e, err = n.Service.SetReminder(ctx, n.ID, n.At)
	}
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.Entries(e)
	return nil
}
