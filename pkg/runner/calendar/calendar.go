// Package calendar provides the runner that prints a month grid.
package calendar

import (
	"context"
	"errors"
	"io"
	"time"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/printers"
)

// Calendar prints the month grid and, when Day is set, that day's entries.
type Calendar struct {
	Service *app.Service
	Month   entry.Date
	Day     *entry.Date
	Now     func() time.Time
	ShowID  bool
	Out     io.Writer
}

func (n *Calendar) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not show calendar, no journal")
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	month := n.Month
	if n.Day != nil {
		month = entry.NewDate(n.Day.Year(), n.Day.Month(), 1)
	}

	counts, err := n.Service.Month(ctx, month)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.NewLine()
	pp.Calendar(month, counts, entry.DateOf(now()))

	if n.Day == nil {
		return nil
	}
	day, err := n.Service.Day(ctx, *n.Day)
	if err != nil {
		return err
	}
	pp.TitleWithCount(n.Day.Format("Monday, January 2, 2006"), len(day))
	pp.Entries(day...)
	return nil
}
