// Package report provides the runner that summarizes a time window.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/printers"
)

// Report prints counts per kind, expense totals per category and the
// entries dated between Since and Until.
type Report struct {
	Service *app.Service
	Since   time.Time
	Until   time.Time
	// Label names the window in the heading, e.g. "7d".
	Label string
	Out   io.Writer
}

func (n *Report) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not report, no journal")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	result, err := n.Service.Report(ctx, n.Since, n.Until)
	if err != nil {
		return err
	}

	since := result.Since.Local().Format("2006-01-02")
	until := result.Until.Local().Format("2006-01-02")
	_, _ = color.New(color.Bold).Fprintf(out, "Report · last %s (%s → %s)\n\n", n.Label, since, until)

	if result.Total == 0 {
		_, _ = fmt.Fprintln(out, "  No entries found in this window.")
		_, _ = fmt.Fprintln(out)
		return nil
	}

	pp := printers.PrettyPrint{Out: out}
	pp.Counts(result.Counts)
	pp.Totals(result.Totals, result.Spent)
	pp.TitleWithCount("Entries", result.Total)
	pp.Entries(result.Entries...)
	return nil
}
