package printers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/glyph"
)

type PrettyPrint struct {
	ShowID bool
	// Width wraps descriptions; zero disables wrapping.
	Width int
	Out   io.Writer
}

var (
	spacing = strings.Repeat(" ", len("xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx  "))
)

// DisableColorUnlessTerminal turns color off when f is not a terminal.
func DisableColorUnlessTerminal(f *os.File) {
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		color.NoColor = true
	}
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out())
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)

	if pp.ShowID {
		_, _ = t.Fprint(pp.out(), spacing)
	}
	_, _ = t.Fprintln(pp.out(), title)
}

func (pp *PrettyPrint) TitleWithCount(title string, count int) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)
	w := pp.out()

	if pp.ShowID {
		_, _ = t.Fprint(w, spacing)
	}
	_, _ = t.Fprint(w, title)
	_, _ = c.Fprintf(w, " - %d", count)

	switch count {
	case 1:
		_, _ = c.Fprintln(w, " entry")
	default:
		_, _ = c.Fprintln(w, " entries")
	}
}

// Entries prints one line per entry: date, kind glyph, description, and the
// amount and vendor of expenses.
func (pp *PrettyPrint) Entries(entries ...*entry.Entry) {
	w := pp.out()
	if len(entries) == 0 {
		f := color.New(color.Faint, color.Italic)
		if pp.ShowID {
			_, _ = f.Fprint(w, spacing)
		}
		_, _ = f.Fprint(w, " none\n\n")
		return
	}

	t := color.New()
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)
	d := color.New(color.Faint)
	g := color.New(color.FgHiGreen)

	for _, e := range entries {
		if pp.ShowID {
			_, _ = y.Fprint(w, e.ID)
			if pad := len(spacing) - len(e.ID); pad > 0 {
				_, _ = y.Fprint(w, strings.Repeat(" ", pad))
			} else {
				_, _ = y.Fprint(w, "  ")
			}
		}
		_, _ = d.Fprintf(w, "%s ", e.Date)
		_, _ = t.Fprintf(w, "%s %s", glyph.For(e.Kind), pp.wrap(e.Description))
		if amount, ok := e.Amount(); ok {
			_, _ = g.Fprintf(w, "  %s", amount.StringFixed(2))
		}
		if vendor := e.Vendor(); vendor != "" {
			_, _ = d.Fprintf(w, " @ %s", vendor)
		}
		if e.Reminder != nil {
			_, _ = y.Fprintf(w, "  %s %s", glyph.Reminder, e.Reminder.Local().Format("Jan 2 15:04"))
		}
		if e.Receipt != "" {
			_, _ = d.Fprintf(w, "  %s", glyph.Receipt)
		}
		_, _ = t.Fprintln(w)
	}
	_, _ = t.Fprintln(w)
}

// Detail prints every field of a single entry.
func (pp *PrettyPrint) Detail(e *entry.Entry) {
	w := pp.out()
	b := color.New(color.Bold)
	f := color.New(color.Faint)

	_, _ = b.Fprintf(w, "%s %s\n", glyph.For(e.Kind), pp.wrap(e.Description))
	_, _ = f.Fprintf(w, "  id:       %s\n", e.ID)
	_, _ = f.Fprintf(w, "  kind:     %s\n", e.Kind)
	_, _ = f.Fprintf(w, "  date:     %s\n", e.Date)
	if amount, ok := e.Amount(); ok {
		_, _ = f.Fprintf(w, "  amount:   %s\n", amount.StringFixed(2))
	}
	if v := e.Vendor(); v != "" {
		_, _ = f.Fprintf(w, "  vendor:   %s\n", v)
	}
	if c := e.Category(); c != "" {
		_, _ = f.Fprintf(w, "  category: %s\n", c)
	}
	if e.Expense != nil {
		for _, item := range e.Expense.LineItems {
			_, _ = f.Fprintf(w, "    - %s  %s\n", item.Name, item.Price.StringFixed(2))
		}
	}
	if e.Reminder != nil {
		_, _ = f.Fprintf(w, "  reminder: %s\n", e.Reminder.Local().Format("2006-01-02 15:04"))
	}
	if e.Receipt != "" {
		_, _ = f.Fprintf(w, "  receipt:  %s\n", e.Receipt)
	}
}

func (pp *PrettyPrint) wrap(s string) string {
	if pp.Width <= 0 {
		return s
	}
	indent := len("2006-01-02 x ")
	if pp.ShowID {
		indent += len(spacing)
	}
	if pp.Width <= indent+10 {
		return s
	}
	wrapped := wordwrap.String(s, pp.Width-indent)
	return strings.ReplaceAll(wrapped, "\n", "\n"+strings.Repeat(" ", indent))
}
