// Package export renders the selected entries as CSV or as an editable
// HTML table.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

// ErrNothingToExport is returned for an empty selection.
var ErrNothingToExport = errors.New("export: no entries to export")

type Format string

const (
	CSV  Format = "csv"
	HTML Format = "html"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case CSV, HTML:
		return f, nil
	case "htm":
		return HTML, nil
	default:
		return "", fmt.Errorf("export: unknown format %q", raw)
	}
}

// Filename is the default download name for f.
func (f Format) Filename() string {
	return "diary_export." + string(f)
}

// Write renders entries in format f.
func Write(w io.Writer, f Format, entries []*entry.Entry, exportedAt time.Time) error {
	if len(entries) == 0 {
		return ErrNothingToExport
	}
	switch f {
	case CSV:
		return writeCSV(w, entries)
	case HTML:
		return writeHTML(w, entries, exportedAt)
	default:
		return fmt.Errorf("export: unknown format %q", f)
	}
}

// row is the flattened text of one entry, shared by both formats.
type row struct {
	ID          string
	Date        string
	Kind        string
	Description string
	Amount      string
	Vendor      string
	Category    string
	Reminder    string
	Items       string
}

var header = []string{"id", "date", "kind", "description", "amount", "vendor", "category", "reminder", "items"}

func toRow(e *entry.Entry, reminderLayout string) row {
	r := row{
		ID:          e.ID,
		Date:        e.Date.String(),
		Kind:        e.Kind.String(),
		Description: e.Description,
		Vendor:      e.Vendor(),
		Category:    e.Category(),
	}
	if amount, ok := e.Amount(); ok {
		r.Amount = amount.StringFixed(2)
	}
	if e.Reminder != nil {
		r.Reminder = e.Reminder.UTC().Format(reminderLayout)
	}
	if e.Expense != nil && len(e.Expense.LineItems) > 0 {
		items := make([]string, 0, len(e.Expense.LineItems))
		for _, li := range e.Expense.LineItems {
			items = append(items, fmt.Sprintf("%s (%s)", li.Name, li.Price.StringFixed(2)))
		}
		r.Items = strings.Join(items, "; ")
	}
	return r
}

func (r row) fields() []string {
	return []string{r.ID, r.Date, r.Kind, r.Description, r.Amount, r.Vendor, r.Category, r.Reminder, r.Items}
}
