package printers

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/view"
)

// Totals prints per-category expense totals as a table.
func (pp *PrettyPrint) Totals(totals []view.CategoryTotal, spent decimal.Decimal) {
	w := pp.out()
	if len(totals) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprint(w, " no expenses\n\n")
		return
	}
	tbl := uitable.New()
	tbl.MaxColWidth = 40
	tbl.AddRow("CATEGORY", "COUNT", "TOTAL")
	for _, t := range totals {
		tbl.AddRow(t.Category, t.Count, t.Total.StringFixed(2))
	}
	tbl.AddRow("", "", "")
	tbl.AddRow("all", "", spent.StringFixed(2))
	_, _ = fmt.Fprintln(w, tbl)
	_, _ = fmt.Fprintln(w)
}

// Counts prints how many entries of each kind there are.
func (pp *PrettyPrint) Counts(counts map[entry.Kind]int) {
	tbl := uitable.New()
	tbl.AddRow("KIND", "COUNT")
	for _, k := range entry.Kinds() {
		tbl.AddRow(k.String(), counts[k])
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = fmt.Fprintln(pp.out())
}
