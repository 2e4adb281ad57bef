// Package view derives display subsets of the journal. Nothing here mutates
// or persists entries.
package view

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
)

// All matches every kind.
const All entry.Kind = ""

// Query selects entries by free-text term and kind.
type Query struct {
	Term string
	Kind entry.Kind
}

// ParseKindFilter accepts "all" or any spelling entry.ParseKind accepts.
func ParseKindFilter(raw string) (entry.Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "*":
		return All, nil
	}
	return entry.ParseKind(raw)
}

// Matches reports whether e satisfies q.
func (q Query) Matches(e *entry.Entry) bool {
	if q.Kind != All && e.Kind != q.Kind {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Term))
	if term == "" {
		return true
	}
	for _, field := range []string{e.Description, e.Vendor(), e.Category()} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// Filter returns the entries matching q in their original order.
func Filter(entries []*entry.Entry, q Query) []*entry.Entry {
	out := make([]*entry.Entry, 0, len(entries))
	for _, e := range entries {
		if e != nil && q.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// OnDay returns the entries dated on day.
func OnDay(entries []*entry.Entry, day entry.Date) []*entry.Entry {
	var out []*entry.Entry
	for _, e := range entries {
		if e != nil && e.Date.SameDay(day) {
			out = append(out, e)
		}
	}
	return out
}

// MonthCounts returns the number of entries per day of month for the month
// containing month.
func MonthCounts(entries []*entry.Entry, month entry.Date) map[int]int {
	counts := make(map[int]int)
	for _, e := range entries {
		if e != nil && e.Date.SameMonth(month) {
			counts[e.Date.Day()]++
		}
	}
	return counts
}

// CategoryTotal is the summed amount of expenses sharing a category.
type CategoryTotal struct {
	Category string
	Count    int
	Total    decimal.Decimal
}

// Uncategorized labels expenses without a category.
const Uncategorized = "uncategorized"

// Totals sums expense amounts per category, largest total first.
func Totals(entries []*entry.Entry) []CategoryTotal {
	byCategory := make(map[string]*CategoryTotal)
	for _, e := range entries {
		if e == nil || e.Kind != entry.Expense {
			continue
		}
		amount, ok := e.Amount()
		if !ok {
			continue
		}
		name := strings.TrimSpace(e.Category())
		if name == "" {
			name = Uncategorized
		}
		key := strings.ToLower(name)
		t, ok := byCategory[key]
		if !ok {
			t = &CategoryTotal{Category: name}
			byCategory[key] = t
		}
		t.Count++
		t.Total = t.Total.Add(amount)
	}
	out := make([]CategoryTotal, 0, len(byCategory))
	for _, t := range byCategory {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Total.Cmp(out[j].Total); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// Sum is the total of every expense amount.
func Sum(entries []*entry.Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if e == nil {
			continue
		}
		if amount, ok := e.Amount(); ok {
			total = total.Add(amount)
		}
	}
	return total
}
