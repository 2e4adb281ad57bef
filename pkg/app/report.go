package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/view"
)

// ReportResult summarizes the entries dated within a window.
type ReportResult struct {
	Since   time.Time
	Until   time.Time
	Counts  map[entry.Kind]int
	Totals  []view.CategoryTotal
	Spent   decimal.Decimal
	Entries []*entry.Entry
	Total   int
}

// Report summarizes entries dated between since and until, inclusive of the
// days they fall on.
func (s *Service) Report(_ context.Context, since, until time.Time) (ReportResult, error) {
	if err := s.ready(); err != nil {
		return ReportResult{}, err
	}
	if since.After(until) {
		since, until = until, since
	}
	first := entry.DateOf(since)
	last := entry.DateOf(until)

	result := ReportResult{
		Since:  since,
		Until:  until,
		Counts: make(map[entry.Kind]int, len(entry.Kinds())),
	}
	for _, e := range s.Journal.List() {
		if e.Date.Before(first.Time) || e.Date.After(last.Time) {
			continue
		}
		result.Entries = append(result.Entries, e)
		result.Counts[e.Kind]++
	}
	result.Total = len(result.Entries)
	result.Totals = view.Totals(result.Entries)
	result.Spent = view.Sum(result.Entries)
	return result, nil
}
