// Package mcp provides the Model Context Protocol server integration for the
// diary.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/glyph"
	"tableflip.dev/diary/pkg/timeutil"
	"tableflip.dev/diary/pkg/view"
)

// Service adapts app.Service to transport-friendly values.
type Service struct {
	App *app.Service
	Now func() time.Time
}

// ErrNotConfigured is returned when no app service is attached.
var ErrNotConfigured = errors.New("mcp: diary is not configured")

// LineItemDTO is one priced receipt row.
type LineItemDTO struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// EntryDTO is a transport-friendly projection of an entry.
type EntryDTO struct {
	ID          string        `json:"id"`
	Date        string        `json:"date"`
	Kind        string        `json:"kind"`
	KindSymbol  string        `json:"kindSymbol"`
	Description string        `json:"description"`
	Amount      string        `json:"amount,omitempty"`
	Vendor      string        `json:"vendor,omitempty"`
	Category    string        `json:"category,omitempty"`
	LineItems   []LineItemDTO `json:"lineItems,omitempty"`
	ReminderISO string        `json:"reminder,omitempty"`
	HasReceipt  bool          `json:"hasReceipt"`
	CreatedISO  string        `json:"created,omitempty"`
}

// DaySummary is the per-day count shown on a calendar month.
type DaySummary struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TotalDTO is a category subtotal.
type TotalDTO struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
	Total    string `json:"total"`
}

// AddEntryOptions captures the parameters used to create an entry by hand.
type AddEntryOptions struct {
	Kind        string
	Description string
	Date        string
	Amount      string
	Vendor      string
	Category    string
	Reminder    string
}

// NewService builds a service wrapper around the provided app service.
func NewService(a *app.Service) *Service {
	return &Service{App: a}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s == nil || s.App == nil {
		return ErrNotConfigured
	}
	return nil
}

// ListEntries returns entries matching the term and kind, newest first.
func (s *Service) ListEntries(ctx context.Context, term, kind string, limit int) ([]EntryDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	k, err := view.ParseKindFilter(kind)
	if err != nil {
		return nil, err
	}
	entries, err := s.App.Entries(ctx, view.Query{Term: term, Kind: k})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return toDTOs(entries), nil
}

// EntryByID fetches a single entry.
func (s *Service) EntryByID(ctx context.Context, id string) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.Entry(ctx, strings.TrimSpace(id))
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// Capture classifies free text and stores the result.
func (s *Service) Capture(ctx context.Context, text string) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.Capture(ctx, text)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// AddEntry stores an entry without classification.
func (s *Service) AddEntry(ctx context.Context, opts AddEntryOptions) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	m, err := s.manual(opts)
	if err != nil {
		return EntryDTO{}, err
	}
	if m.Kind == "" {
		m.Kind = entry.Note
	}
	e, err := s.App.AddManual(ctx, m)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// UpdateEntry edits the non-empty fields of opts on entry id.
func (s *Service) UpdateEntry(ctx context.Context, id string, opts AddEntryOptions) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	m, err := s.manual(opts)
	if err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.Edit(ctx, id, m)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

func (s *Service) manual(opts AddEntryOptions) (app.Manual, error) {
	var m app.Manual
	if strings.TrimSpace(opts.Kind) != "" {
		k, err := entry.ParseKind(opts.Kind)
		if err != nil {
			return m, err
		}
		m.Kind = k
	}
	m.Description = opts.Description
	if strings.TrimSpace(opts.Date) != "" {
		d, err := timeutil.ParseDay(opts.Date, s.now())
		if err != nil {
			return m, err
		}
		m.Date = d
	}
	if strings.TrimSpace(opts.Amount) != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(opts.Amount))
		if err != nil {
			return m, fmt.Errorf("invalid amount %q", opts.Amount)
		}
		m.Amount = &amount
	}
	m.Vendor = opts.Vendor
	m.Category = opts.Category
	if strings.TrimSpace(opts.Reminder) != "" {
		at, err := timeutil.ParseWhen(opts.Reminder, s.now())
		if err != nil {
			return m, err
		}
		m.Reminder = &at
	}
	return m, nil
}

// PromoteEntry turns a note into an event.
func (s *Service) PromoteEntry(ctx context.Context, id string) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	e, err := s.App.Promote(ctx, id)
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// SetReminder schedules a reminder; an empty when clears it.
func (s *Service) SetReminder(ctx context.Context, id, when string) (EntryDTO, error) {
	if err := s.ready(); err != nil {
		return EntryDTO{}, err
	}
	var (
		e   *entry.Entry
		err error
	)
	if strings.TrimSpace(when) == "" {
		e, err = s.App.ClearReminder(ctx, id)
	} else {
		var at time.Time
		at, err = timeutil.ParseWhen(when, s.now())
		if err != nil {
			return EntryDTO{}, err
		}
		e, err = s.App.SetReminder(ctx, id, at)
	}
	if err != nil {
		return EntryDTO{}, err
	}
	return toDTO(e), nil
}

// DeleteEntry removes an entry.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.App.Delete(ctx, id)
}

// Day lists entries dated on day (YYYY-MM-DD or a day word).
func (s *Service) Day(ctx context.Context, day string) ([]EntryDTO, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	d, err := timeutil.ParseDay(day, s.now())
	if err != nil {
		return nil, err
	}
	entries, err := s.App.Day(ctx, d)
	if err != nil {
		return nil, err
	}
	return toDTOs(entries), nil
}

// Month returns the days of month (YYYY-MM) that hold entries.
func (s *Service) Month(ctx context.Context, month string) ([]DaySummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	first, err := timeutil.ParseMonth(month, s.now())
	if err != nil {
		return nil, err
	}
	counts, err := s.App.Month(ctx, first)
	if err != nil {
		return nil, err
	}
	out := make([]DaySummary, 0, len(counts))
	for day := 1; day <= 31; day++ {
		n, ok := counts[day]
		if !ok {
			continue
		}
		out = append(out, DaySummary{
			Date:  entry.NewDate(first.Year(), first.Month(), day).String(),
			Count: n,
		})
	}
	return out, nil
}

// Totals sums expenses per category over the trailing window.
func (s *Service) Totals(ctx context.Context, window string) ([]TotalDTO, string, error) {
	if err := s.ready(); err != nil {
		return nil, "", err
	}
	d, _, err := timeutil.ParseWindow(window)
	if err != nil {
		return nil, "", err
	}
	until := s.now()
	result, err := s.App.Report(ctx, until.Add(-d), until)
	if err != nil {
		return nil, "", err
	}
	out := make([]TotalDTO, 0, len(result.Totals))
	for _, t := range result.Totals {
		out = append(out, TotalDTO{Category: t.Category, Count: t.Count, Total: t.Total.StringFixed(2)})
	}
	return out, result.Spent.StringFixed(2), nil
}

func toDTOs(entries []*entry.Entry) []EntryDTO {
	out := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		out = append(out, toDTO(e))
	}
	return out
}

func toDTO(e *entry.Entry) EntryDTO {
	dto := EntryDTO{
		ID:          e.ID,
		Date:        e.Date.String(),
		Kind:        e.Kind.String(),
		KindSymbol:  glyph.For(e.Kind).Symbol,
		Description: e.Description,
		Vendor:      e.Vendor(),
		Category:    e.Category(),
		HasReceipt:  e.Receipt != "",
	}
	if amount, ok := e.Amount(); ok {
		dto.Amount = amount.StringFixed(2)
	}
	if e.Expense != nil {
		for _, item := range e.Expense.LineItems {
			dto.LineItems = append(dto.LineItems, LineItemDTO{Name: item.Name, Price: item.Price.StringFixed(2)})
		}
	}
	if e.Reminder != nil {
		dto.ReminderISO = entry.FormatTime(e.Reminder.Time)
	}
	if !e.Created.IsZero() {
		dto.CreatedISO = entry.FormatTime(e.Created.Time)
	}
	return dto
}
