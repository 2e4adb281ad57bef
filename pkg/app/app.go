package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/classify"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/logging"
	"tableflip.dev/diary/pkg/receipts"
	"tableflip.dev/diary/pkg/store"
	"tableflip.dev/diary/pkg/view"
)

// Classifier turns raw input into entries.
type Classifier interface {
	ClassifyText(ctx context.Context, text string) (*entry.Entry, error)
	ClassifyReceipt(ctx context.Context, image []byte, mimeType, note string) (*entry.Entry, error)
}

// Service provides the journal operations shared by the CLI and the MCP
// server.
type Service struct {
	Journal    *journal.Journal
	Classifier Classifier
	// Receipts archives receipt photos. Nil disables archiving.
	Receipts receipts.Archive
	Log      logging.Logger
	Now      func() time.Time
}

var (
	ErrNotFound = errors.New("app: entry not found")
	// ErrStale is returned when a classification finished after its caller
	// gave up. Nothing is added.
	ErrStale         = errors.New("app: response arrived after the request was abandoned")
	ErrNotPromotable = errors.New("app: only notes can be promoted to events")
	ErrNoClassifier  = errors.New("app: no classifier configured")
	ErrNoJournal     = errors.New("app: no journal configured")
	ErrNoReceipt     = errors.New("app: entry has no archived receipt")
)

func (s *Service) log() logging.Logger {
	if s.Log == nil {
		return logging.Nop()
	}
	return s.Log
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ready() error {
	if s.Journal == nil {
		return ErrNoJournal
	}
	return nil
}

// stale reports whether a result for ctx must be discarded.
func stale(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStale, err)
	}
	return nil
}

// Capture classifies free text and adds the resulting entry.
func (s *Service) Capture(ctx context.Context, text string) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.Classifier == nil {
		return nil, ErrNoClassifier
	}
	if strings.TrimSpace(text) == "" {
		return nil, classify.ErrEmptyInput
	}
	e, err := s.Classifier.ClassifyText(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := stale(ctx); err != nil {
		s.log().Info(ctx, "discarding late classification", "description", e.Description)
		return nil, err
	}
	return s.Journal.Add(e)
}

// CaptureReceipt classifies a receipt photo, archives it when an archive is
// configured and adds the resulting expense.
func (s *Service) CaptureReceipt(ctx context.Context, image []byte, mimeType, note string) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if s.Classifier == nil {
		return nil, ErrNoClassifier
	}
	if len(image) == 0 {
		return nil, classify.ErrEmptyInput
	}
	e, err := s.Classifier.ClassifyReceipt(ctx, image, mimeType, note)
	if err != nil {
		return nil, err
	}
	if err := stale(ctx); err != nil {
		s.log().Info(ctx, "discarding late receipt classification", "description", e.Description)
		return nil, err
	}
	if s.Receipts != nil {
		key, err := s.Receipts.Put(ctx, s.Journal.Owner(), image, mimeType)
		if err != nil {
			s.log().Warn(ctx, "archiving receipt", "err", err)
		} else {
			e.Receipt = key
		}
	}
	return s.Journal.Add(e)
}

// AddClassified stores an entry produced outside Capture, such as the final
// entry of a live session.
func (s *Service) AddClassified(ctx context.Context, e *entry.Entry) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if err := stale(ctx); err != nil {
		return nil, err
	}
	return s.Journal.Add(e)
}

// Manual describes an entry typed in by hand.
type Manual struct {
	Kind        entry.Kind
	Description string
	Date        entry.Date
	Amount      *decimal.Decimal
	Vendor      string
	Category    string
	Reminder    *time.Time
}

// AddManual adds an entry without classification. A zero date means today.
func (s *Service) AddManual(ctx context.Context, m Manual) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if !m.Kind.Valid() {
		return nil, entry.ErrUnknownKind
	}
	on := m.Date
	if on.IsZero() {
		on = entry.DateOf(s.now())
	}
	e := entry.New(m.Kind, m.Description, on)
	if e.Expense != nil {
		if m.Amount != nil {
			e.Expense.Amount = decimal.NewNullDecimal(*m.Amount)
		}
		e.Expense.Vendor = m.Vendor
		e.Expense.Category = m.Category
	}
	if m.Reminder != nil {
		e.SetReminder(*m.Reminder)
	}
	return s.Journal.Add(e)
}

func (s *Service) modify(id string, fn func(*entry.Entry) error) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	updated, err := s.Journal.Modify(id, fn)
	if errors.Is(err, journal.ErrNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

// Promote turns a note into an event.
func (s *Service) Promote(_ context.Context, id string) (*entry.Entry, error) {
	return s.modify(id, func(e *entry.Entry) error {
		if e.Kind != entry.Note {
			return ErrNotPromotable
		}
		e.Promote()
		return nil
	})
}

// SetReminder schedules a one-shot reminder. A time already past fires on
// the next scheduler tick.
func (s *Service) SetReminder(_ context.Context, id string, at time.Time) (*entry.Entry, error) {
	return s.modify(id, func(e *entry.Entry) error {
		e.SetReminder(at)
		return nil
	})
}

func (s *Service) ClearReminder(_ context.Context, id string) (*entry.Entry, error) {
	return s.modify(id, func(e *entry.Entry) error {
		e.ClearReminder()
		return nil
	})
}

// Edit corrects an entry's fields. Zero fields of m are left unchanged.
func (s *Service) Edit(_ context.Context, id string, m Manual) (*entry.Entry, error) {
	return s.modify(id, func(e *entry.Entry) error {
		if m.Kind != "" && m.Kind != e.Kind {
			if !m.Kind.Valid() {
				return entry.ErrUnknownKind
			}
			e.Kind = m.Kind
			if e.Kind == entry.Expense && e.Expense == nil {
				e.Expense = &entry.ExpenseInfo{}
			}
		}
		if strings.TrimSpace(m.Description) != "" {
			e.Description = m.Description
		}
		if !m.Date.IsZero() {
			e.Date = m.Date
		}
		if e.Expense != nil {
			if m.Amount != nil {
				e.Expense.Amount = decimal.NewNullDecimal(*m.Amount)
			}
			if m.Vendor != "" {
				e.Expense.Vendor = m.Vendor
			}
			if m.Category != "" {
				e.Expense.Category = m.Category
			}
		}
		if m.Reminder != nil {
			e.SetReminder(*m.Reminder)
		}
		return nil
	})
}

// Delete removes an entry permanently.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, ok := s.Journal.Get(id); !ok {
		return ErrNotFound
	}
	s.Journal.Remove(id)
	return nil
}

// Entries lists the entries matching q, newest first.
func (s *Service) Entries(_ context.Context, q view.Query) ([]*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return view.Filter(s.Journal.List(), q), nil
}

// Entry returns one entry by id.
func (s *Service) Entry(_ context.Context, id string) (*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	e, ok := s.Journal.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Day lists the entries dated on day.
func (s *Service) Day(_ context.Context, day entry.Date) ([]*entry.Entry, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return view.OnDay(s.Journal.List(), day), nil
}

// Month returns per-day entry counts for the month containing month.
func (s *Service) Month(_ context.Context, month entry.Date) (map[int]int, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return view.MonthCounts(s.Journal.List(), month), nil
}

// ReceiptLink returns a temporary download link for an expense's receipt.
func (s *Service) ReceiptLink(ctx context.Context, id string) (string, error) {
	e, err := s.Entry(ctx, id)
	if err != nil {
		return "", err
	}
	if e.Receipt == "" || s.Receipts == nil {
		return "", ErrNoReceipt
	}
	return s.Receipts.Link(ctx, e.Receipt)
}

// Watch reloads the journal whenever the persistence reports an outside
// change, until ctx is done.
func (s *Service) Watch(ctx context.Context, p store.Persistence) error {
	if err := s.ready(); err != nil {
		return err
	}
	events, err := p.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return ctx.Err()
			}
			if err := s.Journal.Reload(ctx); err != nil {
				s.log().Warn(ctx, "reloading journal", "err", err)
			}
		}
	}
}
