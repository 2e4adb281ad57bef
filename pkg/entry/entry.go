package entry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrDescriptionRequired is returned by Validate for blank descriptions.
	ErrDescriptionRequired = errors.New("entry: description required")
	// ErrUnknownKind is returned by Validate for a kind outside Kinds().
	ErrUnknownKind = errors.New("entry: unknown kind")
)

// LineItem is one priced row of a receipt.
type LineItem struct {
	Name  string
	Price decimal.Decimal
}

// ExpenseInfo holds the fields that only exist on expenses.
type ExpenseInfo struct {
	Amount    decimal.NullDecimal
	Vendor    string
	Category  string
	LineItems []LineItem
}

// Entry is one journal record.
//
// Expense is non-nil only when Kind is Expense; fields that do not apply to
// the kind are absent rather than zero.
type Entry struct {
	ID          string
	Owner       string
	Date        Date
	Kind        Kind
	Description string
	Expense     *ExpenseInfo
	Reminder    *Timestamp
	Receipt     string
	Created     Timestamp
}

func New(kind Kind, description string, on Date) *Entry {
	e := &Entry{
		Kind:        kind,
		Description: description,
		Date:        on,
	}
	if kind == Expense {
		e.Expense = &ExpenseInfo{}
	}
	return e
}

// Normalize trims text fields and drops data that does not belong to the
// entry's kind.
func (e *Entry) Normalize() {
	e.Description = strings.TrimSpace(e.Description)
	switch e.Kind {
	case Expense:
		if e.Expense == nil {
			e.Expense = &ExpenseInfo{}
		}
		e.Expense.Vendor = strings.TrimSpace(e.Expense.Vendor)
		e.Expense.Category = strings.TrimSpace(e.Expense.Category)
		if len(e.Expense.LineItems) == 0 {
			e.Expense.LineItems = nil
		}
	case Note, Event:
		e.Expense = nil
	}
	if e.Reminder != nil && e.Reminder.IsZero() {
		e.Reminder = nil
	}
}

func (e *Entry) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w %q", ErrUnknownKind, e.Kind)
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrDescriptionRequired
	}
	return nil
}

// Clone returns a deep copy.
func (e *Entry) Clone() *Entry {
	if e == nil {
		return nil
	}
	c := *e
	if e.Expense != nil {
		x := *e.Expense
		if e.Expense.LineItems != nil {
			x.LineItems = append([]LineItem(nil), e.Expense.LineItems...)
		}
		c.Expense = &x
	}
	if e.Reminder != nil {
		r := *e.Reminder
		c.Reminder = &r
	}
	return &c
}

// Promote turns the entry into an event. Expense details are dropped.
func (e *Entry) Promote() {
	e.Kind = Event
	e.Expense = nil
}

func (e *Entry) SetReminder(at time.Time) {
	e.Reminder = NewTimestamp(at)
}

func (e *Entry) ClearReminder() {
	e.Reminder = nil
}

// ReminderDue reports whether a reminder is set and has elapsed at now.
func (e *Entry) ReminderDue(now time.Time) bool {
	return e.Reminder != nil && !e.Reminder.After(now)
}

// Vendor returns the expense vendor, or "" for other kinds.
func (e *Entry) Vendor() string {
	if e.Expense == nil {
		return ""
	}
	return e.Expense.Vendor
}

// Category returns the expense category, or "" for other kinds.
func (e *Entry) Category() string {
	if e.Expense == nil {
		return ""
	}
	return e.Expense.Category
}

// Amount returns the expense amount when one is present.
func (e *Entry) Amount() (decimal.Decimal, bool) {
	if e.Expense == nil || !e.Expense.Amount.Valid {
		return decimal.Zero, false
	}
	return e.Expense.Amount.Decimal, true
}

func (e *Entry) String() string {
	switch e.Kind {
	case Expense:
		if amount, ok := e.Amount(); ok {
			return fmt.Sprintf("%s %s  %s", e.Date, e.Description, amount.StringFixed(2))
		}
	case Note, Event:
	}
	return fmt.Sprintf("%s %s", e.Date, e.Description)
}

type wireItem struct {
	Name  string      `json:"name"`
	Price json.Number `json:"price"`
}

// wireEntry is the flat JSON shape shared by the local store, exports and
// the MCP surface. "type" is read for files written by the web client.
type wireEntry struct {
	ID          string      `json:"id"`
	Owner       string      `json:"owner,omitempty"`
	Date        Date        `json:"date"`
	Kind        string      `json:"kind,omitempty"`
	LegacyType  string      `json:"type,omitempty"`
	Description string      `json:"description"`
	Amount      json.Number `json:"amount,omitempty"`
	Vendor      string      `json:"vendor,omitempty"`
	Category    string      `json:"category,omitempty"`
	Items       []wireItem  `json:"items,omitempty"`
	Reminder    *Timestamp  `json:"reminder,omitempty"`
	Receipt     string      `json:"receipt,omitempty"`
	Created     *Timestamp  `json:"created,omitempty"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	w := wireEntry{
		ID:          e.ID,
		Owner:       e.Owner,
		Date:        e.Date,
		Kind:        string(e.Kind),
		Description: e.Description,
		Reminder:    e.Reminder,
		Receipt:     e.Receipt,
	}
	if !e.Created.IsZero() {
		w.Created = &Timestamp{Time: e.Created.Time}
	}
	if e.Kind == Expense && e.Expense != nil {
		if e.Expense.Amount.Valid {
			w.Amount = json.Number(e.Expense.Amount.Decimal.String())
		}
		w.Vendor = e.Expense.Vendor
		w.Category = e.Expense.Category
		for _, item := range e.Expense.LineItems {
			w.Items = append(w.Items, wireItem{Name: item.Name, Price: json.Number(item.Price.String())})
		}
	}
	return json.Marshal(w)
}

func (e *Entry) UnmarshalJSON(b []byte) error {
	var w wireEntry
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	raw := w.Kind
	if raw == "" {
		raw = w.LegacyType
	}
	kind, err := ParseKind(raw)
	if err != nil {
		return err
	}
	out := Entry{
		ID:          w.ID,
		Owner:       w.Owner,
		Date:        w.Date,
		Kind:        kind,
		Description: w.Description,
		Reminder:    w.Reminder,
		Receipt:     w.Receipt,
	}
	if w.Created != nil {
		out.Created = *w.Created
	}
	if kind == Expense {
		info := &ExpenseInfo{Vendor: w.Vendor, Category: w.Category}
		if w.Amount != "" {
			amount, err := decimal.NewFromString(string(w.Amount))
			if err != nil {
				return fmt.Errorf("entry: amount: %w", err)
			}
			info.Amount = decimal.NewNullDecimal(amount)
		}
		for _, item := range w.Items {
			price := decimal.Zero
			if item.Price != "" {
				if price, err = decimal.NewFromString(string(item.Price)); err != nil {
					return fmt.Errorf("entry: item price: %w", err)
				}
			}
			info.LineItems = append(info.LineItems, LineItem{Name: item.Name, Price: price})
		}
		out.Expense = info
	}
	out.Normalize()
	*e = out
	return nil
}
