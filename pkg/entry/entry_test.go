package entry

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseKind(t *testing.T) {
	cases := map[string]Kind{
		"note":     Note,
		" NOTE ":   Note,
		"Expense":  Expense,
		"expenses": Expense,
		"event":    Event,
		"EVENTS\n": Event,
		"despesa":  Expense,
		"receipt":  Expense,
	}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := ParseKind("meeting"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestNormalizeDropsExpenseForOtherKinds(t *testing.T) {
	e := &Entry{
		Kind:        Note,
		Description: "  buy milk ",
		Expense:     &ExpenseInfo{Vendor: "Shop"},
	}
	e.Normalize()
	if e.Expense != nil {
		t.Fatalf("expected expense details to be dropped for a note")
	}
	if e.Description != "buy milk" {
		t.Fatalf("expected trimmed description, got %q", e.Description)
	}
	if e.Vendor() != "" || e.Category() != "" {
		t.Fatalf("expected absent vendor and category")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Entry{Kind: Note, Description: "x"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (&Entry{Kind: Note, Description: "  "}).Validate(); err != ErrDescriptionRequired {
		t.Fatalf("expected ErrDescriptionRequired, got %v", err)
	}
	if err := (&Entry{Kind: "task", Description: "x"}).Validate(); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}

func TestPromote(t *testing.T) {
	e := New(Expense, "Lunch", NewDate(2024, 1, 3))
	e.Expense.Vendor = "Cafe"
	e.Promote()
	if e.Kind != Event {
		t.Fatalf("expected event, got %s", e.Kind)
	}
	if e.Expense != nil {
		t.Fatalf("expected expense details dropped")
	}
}

func TestReminderDue(t *testing.T) {
	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	e := New(Note, "call mom", DateOf(now))
	if e.ReminderDue(now) {
		t.Fatalf("no reminder set, should not be due")
	}
	e.SetReminder(now.Add(time.Minute))
	if e.ReminderDue(now) {
		t.Fatalf("future reminder should not be due")
	}
	e.SetReminder(now)
	if !e.ReminderDue(now) {
		t.Fatalf("reminder at now should be due")
	}
	e.ClearReminder()
	if e.Reminder != nil {
		t.Fatalf("expected reminder cleared")
	}
}

func TestCloneIsDeep(t *testing.T) {
	e := New(Expense, "Groceries", NewDate(2024, 2, 1))
	e.Expense.LineItems = []LineItem{{Name: "bread", Price: decimal.RequireFromString("3.50")}}
	e.SetReminder(time.Now())

	c := e.Clone()
	c.Expense.LineItems[0].Name = "milk"
	c.Reminder.Time = time.Time{}

	if e.Expense.LineItems[0].Name != "bread" {
		t.Fatalf("clone shares line items")
	}
	if e.Reminder.IsZero() {
		t.Fatalf("clone shares reminder")
	}
}

func TestJSONRoundTripExpense(t *testing.T) {
	e := New(Expense, "Lunch", NewDate(2024, 1, 3))
	e.ID = "2"
	e.Expense.Amount = decimal.NewNullDecimal(decimal.RequireFromString("12.5"))
	e.Expense.Vendor = "Cafe"
	e.Expense.Category = "Food"
	e.Expense.LineItems = []LineItem{{Name: "soup", Price: decimal.RequireFromString("7.5")}}

	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	for _, want := range []string{`"date":"2024-01-03"`, `"kind":"expense"`, `"amount":12.5`, `"vendor":"Cafe"`, `"items":[{"name":"soup","price":7.5}]`} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected %s in %s", want, s)
		}
	}

	var got Entry
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	amount, ok := got.Amount()
	if !ok || !amount.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("unexpected amount %v %v", amount, ok)
	}
	if got.Vendor() != "Cafe" || len(got.Expense.LineItems) != 1 {
		t.Fatalf("unexpected expense details %+v", got.Expense)
	}
}

func TestUnmarshalLegacyWebClientShape(t *testing.T) {
	raw := `{"id":"a","date":"2024-01-02T00:00:00.000Z","type":"NOTE","description":"Buy milk","vendor":"ignored"}`
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Kind != Note {
		t.Fatalf("expected note, got %s", e.Kind)
	}
	if !e.Date.SameDay(NewDate(2024, 1, 2)) {
		t.Fatalf("unexpected date %s", e.Date)
	}
	if e.Expense != nil {
		t.Fatalf("note should not carry expense fields")
	}
}

func TestUnmarshalRejectsUnknownKind(t *testing.T) {
	var e Entry
	if err := json.Unmarshal([]byte(`{"id":"a","kind":"task","description":"x","date":"2024-01-01"}`), &e); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-09")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.String() != "2024-03-09" {
		t.Fatalf("unexpected %s", d)
	}
	if _, err := ParseDate("09/03/2024"); err == nil {
		t.Fatalf("expected error")
	}
}
