package entry

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of an entry.
type Kind string

const (
	// Note is free-form text.
	Note Kind = "note"
	// Expense carries an amount, vendor, category and optional line items.
	Expense Kind = "expense"
	// Event is something that happens on the entry date.
	Event Kind = "event"
)

// Kinds returns the supported kinds in display order.
func Kinds() []Kind {
	return []Kind{Note, Expense, Event}
}

var kindAliases = map[string]Kind{
	"note":     Note,
	"notes":    Note,
	"nota":     Note,
	"expense":  Expense,
	"expenses": Expense,
	"despesa":  Expense,
	"receipt":  Expense,
	"event":    Event,
	"events":   Event,
	"evento":   Event,
}

// ParseKind normalizes raw into a Kind. Matching is case-insensitive and
// tolerates surrounding whitespace.
func ParseKind(raw string) (Kind, error) {
	k, ok := kindAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("entry: unknown kind %q", raw)
	}
	return k, nil
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case Note, Expense, Event:
		return true
	default:
		return false
	}
}

func (k Kind) String() string {
	return string(k)
}
