package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tableflip.dev/diary/pkg/entry"
)

// Field names shared by the response schema and the parser.
const (
	fieldType        = "type"
	fieldDescription = "description"
	fieldDate        = "date"
	fieldAmount      = "amount"
	fieldVendor      = "vendor"
	fieldCategory    = "category"
	fieldItems       = "items"
	fieldName        = "name"
	fieldPrice       = "price"
)

type payload struct {
	Type        string              `json:"type"`
	Kind        string              `json:"kind"`
	Description string              `json:"description"`
	Date        string              `json:"date"`
	Amount      decimal.NullDecimal `json:"amount"`
	Vendor      *string             `json:"vendor"`
	Category    *string             `json:"category"`
	Items       []struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	} `json:"items"`
}

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// stripFences removes a surrounding markdown code block.
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// parse reads a model reply. An empty force keeps the kind the model chose.
func parse(raw string, today entry.Date, force entry.Kind) (*entry.Entry, error) {
	body := stripFences(raw)
	if body == "" {
		return nil, malformed("empty reply")
	}
	var p payload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	kind := force
	if kind == "" {
		name := p.Type
		if name == "" {
			name = p.Kind
		}
		k, err := entry.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		kind = k
	}

	on := today
	if d := strings.TrimSpace(p.Date); d != "" {
		parsed, err := entry.ParseDate(d)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
		}
		on = parsed
	}

	e := entry.New(kind, p.Description, on)
	if kind == entry.Expense {
		e.Expense.Amount = p.Amount
		if p.Vendor != nil {
			e.Expense.Vendor = *p.Vendor
		}
		if p.Category != nil {
			e.Expense.Category = *p.Category
		}
		for _, it := range p.Items {
			if strings.TrimSpace(it.Name) == "" {
				continue
			}
			e.Expense.LineItems = append(e.Expense.LineItems, entry.LineItem{Name: strings.TrimSpace(it.Name), Price: it.Price})
		}
		if !e.Expense.Amount.Valid && len(e.Expense.LineItems) > 0 {
			total := decimal.Zero
			for _, it := range e.Expense.LineItems {
				total = total.Add(it.Price)
			}
			e.Expense.Amount = decimal.NewNullDecimal(total)
		}
	}
	e.Normalize()
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return e, nil
}
