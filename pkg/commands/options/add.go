package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/timeutil"
)

// AddOptions holds the fields of an entry typed in by hand.
type AddOptions struct {
	OnOptions
	Amount   string
	Vendor   string
	Category string
	At       string
}

func AddEntryArgs(cmd *cobra.Command, o *AddOptions) {
	AddOnArgs(cmd, &o.OnOptions)
	cmd.Flags().StringVar(&o.At, "at", "",
		`Set a reminder, example: --at="2024-02-28 09:00" or --at=18:30.`)
}

func AddExpenseArgs(cmd *cobra.Command, o *AddOptions) {
	AddEntryArgs(cmd, o)
	cmd.Flags().StringVar(&o.Amount, "amount", "", "Amount spent, example: --amount=12.50.")
	cmd.Flags().StringVar(&o.Vendor, "vendor", "", "Where the money was spent.")
	cmd.Flags().StringVar(&o.Category, "category", "", "Expense category, example: --category=food.")
}

// Manual builds the entry description for kind.
func (o *AddOptions) Manual(kind entry.Kind, description string, now time.Time) (app.Manual, error) {
	m := app.Manual{
		Kind:        kind,
		Description: strings.TrimSpace(description),
		Vendor:      strings.TrimSpace(o.Vendor),
		Category:    strings.TrimSpace(o.Category),
	}
	on, err := o.GetOn(now)
	if err != nil {
		return m, err
	}
	if on != nil {
		m.Date = *on
	}
	if o.Amount != "" {
		amount, err := decimal.NewFromString(strings.TrimSpace(o.Amount))
		if err != nil {
			return m, fmt.Errorf("invalid amount %q", o.Amount)
		}
		m.Amount = &amount
	}
	if o.At != "" {
		at, err := timeutil.ParseWhen(o.At, now)
		if err != nil {
			return m, err
		}
		m.Reminder = &at
	}
	return m, nil
}
