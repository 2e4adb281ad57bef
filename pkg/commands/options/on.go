package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/timeutil"
)

// OnOptions
type OnOptions struct {
	OnString string
}

func AddOnArgs(cmd *cobra.Command, o *OnOptions) {
	cmd.Flags().StringVar(&o.OnString, "on", "",
		`Specify a date, example: --on=2024-02-28, --on=yesterday or --on=friday.`)
}

// GetOn returns nil when --on was not given.
func (o *OnOptions) GetOn(now time.Time) (*entry.Date, error) {
	if o.OnString == "" {
		return nil, nil
	}
	d, err := timeutil.ParseDay(o.OnString, now)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
