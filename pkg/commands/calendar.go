package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/commands/options"
	"tableflip.dev/diary/pkg/runner/calendar"
	"tableflip.dev/diary/pkg/timeutil"
)

func addCalendar(topLevel *cobra.Command) {
	oo := &options.OnOptions{}
	io := &options.IDOptions{}
	var month string

	cmd := &cobra.Command{
		Use:     "calendar",
		Aliases: []string{"cal"},
		Short:   "Show a month with the days that hold entries highlighted",
		Example: `
diary calendar
diary calendar --month=2024-02
diary calendar --on=2024-02-14
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			now := time.Now()
			first, err := timeutil.ParseMonth(month, now)
			if err != nil {
				return err
			}
			on, err := oo.GetOn(now)
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(e *env) error {
				c := calendar.Calendar{
					Service: e.Service,
					Month:   first,
					Day:     on,
					ShowID:  io.ShowID,
					Out:     cmd.OutOrStdout(),
				}
				return output.HandleError(c.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().StringVarP(&month, "month", "m", "", "Month to show as YYYY-MM, default this month.")
	options.AddOnArgs(cmd, oo)
	options.AddShowIDArgs(cmd, io)
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
