package commands

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/runner/report"
	"tableflip.dev/diary/pkg/timeutil"
)

func addReport(topLevel *cobra.Command) {
	var last string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize recent entries and spending per category",
		Long: `Report counts entries per kind and sums expenses per category within the
specified time window.

Examples:
  diary report
  diary report --last 3d
  diary report --last 1mo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			duration, label, err := timeutil.ParseWindow(last)
			if err != nil {
				return err
			}
			until := time.Now()
			since := until.Add(-duration)

			return withEnv(cmd.Context(), func(e *env) error {
				r := report.Report{
					Service: e.Service,
					Since:   since,
					Until:   until,
					Label:   label,
					Out:     cmd.OutOrStdout(),
				}
				return output.HandleError(r.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().StringVar(&last, "last", timeutil.DefaultWindow, "time window to include (for example 3d, 1w)")
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
