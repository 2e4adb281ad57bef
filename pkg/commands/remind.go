package commands

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/runner/remind"
	"tableflip.dev/diary/pkg/timeutil"
)

func addRemind(topLevel *cobra.Command) {
	var (
		at    string
		in    string
		unset bool
	)

	cmd := &cobra.Command{
		Use:     "remind <entry id>",
		Aliases: []string{"reminder"},
		Short:   "Set or clear a one-shot reminder on an entry",
		Long: `Reminders fire while "diary serve" is running. A reminder set in the past
fires on the next check.`,
		Example: `
diary remind <entry id> --at="2024-02-28 09:00"
diary remind <entry id> --in=2h
diary remind <entry id> --clear
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			r := remind.Remind{ID: args[0], Clear: unset, Out: cmd.OutOrStdout()}
			switch {
			case unset:
			case at != "" && in != "":
				return errors.New("use only one of --at and --in")
			case at != "":
				when, err := timeutil.ParseWhen(at, now)
				if err != nil {
					return err
				}
				r.At = when
			case in != "":
				d, _, err := timeutil.ParseDuration(in)
				if err != nil {
					return err
				}
				r.At = now.Add(d)
			default:
				return errors.New("one of --at, --in or --clear is required")
			}
			return withEnv(cmd.Context(), func(e *env) error {
				r.Service = e.Service
				return output.HandleError(r.Do(cmd.Context()))
			})
		},
		ValidArgsFunction: entryCompletions,
	}

	cmd.Flags().StringVar(&at, "at", "", `When to remind, example: --at="2024-02-28 09:00", --at=18:30 or --at="tomorrow 08:00".`)
	cmd.Flags().StringVar(&in, "in", "", "Remind after this long, example: --in=90m or --in=2d.")
	cmd.Flags().BoolVar(&unset, "clear", false, "Remove the reminder.")
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
