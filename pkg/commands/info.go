package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/runner/info"
)

func addInfo(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show where the diary keeps its data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				i := info.Info{
					Config:  e.Config,
					Journal: e.Journal,
					Session: e.Session,
					Out:     cmd.OutOrStdout(),
				}
				return output.HandleError(i.Do(cmd.Context()))
			})
		},
	}

	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
