package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/runner/promote"
)

func addPromote(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "promote <entry id>",
		Short: "Turn a note into an event",
		Example: `
diary promote <entry id>
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				s := promote.Promote{
					ID:      args[0],
					Service: e.Service,
					Out:     cmd.OutOrStdout(),
				}
				return output.HandleError(s.Do(cmd.Context()))
			})
		},
		ValidArgsFunction: entryCompletions,
	}

	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
