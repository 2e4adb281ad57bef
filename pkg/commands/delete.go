package commands

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/commands/options"
	"tableflip.dev/diary/pkg/runner/remove"
)

func addDelete(topLevel *cobra.Command) {
	co := &options.ConfirmOptions{}

	cmd := &cobra.Command{
		Use:     "delete <entry id>",
		Aliases: []string{"rm", "remove"},
		Short:   "Permanently delete an entry",
		Example: `
diary delete <entry id>
diary delete <entry id> --yes
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				r := remove.Remove{
					ID:      args[0],
					Service: e.Service,
					Out:     cmd.OutOrStdout(),
				}
				if !co.Yes {
					r.Confirm = confirmDelete
				}
				return output.HandleError(r.Do(cmd.Context()))
			})
		},
		ValidArgsFunction: entryCompletions,
	}

	options.AddConfirmArgs(cmd, co)
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}

func confirmDelete(description string) (bool, error) {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Delete %q", description),
		IsConfirm: true,
	}
	_, err := prompt.Run()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, promptui.ErrAbort):
		return false, nil
	default:
		return false, err
	}
}
