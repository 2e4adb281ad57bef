package commands

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tableflip.dev/diary/pkg/commands/options"
	"tableflip.dev/diary/pkg/runner/get"
)

func addList(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	oo := &options.OnOptions{}
	io := &options.IDOptions{}
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list [entry id]",
		Aliases: []string{"ls", "get"},
		Short:   "List entries, newest first",
		Example: `
diary list
diary list --kind=expense --search=coffee
diary list --on=yesterday
diary get <entry id>
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := fo.Query()
			if err != nil {
				return err
			}
			on, err := oo.GetOn(time.Now())
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(e *env) error {
				g := get.Get{
					Service: e.Service,
					Query:   q,
					On:      on,
					Limit:   limit,
					ShowID:  io.ShowID,
					JSON:    asJSON,
					Width:   terminalWidth(),
					Out:     cmd.OutOrStdout(),
				}
				if len(args) == 1 {
					g.ID = args[0]
				}
				return output.HandleError(g.Do(cmd.Context()))
			})
		},
	}

	options.AddFilterArgs(cmd, fo)
	options.AddOnArgs(cmd, oo)
	options.AddShowIDArgs(cmd, io)
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many entries.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output entries as JSON.")
	topLevel.AddCommand(cmd)
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(stdout.Fd()))
	if err != nil {
		return 0
	}
	return w
}
