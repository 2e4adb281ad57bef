package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/reminder"
	"tableflip.dev/diary/pkg/runner/mcp"
	"tableflip.dev/diary/pkg/runner/serve"
)

func addServe(topLevel *cobra.Command) {
	mo := &mcpOptions{}
	var withMCP bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Fire reminders and follow outside changes until interrupted",
		Long: `Serve keeps the journal loaded, reloads it when another process changes the
store, and shows a notification for every reminder that comes due. With --mcp
it also serves the Model Context Protocol over HTTP.`,
		Example: `
diary serve
diary serve --mcp --http-port=8080
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd.Context(), func(e *env) error {
				notifiers := reminder.Multi{reminder.Console{Out: cmd.OutOrStdout()}}
				if e.Config.Notifications.Desktop {
					notifiers = append(notifiers, reminder.Desktop{})
				}
				enabled := e.Config.Notifications.Enabled
				s := serve.Serve{
					Service:     e.Service,
					Persistence: e.Persistence,
					Scheduler: &reminder.Scheduler{
						Journal:   e.Journal,
						Notifier:  notifiers,
						Permitted: func() bool { return enabled },
						Interval:  e.Config.Reminders.Interval,
						Log:       e.Log.With("component", "reminder"),
					},
					Log: e.Log,
					Out: cmd.OutOrStdout(),
				}
				if withMCP {
					mo.Transport = string(mcp.TransportHTTP)
					runner, err := mo.runner(cmd, e)
					if err != nil {
						return err
					}
					s.MCP = runner
				}
				return output.HandleError(s.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().BoolVar(&withMCP, "mcp", false, "Also serve MCP over HTTP.")
	mo.addHTTPFlags(cmd)
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
