package commands

import (
	"github.com/spf13/cobra"

	base "github.com/n3wscott/cli-base/pkg/commands/options"

	"tableflip.dev/diary/pkg/commands/options"
	"tableflip.dev/diary/pkg/printers"
)

// rootOptions are the persistent flags shared by every command.
type rootOptions struct {
	ConfigPath string
	LogLevel   string
}

var (
	ro     = &rootOptions{}
	output = &options.OutputOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "diary",
		Short: base.Wrap80("A personal journal of notes, expenses and events on the command line."),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			printers.DisableColorUnlessTerminal(stdout)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&ro.ConfigPath, "config", "",
		"Read this config file instead of searching for .diary.yaml.")
	cmd.PersistentFlags().StringVar(&ro.LogLevel, "log-level", "",
		"Log level: debug, info, warn or error.")

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addRecord(topLevel)
	addList(topLevel)
	addCalendar(topLevel)
	addPromote(topLevel)
	addRemind(topLevel)
	addDelete(topLevel)
	addExport(topLevel)
	addReport(topLevel)
	addImport(topLevel)
	addServe(topLevel)
	addMCP(topLevel)
	addLogin(topLevel)
	addLogout(topLevel)
	addWhoAmI(topLevel)
	addKey(topLevel)
	addInfo(topLevel)
	addCompletions(topLevel)
	addVersion(topLevel)
}
