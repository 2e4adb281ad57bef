package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/commands/options"
	diaryexport "tableflip.dev/diary/pkg/export"
	"tableflip.dev/diary/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	fo := &options.FilterOptions{}
	var (
		format string
		path   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export entries as CSV or as an editable HTML table",
		Example: `
diary export
diary export --format=html --kind=expense -o expenses.html
diary export -o - | column -s, -t
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := diaryexport.ParseFormat(format)
			if err != nil {
				return err
			}
			q, err := fo.Query()
			if err != nil {
				return err
			}
			return withEnv(cmd.Context(), func(e *env) error {
				x := export.Export{
					Service: e.Service,
					Query:   q,
					Format:  f,
					Path:    path,
					Stdout:  cmd.OutOrStdout(),
					Out:     cmd.ErrOrStderr(),
				}
				return output.HandleError(x.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(diaryexport.CSV), "Export format: csv or html.")
	cmd.Flags().StringVarP(&path, "output", "o", "", `File to write, "-" for stdout. Default diary_export.<format>.`)
	options.AddFilterArgs(cmd, fo)
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
