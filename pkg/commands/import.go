package commands

import (
	"errors"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/config"
	"tableflip.dev/diary/pkg/runner/migrate"
	"tableflip.dev/diary/pkg/store"
)

func addImport(topLevel *cobra.Command) {
	var fromLocal string

	cmd := &cobra.Command{
		Use:     "import [file.json|-]",
		Aliases: []string{"migrate"},
		Short:   "Bring entries in from a JSON dump or a local journal",
		Long: `Import adds entries that are not yet in the journal. It reads a JSON array of
entries, such as one saved by the web client, or with --from-local copies a
local journal into the configured store, for example after switching the
backend to postgres. Entries whose id already exists are skipped.`,
		Example: `
diary import entries.json
diary import --from-local ~/.diary.db
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			fromLocal = strings.TrimSpace(fromLocal)
			if (path == "") == (fromLocal == "") {
				return errors.New("give either a file to import or --from-local")
			}
			if fromLocal != "" {
				expanded, err := homedir.Expand(fromLocal)
				if err != nil {
					return err
				}
				fromLocal = expanded
			}
			return withEnv(cmd.Context(), func(e *env) error {
				m := migrate.Migrate{
					Service:    e.Service,
					ImportPath: path,
					Out:        cmd.OutOrStdout(),
				}
				if fromLocal != "" {
					if e.Config.Backend == config.BackendLocal && fromLocal == e.Config.Path {
						return errors.New("--from-local names the journal being imported into")
					}
					src, err := store.NewLocal(fromLocal, e.Log)
					if err != nil {
						return err
					}
					defer src.Close()
					m.Source = src
				}
				return output.HandleError(m.Do(cmd.Context()))
			})
		},
	}

	cmd.Flags().StringVar(&fromLocal, "from-local", "", "Copy every entry of the local journal at this path.")
	output.AddOutputArg(cmd)
	topLevel.AddCommand(cmd)
}
