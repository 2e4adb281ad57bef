package options

import (
	"github.com/spf13/cobra"
)

// IDOptions controls whether entry ids are printed. Ids are what promote,
// remind and delete take as their argument.
type IDOptions struct {
	ShowID bool
}

func AddShowIDArgs(cmd *cobra.Command, o *IDOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "show-id", "k", false,
		"Print entry ids, for use with promote, remind and delete.")
}
