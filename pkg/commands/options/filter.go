package options

import (
	"github.com/spf13/cobra"

	"tableflip.dev/diary/pkg/view"
)

// FilterOptions select entries by kind and text.
type FilterOptions struct {
	Kind   string
	Search string
}

func AddFilterArgs(cmd *cobra.Command, o *FilterOptions) {
	cmd.Flags().StringVar(&o.Kind, "kind", "all",
		"Only show entries of this kind: all, note, expense or event.")
	cmd.Flags().StringVarP(&o.Search, "search", "s", "",
		"Only show entries whose description, vendor or category contains this text.")
}

func (o *FilterOptions) Query() (view.Query, error) {
	k, err := view.ParseKindFilter(o.Kind)
	if err != nil {
		return view.Query{}, err
	}
	return view.Query{Term: o.Search, Kind: k}, nil
}
