// Package key provides CLI helpers to display the diary legend.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/glyph"
)

// Key prints a glyph legend describing kinds and markers.
type Key struct {
	Out io.Writer
}

// Do renders the kind and marker keys.
func (k *Key) Do(ctx context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintln(out, "")

	kinds := make([]glyph.Glyph, 0, len(entry.Kinds()))
	for _, kind := range entry.Kinds() {
		kinds = append(kinds, glyph.For(kind))
	}
	k.Key(out, "Kinds", kinds)
	_, _ = fmt.Fprintln(out, "")

	k.Key(out, "Markers", []glyph.Glyph{glyph.Reminder, glyph.Receipt})
	_, _ = fmt.Fprintln(out, "")
	return nil
}

// Key renders a glyph table under title.
func (k *Key) Key(out io.Writer, title string, glyfs []glyph.Glyph) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint(title), bold.Sprint("Meaning"))
	for _, v := range glyfs {
		tbl.AddRow(v.Symbol, v.Meaning)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out, tbl)
}
