// Package get provides the runner that lists and filters entries.
package get

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/printers"
	"tableflip.dev/diary/pkg/view"
)

type Get struct {
	Service *app.Service
	Query   view.Query
	// On restricts the listing to a single day.
	On *entry.Date
	// ID prints the full detail of one entry.
	ID    string
	Limit int

	ShowID bool
	JSON   bool
	Width  int
	Out    io.Writer
}

func (n *Get) out() io.Writer {
	if n.Out == nil {
		return color.Output
	}
	return n.Out
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no journal")
	}
	pp := printers.PrettyPrint{ShowID: n.ShowID, Width: n.Width, Out: n.Out}

	if n.ID != "" {
		e, err := n.Service.Entry(ctx, n.ID)
		if err != nil {
			return err
		}
		if n.JSON {
			return n.encode(e)
		}
		pp.Detail(e)
		return nil
	}

	all, err := n.Service.Entries(ctx, n.Query)
	if err != nil {
		return err
	}
	title := "Entries"
	if n.On != nil {
		all = view.OnDay(all, *n.On)
		title = n.On.Format("Monday, January 2, 2006")
	}
	if n.Limit > 0 && len(all) > n.Limit {
		all = all[:n.Limit]
	}

	if n.JSON {
		return n.encode(all)
	}
	_, _ = fmt.Fprintln(n.out())
	pp.TitleWithCount(title, len(all))
	pp.Entries(all...)
	return nil
}

func (n *Get) encode(v any) error {
	enc := json.NewEncoder(n.out())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
