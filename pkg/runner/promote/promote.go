// Package promote provides the runner logic for turning notes into events.
package promote

import (
	"context"
	"errors"
	"io"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/printers"
)

// Promote turns a note into an event.
type Promote struct {
	ID      string
	Service *app.Service
	Out     io.Writer
}

// Do executes the promotion for the configured entry ID.
func (n *Promote) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not promote, no journal")
	}
	e, err := n.Service.Promote(ctx, n.ID)
	if err != nil {
		return err
	}
	pp := printers.PrettyPrint{ShowID: true, Out: n.Out}
	pp.Title("Promoted")
	pp.Entries(e)
	return nil
}
