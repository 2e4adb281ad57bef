// Package remove provides the runner that permanently deletes entries.
package remove

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
)

// ErrAborted is returned when the confirmation was declined.
var ErrAborted = errors.New("delete aborted")

type Remove struct {
	ID      string
	Service *app.Service
	// Confirm asks before deleting. Nil deletes without asking.
	Confirm func(description string) (bool, error)
	Out     io.Writer
}

func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no journal")
	}
	e, err := n.Service.Entry(ctx, n.ID)
	if err != nil {
		return err
	}
	if n.Confirm != nil {
		ok, err := n.Confirm(e.Description)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAborted
		}
	}
	if err := n.Service.Delete(ctx, e.ID); err != nil {
		return err
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.Faint).Fprintf(out, "deleted %s %q\n", e.ID, e.Description)
	return nil
}
