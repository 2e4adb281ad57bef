// Package migrate provides runners that bring entries in from elsewhere.
package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/store"
)

// Migrate copies entries from Source, or from the JSON file at ImportPath
// when Source is nil.
type Migrate struct {
	Service     *app.Service
	Source      store.Persistence
	SourceOwner string
	ImportPath  string
	Out         io.Writer
}

func (n *Migrate) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not migrate, no journal")
	}

	var (
		result app.MigrationResult
		err    error
	)
	switch {
	case n.Source != nil:
		result, err = n.Service.MigrateFrom(ctx, n.Source, n.SourceOwner)
	case n.ImportPath != "":
		var r io.ReadCloser
		if n.ImportPath == "-" {
			r = io.NopCloser(os.Stdin)
		} else if r, err = os.Open(n.ImportPath); err != nil {
			return err
		}
		defer r.Close()
		result, err = n.Service.Import(ctx, r)
	default:
		return errors.New("nothing to migrate from")
	}
	if err != nil {
		return err
	}
	n.Service.Journal.Wait()

	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "imported %d, skipped %d existing, %d invalid\n", result.Imported, result.Skipped, result.Invalid)
	return nil
}
