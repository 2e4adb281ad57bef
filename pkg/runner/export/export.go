// Package export provides the runner that writes entries to a file.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	diaryexport "tableflip.dev/diary/pkg/export"
	"tableflip.dev/diary/pkg/view"
)

// Export writes the entries selected by Query. An empty Path writes the
// format's default filename; "-" writes to Stdout.
type Export struct {
	Service *app.Service
	Query   view.Query
	Format  diaryexport.Format
	Path    string
	Now     func() time.Time
	Stdout  io.Writer
	Out     io.Writer
}

func (n *Export) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not export, no journal")
	}
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	entries, err := n.Service.Entries(ctx, n.Query)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return diaryexport.ErrNothingToExport
	}

	path := n.Path
	if path == "" {
		path = n.Format.Filename()
	}
	if path == "-" {
		w := n.Stdout
		if w == nil {
			w = os.Stdout
		}
		return diaryexport.Write(w, n.Format, entries, now())
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := diaryexport.Write(f, n.Format, entries, now()); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	_, _ = fmt.Fprintf(out, "exported %d entries to %s\n", len(entries), path)
	return nil
}
