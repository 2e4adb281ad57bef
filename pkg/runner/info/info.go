// Package info reports where the diary keeps its data.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/config"
	"tableflip.dev/diary/pkg/journal"
	"tableflip.dev/diary/pkg/session"
)

type Info struct {
	Config  *config.Config
	Journal *journal.Journal
	Session *session.Session
	Out     io.Writer
}

func (n *Info) Do(ctx context.Context) error {
	out := n.Out
	if out == nil {
		out = color.Output
	}
	if n.Config == nil {
		return errors.New("no config loaded")
	}

	if override := os.Getenv("DIARY_CONFIG_PATH"); override != "" {
		_, _ = fmt.Fprintln(out, "DIARY_CONFIG_PATH found on env, using", override)
	} else {
		_, _ = fmt.Fprintln(out, "DIARY_CONFIG_PATH env var not set")
	}

	_, _ = fmt.Fprintln(out, "Config.backend:", n.Config.Backend)
	switch n.Config.Backend {
	case config.BackendPostgres:
		_, _ = fmt.Fprintln(out, "Config.database: configured")
	default:
		_, _ = fmt.Fprintln(out, "Config.path:", n.Config.Path)
	}
	if n.Config.Receipts.Bucket != "" {
		_, _ = fmt.Fprintln(out, "Config.receipts.bucket:", n.Config.Receipts.Bucket)
	}

	if n.Session != nil {
		_, _ = fmt.Fprintf(out, "Signed in as %s (%s)\n", n.Session.Email, n.Session.Owner)
	} else {
		_, _ = fmt.Fprintln(out, "Signed out")
	}

	if n.Journal != nil {
		_, _ = fmt.Fprintf(out, "Entries: %d\n", n.Journal.Len())
	}
	return nil
}
