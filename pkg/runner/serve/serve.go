// Package serve runs the long-lived parts of the diary together: the
// reminder scheduler, the store watcher and, optionally, the MCP server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"golang.org/x/sync/errgroup"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/logging"
	"tableflip.dev/diary/pkg/reminder"
	"tableflip.dev/diary/pkg/runner/mcp"
	"tableflip.dev/diary/pkg/store"
)

type Serve struct {
	Service     *app.Service
	Persistence store.Persistence
	Scheduler   *reminder.Scheduler
	// MCP is started alongside when set.
	MCP *mcp.Runner
	Log logging.Logger
	Out io.Writer
}

// Do blocks until ctx is done or one of the components fails.
func (n *Serve) Do(ctx context.Context) error {
	if n.Service == nil || n.Scheduler == nil {
		return errors.New("can not serve, no journal")
	}
	log := n.Log
	if log == nil {
		log = logging.Nop()
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return quiet(n.Scheduler.Run(ctx))
	})
	if n.Persistence != nil {
		g.Go(func() error {
			return quiet(n.Service.Watch(ctx, n.Persistence))
		})
	}
	if n.MCP != nil {
		g.Go(func() error {
			return quiet(n.MCP.Do(ctx))
		})
	}
	_, _ = color.New(color.Faint).Fprintf(out, "watching %d entries for reminders, interrupt to stop\n", n.Service.Journal.Len())
	log.Info(ctx, "serving", "mcp", n.MCP != nil)

	err := g.Wait()
	n.Service.Journal.Wait()
	if err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

func quiet(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
