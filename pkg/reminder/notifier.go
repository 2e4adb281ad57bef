package reminder

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"

	"tableflip.dev/diary/pkg/glyph"
)

// Desktop shows notifications through the operating system.
type Desktop struct {
	// Icon is an optional path to an application icon.
	Icon string
}

func (d Desktop) Notify(_ context.Context, n Notification) error {
	return beeep.Notify(n.Title, n.Body, d.Icon)
}

// Console prints notifications as a colored line.
type Console struct {
	Out io.Writer
}

func (c Console) Notify(_ context.Context, n Notification) error {
	bold := color.New(color.FgYellow, color.Bold).SprintFunc()
	when := ""
	if !n.At.IsZero() {
		when = " " + color.New(color.Faint).Sprint(n.At.Local().Format("15:04"))
	}
	_, err := fmt.Fprintf(c.Out, "%s %s%s\n", glyph.Reminder.Symbol, bold(n.Title), when)
	return err
}

// Multi sends to every notifier and succeeds when at least one did.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	delivered := false
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
			continue
		}
		delivered = true
	}
	if delivered {
		return nil
	}
	if len(errs) == 0 {
		return errors.New("reminder: no notifiers")
	}
	return errors.Join(errs...)
}
