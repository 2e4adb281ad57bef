// Package record provides the runner that turns a spoken recording into an
// entry.
package record

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/classify"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/printers"
)

// ErrNoEntry is returned when the session closed without producing an entry.
var ErrNoEntry = errors.New("recording ended without an entry")

// Record streams Audio to a live session until the audio ends or ctx is
// cancelled, then stores the entry the model produced.
type Record struct {
	Service  *app.Service
	Recorder *classify.Recorder
	Audio    io.ReadCloser
	Out      io.Writer
}

func (n *Record) Do(ctx context.Context) error {
	if n.Service == nil || n.Recorder == nil {
		if n.Audio != nil {
			_ = n.Audio.Close()
		}
		return errors.New("can not record, no classifier")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}
	faint := color.New(color.Faint)

	entries := make(chan *entry.Entry, 1)
	failures := make(chan error, 1)
	cb := classify.Callbacks{
		OnTranscript: func(t classify.Transcript) {
			if t.Final {
				_, _ = faint.Fprintf(out, "  %s\n", t.Text)
			}
		},
		OnEntry: func(e *entry.Entry) {
			select {
			case entries <- e:
			default:
			}
		},
		OnError: func(err error) {
			select {
			case failures <- err:
			default:
			}
		},
	}

	// Cancelling ctx means "stop recording", not "abandon the entry".
	sessCtx := context.WithoutCancel(ctx)
	sess, err := n.Recorder.Start(sessCtx, n.Audio, cb)
	if err != nil {
		return err
	}
	_, _ = faint.Fprintln(out, "recording, interrupt to finish...")

	select {
	case <-ctx.Done():
		n.Recorder.Stop()
	case <-sess.Done():
	}
	<-sess.Done()

	select {
	case e := <-entries:
		saved, err := n.Service.AddClassified(sessCtx, e)
		if err != nil {
			return err
		}
		pp := printers.PrettyPrint{Out: out}
		pp.Title("Added")
		pp.Entries(saved)
		return nil
	case err := <-failures:
		return fmt.Errorf("recording: %w", err)
	default:
		return ErrNoEntry
	}
}
