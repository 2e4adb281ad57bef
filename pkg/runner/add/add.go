// Package add provides the runner that captures new diary entries.
package add

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"tableflip.dev/diary/pkg/app"
	"tableflip.dev/diary/pkg/entry"
	"tableflip.dev/diary/pkg/printers"
)

// Add captures one entry. Exactly one of Text, Manual or ReceiptPath is used:
// Manual wins, then ReceiptPath, then Text is sent to the classifier.
type Add struct {
	Service *app.Service

	Text        string
	Manual      *app.Manual
	ReceiptPath string
	// ReceiptMIME overrides content sniffing of the receipt image.
	ReceiptMIME string

	ShowID bool
	Out    io.Writer
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no journal")
	}

	var (
		e   *entry.Entry
		err error
	)
	switch {
	case n.Manual != nil:
		e, err = n.Service.AddManual(ctx, *n.Manual)
	case n.ReceiptPath != "":
		var image []byte
		image, err = readImage(n.ReceiptPath)
		if err != nil {
			return err
		}
		e, err = n.Service.CaptureReceipt(ctx, image, n.ReceiptMIME, n.Text)
	default:
		e, err = n.Service.Capture(ctx, strings.TrimSpace(n.Text))
	}
	if err != nil {
		return err
	}

	pp := printers.PrettyPrint{ShowID: n.ShowID, Out: n.Out}
	pp.Title("Added")
	pp.Entries(e)
	return nil
}

// readImage reads a receipt from path, or stdin when path is "-".
func readImage(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
