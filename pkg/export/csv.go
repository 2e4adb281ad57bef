package export

import (
	"encoding/csv"
	"io"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

func writeCSV(w io.Writer, entries []*entry.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(toRow(e, time.RFC3339).fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
