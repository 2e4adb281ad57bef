package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableflip.dev/diary/pkg/entry"
)

func sample() []*entry.Entry {
	lunch := entry.New(entry.Expense, `Lunch, "the usual"`, entry.NewDate(2024, 1, 3))
	lunch.ID = "2"
	lunch.Expense.Vendor = "Cafe"
	lunch.Expense.Amount = decimal.NewNullDecimal(decimal.RequireFromString("12.5"))
	lunch.Expense.LineItems = []entry.LineItem{
		{Name: "soup", Price: decimal.RequireFromString("7.5")},
		{Name: "tea", Price: decimal.RequireFromString("5")},
	}
	note := entry.New(entry.Note, "<b>bold</b> idea", entry.NewDate(2024, 1, 2))
	note.ID = "1"
	note.SetReminder(time.Date(2024, 1, 4, 9, 30, 0, 0, time.UTC))
	return []*entry.Entry{lunch, note}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, CSV, sample(), time.Now()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"2", "2024-01-03", "expense", `Lunch, "the usual"`, "12.50", "Cafe", "", "", "soup (7.50); tea (5.00)"}, records[1])
	assert.Equal(t, "2024-01-04T09:30:00Z", records[2][7])
	assert.Equal(t, "", records[2][4])
}

func TestWriteHTMLEscapesAndMarksEditable(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2024, 1, 5, 10, 0, 0, 0, time.UTC)
	require.NoError(t, Write(&buf, HTML, sample(), at))

	out := buf.String()
	assert.Contains(t, out, "Exported at 2024-01-05 10:00:00 UTC")
	assert.Contains(t, out, `<td contenteditable="false" style="color: #9ca3af;">2</td>`)
	assert.Contains(t, out, "&lt;b&gt;bold&lt;/b&gt; idea")
	assert.NotContains(t, out, "<b>bold</b>")
	assert.Contains(t, out, "2024-01-04 09:30")
	assert.Equal(t, 2, strings.Count(out, `contenteditable="false"`))
}

func TestWriteEmptySelection(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Write(&buf, CSV, nil, time.Now()), ErrNothingToExport)
	assert.ErrorIs(t, Write(&buf, HTML, []*entry.Entry{}, time.Now()), ErrNothingToExport)
	assert.Zero(t, buf.Len())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("HTML")
	require.NoError(t, err)
	assert.Equal(t, HTML, f)
	assert.Equal(t, "diary_export.csv", CSV.Filename())
	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}
