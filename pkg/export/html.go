package export

import (
	"html/template"
	"io"
	"time"

	"tableflip.dev/diary/pkg/entry"
)

var page = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Diary export</title>
<style>
body { font-family: sans-serif; background-color: #111827; color: #d1d5db; }
table { width: 100%; border-collapse: collapse; }
th, td { border: 1px solid #374151; padding: 8px; text-align: left; }
th { background-color: #1f2937; }
tr:nth-child(even) { background-color: #1f2937; }
td[contenteditable="true"]:focus { background-color: #4b5563; outline: 2px solid #3b82f6; }
</style>
</head>
<body>
<h1>Diary entries</h1>
<p>Exported at {{.ExportedAt}}</p>
<p>Click a cell to edit it.</p>
<table>
<thead>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
<td contenteditable="false" style="color: #9ca3af;">{{.ID}}</td>
<td contenteditable="true">{{.Date}}</td>
<td contenteditable="true">{{.Kind}}</td>
<td contenteditable="true">{{.Description}}</td>
<td contenteditable="true">{{.Amount}}</td>
<td contenteditable="true">{{.Vendor}}</td>
<td contenteditable="true">{{.Category}}</td>
<td contenteditable="true">{{.Reminder}}</td>
<td contenteditable="true">{{.Items}}</td>
</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

func writeHTML(w io.Writer, entries []*entry.Entry, exportedAt time.Time) error {
	rows := make([]row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, toRow(e, "2006-01-02 15:04"))
	}
	return page.Execute(w, struct {
		ExportedAt string
		Header     []string
		Rows       []row
	}{
		ExportedAt: exportedAt.Format("2006-01-02 15:04:05 MST"),
		Header:     header,
		Rows:       rows,
	})
}
