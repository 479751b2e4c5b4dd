package main

import (
	"fmt"
	"html/template"
	"os"
	"time"
)

type PageField struct {
	Name  string
	Value string
}

type PageData struct {
	GeneratedAt string
	NextUpdate  string
	Interval    string
	Diagnostic  string
	HasRow      bool
	Fields      []PageField
}

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="cs">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Electricity Market Data</title>
    <style>
        body {
            font-family: Arial, sans-serif;
            margin: 20px;
            background-color: #f9f9f9;
        }
        h1 {
            color: #333;
        }
        p {
            font-size: 16px;
            color: #555;
        }
        table {
            border-collapse: collapse;
        }
        td, th {
            border: 1px solid #ccc;
            padding: 4px 10px;
            text-align: left;
        }
        .diagnostic {
            color: #a65c00;
        }
    </style>
</head>
<body>
    <h1>Electricity Market Data Viewer</h1>
    <p><strong>Last Updated (CET):</strong> {{.GeneratedAt}}</p>
    <p><strong>Next scheduled update:</strong> {{.NextUpdate}}</p>
{{- if .Diagnostic}}
    <p class="diagnostic">{{.Diagnostic}}</p>
{{- end}}
{{- if .HasRow}}
    <p><strong>Časový interval:</strong> {{.Interval}}</p>
    <table>
{{- range .Fields}}
        <tr><th>{{.Name}}</th><td>{{.Value}}</td></tr>
{{- end}}
    </table>
{{- else}}
    <p>No market data available.</p>
{{- end}}
</body>
</html>
`))

// RenderPage writes the static page for a resolution. The write is
// atomic (tmp + rename) so a served page is never half-written.
func RenderPage(path string, res ResolutionResult, cols Columns, now time.Time) error {
	data := PageData{
		GeneratedAt: now.Format("2006-01-02 15:04:05"),
		NextUpdate:  NextQuarterHour(now).Format("15:04"),
		Diagnostic:  res.Diagnostic,
	}
	if res.Row != nil {
		data.HasRow = true
		data.Interval = res.Row.Cell(cols.Interval)
		for _, c := range cols.Payload {
			data.Fields = append(data.Fields, PageField{Name: c, Value: res.Row.Cell(c)})
		}
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := pageTmpl.Execute(f, data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("render: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("render: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}
