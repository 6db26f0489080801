package render

import (
	"fmt"
	"html/template"
	"os"
	"time"

	"httpdiff/internal/compare"
	"httpdiff/internal/engine"
)

// WriteHTML writes a single self-contained report document.
func WriteHTML(path string, res *engine.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	data := struct {
		RunID     string
		Generated string
		Summary   *engine.Summary
		Results   []engine.RouteResult
	}{
		RunID:     res.RunID.String(),
		Generated: time.Now().Format(time.RFC1123),
		Summary:   res.Summary,
		Results:   res.Results,
	}
	if err := reportTmpl.Execute(f, data); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	return nil
}

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"lineClass": func(k compare.LineKind) string {
		switch k {
		case compare.LineAdded:
			return "added"
		case compare.LineRemoved:
			return "removed"
		}
		return "context"
	},
	"linePrefix": func(k compare.LineKind) string {
		switch k {
		case compare.LineAdded:
			return "+"
		case compare.LineRemoved:
			return "-"
		}
		return " "
	},
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>httpdiff report {{.RunID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; }
h2 { font-size: 1.1rem; margin-top: 2rem; }
table.summary td, table.summary th { padding: 0.2rem 0.8rem; text-align: left; }
.class-identical { color: #1a7f37; }
.class-differs { color: #bf8700; }
.class-error { color: #cf222e; }
.class-skipped { color: #6e7781; }
pre.diff { background: #f6f8fa; padding: 0.6rem; overflow-x: auto; font-size: 0.85rem; }
pre.diff span { display: block; }
pre.diff .added { background: #dafbe1; }
pre.diff .removed { background: #ffebe9; }
.note { font-style: italic; color: #6e7781; }
.error-detail { background: #fff1f0; padding: 0.5rem; font-family: monospace; font-size: 0.85rem; }
</style>
</head>
<body>
<h1>httpdiff report</h1>
<p>run {{.RunID}} &middot; generated {{.Generated}} &middot; {{.Summary.ClassCounts}}{{if .Summary.Cancelled}} &middot; cancelled{{end}}</p>

<table class="summary">
<tr><th>Route</th><th>Identical</th><th>Differs</th><th>Errors</th><th>Skipped</th></tr>
{{range $name, $c := .Summary.PerRoute}}
<tr><td>{{$name}}</td><td>{{$c.Identical}}</td><td>{{$c.Differs}}</td><td>{{$c.Errors}}</td><td>{{$c.Skipped}}</td></tr>
{{end}}
</table>

{{range .Results}}
<h2>{{.RowLabel}} / {{.Route}} <span class="class-{{.Comparison.Class}}">{{.Comparison.Class}}</span></h2>
{{range .Comparison.Statuses}}
<p>status {{.Pair}}: {{.CodeA}} vs {{.CodeB}}</p>
{{end}}
{{range .Comparison.Headers}}
<p>header {{.Pair}} {{.Name}}: &quot;{{.ValueA}}&quot; vs &quot;{{.ValueB}}&quot;</p>
{{end}}
{{range .Comparison.Bodies}}
<p>body {{.Pair}} ({{.Kind}}){{if .Note}} <span class="note">{{.Note}}</span>{{end}}</p>
{{if .HashA}}
<p class="note">{{.SizeA}} bytes {{.HashA}}<br>{{.SizeB}} bytes {{.HashB}}</p>
{{else}}
<pre class="diff">{{range .Lines}}<span class="{{lineClass .Kind}}">{{linePrefix .Kind}}{{.Text}}</span>{{end}}</pre>
{{end}}
{{end}}
{{range .Comparison.Errors}}
<div class="error-detail">{{.Env}}: {{.Err}}</div>
{{end}}
{{end}}
</body>
</html>
`))
