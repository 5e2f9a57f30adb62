// Render HTML for viewing an aggregated analysis

package render

import (
	"fmt"
	"html/template"
	"io"

	"github.com/yumyai/otuview/logger"
	"github.com/yumyai/otuview/pkg/model"
	"go.uber.org/zap"
)

var analysis_page_template *template.Template

// init initializes the templates used for rendering the analysis page.
func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
		<link href="/static/style.css" rel="stylesheet"></link>
		<title>Analysis: {{ .SampleName }}</title>
	</head>
	<body>
		<h1>{{ .SampleName }} <small>({{ .Workflow }})</small></h1>
		{{template "analysis_summary" . }}
		{{ if .Diagnosis }}
			{{ range .Diagnosis }}{{template "otu" . }}{{ end }}
		{{ else }}
			<p>No OTUs matched this analysis.</p>
		{{ end }}
	</body>
	</html>`

	summaryTmpl := `
	{{define "analysis_summary"}}
		<div>
			<p>Analysis ID: {{ .ID }}</p>
			<p>{{ .OTUCount }} OTUs, {{ .MappedReads }} of {{ .ReadCount }} reads mapped ({{ percent .MappedFraction }}).</p>
		</div>
	{{end}}
	`

	otuTmpl := `
	{{define "otu"}}
		<h2>{{ .Name }}{{ with .Abbreviation }} ({{ . }}){{ end }}</h2>
		<table border="1">
		<tr>
			<th>Weight</th>
			<th>Best hit</th>
			<th>Reads</th>
			<th>Coverage</th>
			<th>Max depth</th>
			<th>Genome length (bp)</th>
		</tr>
		<tr>
			<td>{{ percent .Pi }}</td>
			<td>{{ percent .Best }}</td>
			<td>{{ .Reads }}</td>
			<td>{{ fixed .Coverage }}</td>
			<td>{{ .MaxDepth }}</td>
			<td>{{ .MaxGenomeLength }}</td>
		</tr>
		</table>
		{{ range .Isolates }}
			<h3>{{ .Name }}{{ if .Default }} [default]{{ end }}</h3>
			<table border="1">
			<tr>
				<th>Accession</th>
				<th>Definition</th>
				<th>Weight</th>
				<th>Best hit</th>
				<th>Reads</th>
				<th>Coverage</th>
				<th>Length (bp)</th>
			</tr>
			{{ range .Hits }}
				<tr>
					<td>{{ .Accession }}</td>
					<td>{{ .Definition }}</td>
					<td>{{ percent .Pi }}</td>
					<td>{{ percent .Best }}</td>
					<td>{{ .Reads }}</td>
					<td>{{ fixed .Coverage }}</td>
					<td>{{ len .Align }}</td>
				</tr>
			{{ end }}
			</table>
		{{ end }}
	{{end}}
	`

	funcMap := template.FuncMap{
		"percent": func(v float64) string { return fmt.Sprintf("%.2f%%", v*100) },
		"fixed":   func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}

	analysis_page_template = template.New("analysis_page").Funcs(funcMap)
	analysis_page_template = template.Must(analysis_page_template.Parse(mainTmpl))
	analysis_page_template = template.Must(analysis_page_template.Parse(summaryTmpl))
	analysis_page_template = template.Must(analysis_page_template.Parse(otuTmpl))
}

func RenderAnalysisPage(w io.Writer, analysis *model.EnrichedAnalysis) error {
	logger.Debug("Rendering analysis page", zap.String("id", analysis.ID), zap.Int("otus", len(analysis.Diagnosis)))
	return analysis_page_template.Execute(w, analysis)
}
