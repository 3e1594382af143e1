// internal/report/report.go
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"
	"strings"
)

type reportData struct {
	Title        string
	Analysis     Analysis
	AnalysisJSON template.JS
}

// Generate renders a standalone HTML report for the analysis. The analysis is
// also embedded as JSON for client-side use.
func Generate(analysis Analysis) (string, error) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return "", err
	}

	viewModel := reportData{
		Title:        "redqueen: Benchmark Report",
		Analysis:     analysis,
		AnalysisJSON: template.JS(payload),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, viewModel); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportFuncs = template.FuncMap{
	"seconds": formatSeconds,
	"num": func(v float64) string {
		return fmt.Sprintf("%.4g", v)
	},
	"interval": func(s Summary) string {
		if s.Lo == nil || s.Hi == nil {
			return "n/a"
		}
		return fmt.Sprintf("[%.4g, %.4g]", *s.Lo, *s.Hi)
	},
	"metricNames": func(m map[string]Summary) []string {
		names := make([]string, 0, len(m))
		if _, ok := m[TimeMetric]; ok {
			names = append(names, TimeMetric)
		}
		var rest []string
		for name := range m {
			if name != TimeMetric {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		return append(names, rest...)
	},
	"isTime": func(name string) bool { return name == TimeMetric },
	"label": func(k Key) string {
		parts := []string{k.Tool}
		if k.ToolVersion != "" {
			parts = append(parts, k.ToolVersion)
		}
		parts = append(parts, k.Algorithm)
		return strings.Join(parts, " / ")
	},
}

// formatSeconds renders a duration in seconds with a readable unit.
func formatSeconds(v float64) string {
	switch {
	case v == 0:
		return "0s"
	case v < 1e-6:
		return fmt.Sprintf("%.3gns", v*1e9)
	case v < 1e-3:
		return fmt.Sprintf("%.3gµs", v*1e6)
	case v < 1:
		return fmt.Sprintf("%.3gms", v*1e3)
	default:
		return fmt.Sprintf("%.3gs", v)
	}
}

var reportTemplate = template.Must(template.New("benchmark-report").Funcs(reportFuncs).Parse(reportTemplateHTML))

const reportTemplateHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ .Title }}</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css">
  <style>
    :root {
      --primary: #334155;
      --accent: #3B82F6;
      --light: #F1F5F9;
      --text: #0F172A;
      --border: #E2E8F0;
    }
    body { color: var(--text); background: var(--light); }
    header { background: var(--primary); color: #fff; padding: 1.5rem 2rem; }
    section { background: #fff; border: 1px solid var(--border); border-radius: .5rem; margin: 1.5rem 2rem; padding: 1rem 1.5rem; }
    h2 { color: var(--accent); font-size: 1.3rem; }
    td.num { font-variant-numeric: tabular-nums; text-align: right; }
  </style>
</head>
<body>
  <header>
    <h1 class="h3 mb-0">{{ .Title }}</h1>
    <small>{{ .Analysis.Records }} records</small>
  </header>
  {{ range .Analysis.Benchmarks }}
  <section>
    <h2>{{ .Name }}</h2>
    {{ if .Ratios }}
    <h3 class="h6">Relative to {{ .Reference }}</h3>
    <table class="table table-sm">
      <thead><tr><th>Configuration</th><th>Metric</th><th>Median ratio</th><th>95% interval</th><th>N</th></tr></thead>
      <tbody>
      {{ range .Ratios }}
        <tr><td>{{ .Tool }}{{ if .ToolVersion }} {{ .ToolVersion }}{{ end }} / {{ .Algorithm }}</td><td>{{ .Metric }}</td><td class="num">{{ num .Summary.Median }}</td><td class="num">{{ interval .Summary }}</td><td class="num">{{ .Summary.N }}</td></tr>
      {{ end }}
      </tbody>
    </table>
    {{ end }}
    <table class="table table-sm table-striped">
      <thead><tr><th>Configuration</th><th>Instance</th><th>Hardware</th><th>Go</th><th>Metric</th><th>Median</th><th>Min</th><th>Max</th><th>Mean ± sd</th><th>N</th></tr></thead>
      <tbody>
      {{ range $s := .Series }}
        {{ range $name := metricNames $s.Metrics }}{{ with index $s.Metrics $name }}
        <tr>
          <td>{{ label $s.Key }}</td><td>{{ $s.Instance }}</td><td>{{ $s.Hardware }}</td><td>{{ $s.GoVersion }}</td><td>{{ $name }}</td>
          {{ if isTime $name }}
          <td class="num">{{ seconds .Median }}</td><td class="num">{{ seconds .Min }}</td><td class="num">{{ seconds .Max }}</td><td class="num">{{ seconds .Mean }} ± {{ seconds .StdDev }}</td>
          {{ else }}
          <td class="num">{{ num .Median }}</td><td class="num">{{ num .Min }}</td><td class="num">{{ num .Max }}</td><td class="num">{{ num .Mean }} ± {{ num .StdDev }}</td>
          {{ end }}
          <td class="num">{{ .N }}</td>
        </tr>
        {{ end }}{{ end }}
      {{ end }}
      </tbody>
    </table>
  </section>
  {{ end }}
  <script>
    window.redqueenAnalysis = {{ .AnalysisJSON }};
  </script>
</body>
</html>
`
