package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/microcosm-cc/bluemonday"
)

// ErrUnsupportedFormat is returned by Export for unknown format names.
var ErrUnsupportedFormat = errors.New("report: unsupported export format")

// Formats supported by Export.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// Export renders the latest result set in the requested format. Formats
// never fall back silently: an unknown name returns ErrUnsupportedFormat.
func (r *Reporter) Export(format string) (string, error) {
	r.mu.RLock()
	results := r.results
	summary := r.summary
	r.mu.RUnlock()

	switch format {
	case FormatJSON:
		return exportJSON(results, summary)
	case FormatCSV:
		return exportCSV(results)
	case FormatHTML:
		return exportHTML(results, summary)
	case FormatMarkdown:
		html, err := exportHTML(results, summary)
		if err != nil {
			return "", err
		}
		return exportMarkdown(html)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func exportJSON(results []*Result, summary Summary) (string, error) {
	doc := struct {
		GeneratedAt time.Time `json:"generatedAt"`
		Summary     Summary   `json:"summary"`
		Results     []*Result `json:"results"`
	}{
		GeneratedAt: time.Now(),
		Summary:     summary,
		Results:     results,
	}
	if doc.Results == nil {
		doc.Results = []*Result{}
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("report: encode json export: %w", err)
	}
	return string(b), nil
}

var csvHeader = []string{
	"ruleId", "name", "severity", "category", "wcag",
	"selector", "impact", "message", "location",
}

func exportCSV(results []*Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("report: write csv header: %w", err)
	}
	for _, res := range results {
		row := []string{
			res.RuleID,
			res.Name,
			string(res.Severity),
			string(res.Category),
			res.WCAG,
			res.Selector,
			strconv.FormatFloat(res.Impact, 'f', 1, 64),
			res.Message,
			res.Location,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("report: write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("report: flush csv: %w", err)
	}
	return buf.String(), nil
}

// excerptPolicy strips scripts, event handlers and other active content
// from markup excerpts before they are embedded in the report.
var excerptPolicy = bluemonday.UGCPolicy()

var htmlReport = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Accessibility Audit Report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a2e; }
h1 { border-bottom: 2px solid #1a1a2e; padding-bottom: .5rem; }
.summary { display: flex; gap: 1.5rem; margin: 1rem 0; }
.summary div { padding: .75rem 1.25rem; border-radius: 6px; background: #f0f0f5; }
.summary .n { font-size: 1.6rem; font-weight: 700; display: block; }
table.cats { border-collapse: collapse; margin: 1rem 0; }
table.cats td, table.cats th { border: 1px solid #ccc; padding: .35rem .75rem; text-align: left; }
.violation { border: 1px solid #ddd; border-left-width: 5px; border-radius: 4px; padding: 1rem; margin: 1rem 0; }
.violation.error { border-left-color: #c0392b; }
.violation.warning { border-left-color: #e67e22; }
.violation.info { border-left-color: #2980b9; }
.violation h3 { margin: 0 0 .25rem; }
.meta { color: #555; font-size: .85rem; margin-bottom: .5rem; }
code, pre { background: #f6f6fa; border-radius: 3px; padding: .15rem .35rem; font-size: .85rem; }
pre { padding: .6rem; overflow-x: auto; }
</style>
</head>
<body>
<h1>Accessibility Audit Report</h1>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<div class="summary">
<div><span class="n">{{.Summary.Total}}</span> total</div>
<div><span class="n">{{.Summary.Errors}}</span> errors</div>
<div><span class="n">{{.Summary.Warnings}}</span> warnings</div>
<div><span class="n">{{.Summary.Info}}</span> info</div>
</div>
{{if .Summary.Categories}}
<table class="cats">
<tr><th>Category</th><th>Count</th></tr>
{{range $cat, $n := .Summary.Categories}}<tr><td>{{$cat}}</td><td>{{$n}}</td></tr>
{{end}}</table>
{{end}}
{{range .Results}}
<div class="violation {{.Severity}}">
<h3>{{.Name}}</h3>
<div class="meta">{{.Severity}} · {{.Category}}{{if .WCAG}} · WCAG {{.WCAG}}{{end}} · impact {{printf "%.1f" .Impact}} · {{.Location}}</div>
<p>{{.Message}}</p>
<p><strong>Element:</strong> <code>{{.Selector}}</code> ({{.Purpose}})</p>
{{if .Excerpt}}<pre>{{.Excerpt}}</pre>{{end}}
{{if .Fixes}}<p><strong>How to fix:</strong></p><ul>
{{range .Fixes}}<li>{{.Description}}{{if .Snippet}} <code>{{.Snippet}}</code>{{end}}</li>
{{end}}</ul>{{end}}
<p><em>{{.UserImpact}}</em></p>
</div>
{{else}}
<p>No violations found.</p>
{{end}}
</body>
</html>
`))

func exportHTML(results []*Result, summary Summary) (string, error) {
	// Sanitise excerpts so exported markup never carries active content.
	safe := make([]*Result, len(results))
	for i, res := range results {
		c := *res
		c.Excerpt = excerptPolicy.Sanitize(c.Excerpt)
		safe[i] = &c
	}
	var buf bytes.Buffer
	err := htmlReport.Execute(&buf, struct {
		GeneratedAt time.Time
		Summary     Summary
		Results     []*Result
	}{time.Now(), summary, safe})
	if err != nil {
		return "", fmt.Errorf("report: render html export: %w", err)
	}
	return buf.String(), nil
}

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

func exportMarkdown(html string) (string, error) {
	md, err := mdConverter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("report: convert markdown export: %w", err)
	}
	return md, nil
}
