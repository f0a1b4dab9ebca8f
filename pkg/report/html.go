package report

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/intentlab-dev/iopc/pkg/diag"
	"github.com/intentlab-dev/iopc/pkg/generator"
)

// HTMLConfig configures report.html generation.
type HTMLConfig struct {
	Title      string // default "iopc report"
	OutputPath string // default <outputDir>/report.html
}

// WriteHTML renders the report as a single self-contained HTML page.
func WriteHTML(outputDir string, r *Report, cfg HTMLConfig) error {
	if cfg.Title == "" {
		cfg.Title = "iopc report"
	}
	if cfg.OutputPath == "" {
		cfg.OutputPath = filepath.Join(outputDir, "report.html")
	}

	page, err := renderHTML(buildHTMLData(r, cfg))
	if err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(cfg.OutputPath, []byte(page), 0o644); err != nil {
		return fmt.Errorf("write html: %w", err)
	}
	return nil
}

// HTMLData is the template payload.
type HTMLData struct {
	Title       string
	GeneratedAt string
	Duration    string
	StatusClass string
	Report      *Report
	Systems     []SystemHTMLData
	Diags       []DiagHTMLData
}

// SystemHTMLData is one system formatted for the page.
type SystemHTMLData struct {
	SystemReport
	StatusClass string
	Artifacts   []ArtifactHTMLData
	Diags       []DiagHTMLData
}

// ArtifactHTMLData is one artifact row.
type ArtifactHTMLData struct {
	generator.Artifact
	StatusClass string
}

// DiagHTMLData is one diagnostic line.
type DiagHTMLData struct {
	SevClass string
	Text     string
}

func buildHTMLData(r *Report, cfg HTMLConfig) HTMLData {
	statusClass := map[Status]string{
		StatusSuccess:   "success",
		StatusPartial:   "partial",
		StatusFailed:    "failed",
		StatusCancelled: "cancelled",
	}
	artifactClass := map[generator.Status]string{
		generator.StatusGenerated: "success",
		generator.StatusFailed:    "failed",
		generator.StatusCancelled: "cancelled",
	}

	systems := make([]SystemHTMLData, len(r.Systems))
	for i, s := range r.Systems {
		sd := SystemHTMLData{
			SystemReport: s,
			StatusClass:  statusClass[s.Status],
			Diags:        diagRows(s.Diagnostics),
		}
		for _, a := range s.Artifacts {
			sd.Artifacts = append(sd.Artifacts, ArtifactHTMLData{
				Artifact:    a,
				StatusClass: artifactClass[a.Status],
			})
		}
		systems[i] = sd
	}

	return HTMLData{
		Title:       cfg.Title,
		GeneratedAt: r.EndTime.Format(time.RFC1123),
		Duration:    formatDuration(r.DurationMs),
		StatusClass: statusClass[r.Status],
		Report:      r,
		Systems:     systems,
		Diags:       diagRows(r.Diagnostics),
	}
}

func diagRows(list diag.List) []DiagHTMLData {
	rows := make([]DiagHTMLData, 0, len(list))
	for _, d := range list {
		cls := "warning"
		if d.IsError() {
			cls = "error"
		}
		rows = append(rows, DiagHTMLData{SevClass: cls, Text: d.String()})
	}
	return rows
}

// formatDuration renders milliseconds for display.
func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	return fmt.Sprintf("%.1fs", float64(ms)/1000.0)
}

func renderHTML(data HTMLData) (string, error) {
	tmpl, err := template.New("report").Parse(htmlTemplate)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; margin: 0; background: #f6f7f9; color: #1f2430; }
  header { background: #232936; color: #fff; padding: 20px 32px; }
  header h1 { margin: 0 0 4px; font-size: 20px; }
  header .meta { color: #aab2c0; font-size: 13px; }
  .badge { display: inline-block; padding: 2px 10px; border-radius: 10px; font-size: 12px; font-weight: 600; text-transform: uppercase; }
  .badge.success { background: #1f8a4c; color: #fff; }
  .badge.partial { background: #c77d1a; color: #fff; }
  .badge.failed { background: #c0392b; color: #fff; }
  .badge.cancelled { background: #6b7280; color: #fff; }
  main { padding: 24px 32px; max-width: 1100px; margin: 0 auto; }
  .cards { display: flex; gap: 12px; flex-wrap: wrap; margin-bottom: 24px; }
  .card { background: #fff; border-radius: 8px; padding: 12px 18px; min-width: 96px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
  .card .num { font-size: 22px; font-weight: 700; }
  .card .label { font-size: 12px; color: #6b7280; text-transform: uppercase; }
  section.system { background: #fff; border-radius: 8px; margin-bottom: 20px; box-shadow: 0 1px 2px rgba(0,0,0,.08); overflow: hidden; }
  section.system > h2 { font-size: 16px; margin: 0; padding: 14px 18px; border-bottom: 1px solid #e5e7eb; display: flex; align-items: center; gap: 10px; }
  table { width: 100%; border-collapse: collapse; font-size: 14px; }
  th, td { text-align: left; padding: 8px 18px; border-bottom: 1px solid #f0f1f3; }
  th { color: #6b7280; font-size: 12px; text-transform: uppercase; }
  td.path { font-family: ui-monospace, monospace; font-size: 13px; }
  ul.diags { list-style: none; margin: 0; padding: 10px 18px; }
  ul.diags li { padding: 4px 0; font-size: 13px; font-family: ui-monospace, monospace; }
  ul.diags li.error { color: #c0392b; }
  ul.diags li.warning { color: #c77d1a; }
  .order { padding: 8px 18px 14px; font-size: 13px; color: #6b7280; }
</style>
</head>
<body>
<header>
  <h1>{{.Title}} <span class="badge {{.StatusClass}}">{{.Report.Status}}</span></h1>
  <div class="meta">{{.Report.Tool.Name}} {{.Report.Tool.Version}}{{with .Report.Target}} &middot; target {{.}}{{end}} &middot; {{.Duration}} &middot; {{.GeneratedAt}}</div>
</header>
<main>
  <div class="cards">
    <div class="card"><div class="num">{{.Report.Summary.Systems}}</div><div class="label">systems</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Components}}</div><div class="label">components</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Generated}}</div><div class="label">generated</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Failed}}</div><div class="label">failed</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Cancelled}}</div><div class="label">cancelled</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Errors}}</div><div class="label">errors</div></div>
    <div class="card"><div class="num">{{.Report.Summary.Warnings}}</div><div class="label">warnings</div></div>
  </div>

  {{if .Diags}}
  <section class="system">
    <h2>Run diagnostics</h2>
    <ul class="diags">
      {{range .Diags}}<li class="{{.SevClass}}">{{.Text}}</li>
      {{end}}
    </ul>
  </section>
  {{end}}

  {{range .Systems}}
  <section class="system">
    <h2>{{.Name}} <span class="badge {{.StatusClass}}">{{.Status}}</span></h2>
    {{if .Order}}<div class="order">build order: {{range $i, $n := .Order}}{{if $i}} &rarr; {{end}}{{$n}}{{end}}</div>{{end}}
    {{if .Artifacts}}
    <table>
      <tr><th>component</th><th>status</th><th>path</th><th>size</th><th>error</th></tr>
      {{range .Artifacts}}
      <tr>
        <td>{{.Component}}</td>
        <td><span class="badge {{.StatusClass}}">{{.Status}}</span></td>
        <td class="path">{{.Path}}</td>
        <td>{{if .Size}}{{.Size}} B{{end}}</td>
        <td>{{.Error}}</td>
      </tr>
      {{end}}
    </table>
    {{end}}
    {{if .Diags}}
    <ul class="diags">
      {{range .Diags}}<li class="{{.SevClass}}">{{.Text}}</li>
      {{end}}
    </ul>
    {{end}}
  </section>
  {{end}}
</main>
</body>
</html>
`
