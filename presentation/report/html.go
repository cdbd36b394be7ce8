// Package report renders a finished run as a static HTML page.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// IndexFile is the report entry page inside the report directory.
const IndexFile = "index.html"

// HTMLReporter writes IndexFile when the run finishes. Artifact links are
// relative to the report directory so the folder can be moved as a whole.
type HTMLReporter struct {
	dir    string
	logger *logrus.Logger
	tmpl   *template.Template
}

var _ interfaces.Reporter = (*HTMLReporter)(nil)

// NewHTMLReporter - creates a reporter writing into dir
func NewHTMLReporter(dir string, logger *logrus.Logger) *HTMLReporter {
	r := &HTMLReporter{dir: dir, logger: logger}
	r.tmpl = template.Must(template.New("index").Funcs(template.FuncMap{
		"link":     r.link,
		"duration": formatDuration,
		"time":     func(t time.Time) string { return t.Format(time.RFC1123) },
	}).Parse(indexTemplate))
	return r
}

// Path returns the report entry page.
func (r *HTMLReporter) Path() string {
	return filepath.Join(r.dir, IndexFile)
}

func (r *HTMLReporter) ScenarioStarted(string) {}

func (r *HTMLReporter) ScenarioFinished(entities.ScenarioResult) {}

// RunFinished renders the run.
func (r *HTMLReporter) RunFinished(run entities.RunSummary) error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}

	f, err := os.Create(r.Path())
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	data := struct {
		entities.RunSummary
		Passed, Failed, Skipped int
	}{
		RunSummary: run,
		Passed:     run.Count(entities.ScenarioStatusPassed),
		Failed:     run.Count(entities.ScenarioStatusFailed),
		Skipped:    run.Count(entities.ScenarioStatusSkipped),
	}
	if err := r.tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	r.logger.WithField("path", r.Path()).Info("report written")
	return nil
}

// link turns an artifact path into a URL relative to the report directory.
func (r *HTMLReporter) link(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	dir, err := filepath.Abs(r.dir)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

const indexTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Run {{.ID}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ddd; padding: .5rem; text-align: left; vertical-align: top; }
.passed { color: #1a7f37; } .failed { color: #cf222e; } .skipped { color: #9a6700; }
pre { white-space: pre-wrap; margin: 0; }
</style>
</head>
<body>
<h1>{{.Profile}}</h1>
<p>Run <code>{{.ID}}</code> against {{.BaseURL}}, started {{time .StartedAt}}.</p>
<p><span class="passed">{{.Passed}} passed</span>, <span class="failed">{{.Failed}} failed</span>, <span class="skipped">{{.Skipped}} skipped</span></p>
{{if .SetupError}}<p class="failed">Setup failed: {{.SetupError}}</p>{{end}}
<table>
<thead><tr><th>Scenario</th><th>Status</th><th>Duration</th><th>Details</th></tr></thead>
<tbody>
{{range .Results}}
<tr>
  <td>{{.Name}}</td>
  <td class="{{.Status}}">{{.Status}}</td>
  <td>{{duration .Duration}}</td>
  <td>
    {{if .Error}}<pre>{{.Error}}</pre>{{end}}
    {{range .Screenshots}}<a href="{{link .}}"><img src="{{link .}}" alt="screenshot" width="320"></a>{{end}}
  </td>
</tr>
{{end}}
</tbody>
</table>
{{if .Video}}<h2>Video</h2><video src="{{link .Video}}" controls width="640"></video>{{end}}
</body>
</html>
`
