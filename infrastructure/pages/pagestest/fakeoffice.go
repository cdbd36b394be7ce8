// Package pagestest serves a small imitation of the hosted sign-in and workbook
// screens so the page objects can run against a real browser without an account.
package pagestest

import (
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"excel_automation/infrastructure/browser"

	"github.com/sirupsen/logrus"
)

const signedInCookie = "fake_office_signed_in"

// Options shape the screens the fake serves.
type Options struct {
	// DisplayName is shown after the email step. Empty echoes the entered email.
	DisplayName string
	// BrokenEmailScreen renders the email step without its header.
	BrokenEmailScreen bool
	// BrokenPasswordScreen keeps the email header on the password step.
	BrokenPasswordScreen bool

	// StaySignedIn shows the interstitial after the password step.
	StaySignedIn bool
	// StaySignedInTitle overrides the interstitial title.
	StaySignedInTitle string
	// HideAcceptButton renders the interstitial accept button hidden.
	HideAcceptButton bool

	// Notification shows a dismissible banner inside the workbook frame.
	Notification bool
	// UnlabeledCell renders that cell without an accessible label.
	UnlabeledCell string
}

// Cells rendered in the fake grid.
var Cells = []string{"A1", "B1", "A2", "B2"}

// FakeOffice is a running fake of the hosted spreadsheet service.
type FakeOffice struct {
	*httptest.Server
	opts Options
}

// New starts the fake and closes it when the test ends.
func New(t testing.TB, opts Options) *FakeOffice {
	t.Helper()

	if opts.StaySignedInTitle == "" {
		opts.StaySignedInTitle = "Stay signed in?"
	}
	f := &FakeOffice{opts: opts}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /start/Excel.aspx", f.start)
	mux.HandleFunc("GET /login", f.login)
	mux.HandleFunc("GET /kmsi", f.kmsi)
	mux.HandleFunc("GET /workbook", f.workbook)
	mux.HandleFunc("GET /workbook/frame", f.frame)

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

// NewSession launches a headless Chromium session against baseURL. The test is
// skipped when Playwright or its browsers are not installed.
func NewSession(t testing.TB, baseURL string) *browser.Session {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	session, err := browser.Launch(browser.Options{
		BrowserName:       "chromium",
		Headless:          true,
		BaseURL:           baseURL,
		ActionTimeout:     5 * time.Second,
		NavigationTimeout: 5 * time.Second,
	}, logger)
	if err != nil {
		t.Skip("Playwright not available:", err)
	}
	t.Cleanup(func() {
		_, _ = session.Close(nil)
	})
	return session
}

func (f *FakeOffice) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (f *FakeOffice) start(w http.ResponseWriter, r *http.Request) {
	_, err := r.Cookie(signedInCookie)
	f.render(w, startTemplate, struct{ SignedIn bool }{SignedIn: err == nil})
}

func (f *FakeOffice) login(w http.ResponseWriter, r *http.Request) {
	cfg, _ := json.Marshal(map[string]any{
		"displayName":    f.opts.DisplayName,
		"kmsi":           f.opts.StaySignedIn,
		"passwordHeader": !f.opts.BrokenPasswordScreen,
		"cookie":         signedInCookie,
	})
	header := "Sign in"
	if f.opts.BrokenEmailScreen {
		header = "Something went wrong"
	}
	f.render(w, loginTemplate, struct {
		Header string
		Config template.JS
	}{Header: header, Config: template.JS(cfg)})
}

func (f *FakeOffice) kmsi(w http.ResponseWriter, r *http.Request) {
	f.render(w, kmsiTemplate, f.opts)
}

func (f *FakeOffice) workbook(w http.ResponseWriter, r *http.Request) {
	f.render(w, workbookTemplate, nil)
}

func (f *FakeOffice) frame(w http.ResponseWriter, r *http.Request) {
	f.render(w, frameTemplate, struct {
		Options
		Cells []string
	}{Options: f.opts, Cells: Cells})
}

var startTemplate = template.Must(template.New("start").Parse(`<!doctype html>
<html><head><title>Excel</title></head>
<body>
{{if .SignedIn}}
  <h1>Create new</h1>
  <div role="button" aria-label="Blank workbook" style="width:120px;height:80px;border:1px solid #999"
       onclick="window.open('/workbook', '_blank')">Blank workbook</div>
{{else}}
  <h1>Excel</h1>
  <button type="button" onclick="window.location.href='/login'">Sign in</button>
{{end}}
</body></html>`))

var loginTemplate = template.Must(template.New("login").Parse(`<!doctype html>
<html><head><title>Sign in to your account</title></head>
<body>
<div id="loginHeader">{{.Header}}</div>
<div id="emailStep">
  <input type="email" name="loginfmt" aria-label="Email">
  <input type="submit" value="Next">
</div>
<div id="passwordStep" style="display:none">
  <div id="userDisplayName"></div>
  <input type="password" name="passwd" aria-label="Password">
  <button type="submit">Sign in</button>
</div>
<script>
const cfg = {{.Config}};
document.querySelector('input[type="submit"]').addEventListener('click', function () {
  const email = document.querySelector('input[type="email"]').value;
  document.getElementById('userDisplayName').textContent = ' ' + (cfg.displayName || email) + ' ';
  document.getElementById('emailStep').style.display = 'none';
  document.getElementById('passwordStep').style.display = 'block';
  if (cfg.passwordHeader) {
    document.getElementById('loginHeader').textContent = 'Enter password';
  }
});
document.querySelector('button[type="submit"]').addEventListener('click', function () {
  document.cookie = cfg.cookie + '=1; path=/';
  window.location.href = cfg.kmsi ? '/kmsi' : '/start/Excel.aspx';
});
</script>
</body></html>`))

var kmsiTemplate = template.Must(template.New("kmsi").Parse(`<!doctype html>
<html><head><title>Sign in to your account</title></head>
<body>
<div id="kmsiTitle"> {{.StaySignedInTitle}} </div>
<div data-testid="textButtonContainer">
  <button type="button" id="declineButton" onclick="window.location.href='/start/Excel.aspx'">No</button>
  <button type="button" id="acceptButton" {{if .HideAcceptButton}}style="display:none"{{end}}
          onclick="window.location.href='/start/Excel.aspx'">Yes</button>
</div>
</body></html>`))

var workbookTemplate = template.Must(template.New("workbook").Parse(`<!doctype html>
<html><head><title>Book1.xlsx</title></head>
<body>
<iframe id="WacFrame_Excel_0" src="/workbook/frame" style="width:1200px;height:600px;border:0"></iframe>
</body></html>`))

var frameTemplate = template.Must(template.New("frame").Parse(`<!doctype html>
<html><head><title>Workbook frame</title></head>
<body>
<div id="AdditionalBars">
  <input id="FormulaBar-NameBox-input" value="A1">
  <div id="formulaBarTextDivId" contenteditable="true" style="display:inline-block;min-width:300px;min-height:20px;border:1px solid #999"></div>
  <input id="FontSize-input" value="11">
</div>
{{if .Notification}}
<div id="notification">
  <span>Welcome to your new workbook</span>
  <button type="button" class="ms-Button" aria-label="Close" onclick="this.parentElement.remove()">x</button>
</div>
{{end}}
<div id="grid">
{{range .Cells}}
  {{if eq . $.UnlabeledCell}}<label data-cell="{{.}}"></label>{{else}}<label data-cell="{{.}}" aria-label="Cell {{.}}"></label>{{end}}
{{end}}
</div>
<script>
let active = 'A1';
const nameBox = document.getElementById('FormulaBar-NameBox-input');
const formula = document.getElementById('formulaBarTextDivId');
const fontSize = document.getElementById('FontSize-input');

nameBox.addEventListener('keydown', function (e) {
  if (e.key === 'Enter') {
    active = nameBox.value.trim().toUpperCase();
  }
});

function evaluate(text) {
  if (text.trim().toUpperCase() === '=TODAY()') {
    const d = new Date();
    return (d.getMonth() + 1) + '/' + d.getDate() + '/' + d.getFullYear();
  }
  return text.trim();
}

formula.addEventListener('keydown', function (e) {
  if (e.key === 'Enter' && e.ctrlKey) {
    e.preventDefault();
    const cell = document.querySelector('label[data-cell="' + active + '"]');
    if (cell) {
      const value = evaluate(formula.textContent);
      cell.textContent = value;
      cell.setAttribute('aria-label', value + ' . Cell ' + active);
    }
    formula.textContent = '';
  }
});

fontSize.addEventListener('keydown', function (e) {
  if (e.key === 'Enter') {
    document.getElementById('grid').style.fontSize = fontSize.value + 'pt';
  }
});
</script>
</body></html>`))
