package pages

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/infrastructure/browser"
	"excel_automation/infrastructure/pages/pagestest"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const testUsername = "user@example.com"

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testCredentials(t *testing.T) *entities.Credentials {
	t.Helper()
	creds, err := entities.NewCredentials(testUsername, "correct horse")
	require.NoError(t, err)
	return creds
}

func fastLoginTimeouts() LoginTimeouts {
	return LoginTimeouts{
		Interaction: 3 * time.Second,
		Presence:    time.Second,
		Load:        3 * time.Second,
	}
}

func fastSpreadsheetTimeouts() SpreadsheetTimeouts {
	return SpreadsheetTimeouts{
		Interaction: 3 * time.Second,
		Create:      3 * time.Second,
		Load:        3 * time.Second,
		Settle:      100 * time.Millisecond,
		Presence:    500 * time.Millisecond,
	}
}

type harness struct {
	page        playwright.Page
	login       *LoginPage
	spreadsheet *SpreadsheetPage
}

// newHarness opens the fake start page in a fresh browser session.
func newHarness(t *testing.T, opts pagestest.Options) *harness {
	t.Helper()
	office := pagestest.New(t, opts)
	session := pagestest.NewSession(t, office.URL)
	require.NoError(t, session.Goto("/start/Excel.aspx"))

	logger := quietLogger()
	actions := browser.NewActions(logger)
	return &harness{
		page:        session.Page(),
		login:       NewLoginPage(session.Page(), actions, logger).WithTimeouts(fastLoginTimeouts()),
		spreadsheet: NewSpreadsheetPage(session.Page(), actions, logger).WithTimeouts(fastSpreadsheetTimeouts()),
	}
}

// openWorkbook signs in and opens a blank workbook.
func (h *harness) openWorkbook(t *testing.T) playwright.Page {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.login.Login(ctx, testCredentials(t), LoginOptions{}))
	workbook, err := h.spreadsheet.CreateBlankWorkbook(ctx)
	require.NoError(t, err)
	return workbook
}

func urlPath(page playwright.Page) string {
	url := page.URL()
	if i := strings.Index(url, "://"); i >= 0 {
		url = url[i+3:]
	}
	if i := strings.Index(url, "/"); i >= 0 {
		return url[i:]
	}
	return "/"
}
