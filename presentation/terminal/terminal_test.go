package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/infrastructure/storage"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	color.NoColor = true
}

func TestConsoleReporter(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleReporter(&buf)

	c.ScenarioStarted("today")
	c.ScenarioFinished(entities.ScenarioResult{Name: "today", Status: entities.ScenarioStatusPassed, Duration: 1234 * time.Millisecond})
	c.ScenarioFinished(entities.ScenarioResult{
		Name:        "broken",
		Status:      entities.ScenarioStatusFailed,
		Error:       "cell A1 mismatch",
		Screenshots: []string{"shot.png"},
	})
	c.ScenarioFinished(entities.ScenarioResult{Name: "later", Status: entities.ScenarioStatusSkipped, Error: "setup failed"})
	require.NoError(t, c.RunFinished(entities.RunSummary{
		Profile: "Chromium Headless",
		Video:   "video.webm",
		Results: []entities.ScenarioResult{
			{Status: entities.ScenarioStatusPassed},
			{Status: entities.ScenarioStatusFailed},
			{Status: entities.ScenarioStatusSkipped},
		},
	}))

	out := buf.String()
	assert.Contains(t, out, "RUN  today")
	assert.Contains(t, out, "PASS today (1.23s)")
	assert.Contains(t, out, "FAIL broken")
	assert.Contains(t, out, "cell A1 mismatch")
	assert.Contains(t, out, "screenshot: shot.png")
	assert.Contains(t, out, "SKIP later: setup failed")
	assert.Contains(t, out, "✗ 1 passed, 1 failed, 1 skipped [Chromium Headless]")
	assert.Contains(t, out, "video: video.webm")
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"ENV", "BASE_URL", "EXCEL_USERNAME", "EXCEL_PASSWORD", "BROWSER_NAME", "HEADLESS",
		"ACTION_TIMEOUT", "NAVIGATION_TIMEOUT", "SLOW_MO", "ARTIFACTS_DIR", "REPORT_DIR", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestNewTerminalInterface_Overrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("EXCEL_USERNAME=user@example.com\nEXCEL_PASSWORD=secret\n"), 0644))

	ti, err := NewTerminalInterface(dir, Overrides{
		Headed:       true,
		BrowserName:  "firefox",
		ArtifactsDir: "out",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := ti.Config()
	assert.False(t, cfg.Headless)
	assert.Equal(t, "firefox", cfg.BrowserName)
	assert.Equal(t, "out", cfg.ArtifactsDir)
	assert.Equal(t, "Firefox", cfg.Profile())
}

func TestNewTerminalInterface_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := NewTerminalInterface(dir, Overrides{}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "configuration validation failed")

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("EXCEL_USERNAME=user@example.com\nEXCEL_PASSWORD=secret\n"), 0644))
	_, err = NewTerminalInterface(dir, Overrides{BrowserName: "opera"}, &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown browser "opera"`)
}

func TestRenderReport(t *testing.T) {
	root := t.TempDir()
	store, err := storage.NewArtifactStore(filepath.Join(root, "test-results"), "run-42")
	require.NoError(t, err)
	require.NoError(t, store.SaveResults(entities.RunSummary{
		ID:      "run-42",
		Profile: "WebKit",
		Results: []entities.ScenarioResult{{Name: "today", Status: entities.ScenarioStatusPassed}},
	}))

	var buf bytes.Buffer
	reportDir := filepath.Join(root, "playwright-report")
	path, err := RenderReport(store.Dir(), reportDir, &buf)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(reportDir, "index.html"), path)
	html, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(html), "WebKit")
	assert.Contains(t, buf.String(), "run-42")
}

func TestRenderReport_NoResults(t *testing.T) {
	_, err := RenderReport(t.TempDir(), t.TempDir(), &bytes.Buffer{})
	assert.ErrorContains(t, err, "no results saved")
}
