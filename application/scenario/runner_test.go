package scenario

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"
	"excel_automation/infrastructure/config"
	"excel_automation/infrastructure/pages"
	"excel_automation/infrastructure/pages/pagestest"
	"excel_automation/infrastructure/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingReporter struct {
	mu       sync.Mutex
	started  []string
	finished []entities.ScenarioResult
	runs     []entities.RunSummary
}

func (r *recordingReporter) ScenarioStarted(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, name)
}

func (r *recordingReporter) ScenarioFinished(result entities.ScenarioResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, result)
}

func (r *recordingReporter) RunFinished(run entities.RunSummary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return nil
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	creds, err := entities.NewCredentials("user@example.com", "correct horse")
	require.NoError(t, err)
	return &config.Config{
		BaseURL:           baseURL,
		Credentials:       creds,
		BrowserName:       config.BrowserChromium,
		Headless:          true,
		ActionTimeout:     5 * time.Second,
		NavigationTimeout: 5 * time.Second,
		ArtifactsDir:      t.TempDir(),
		LogLevel:          logrus.InfoLevel,
	}
}

func newTestRunner(t *testing.T, cfg *config.Config, reporters ...*recordingReporter) *Runner {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := storage.NewArtifactStore(cfg.ArtifactsDir, "run-test")
	require.NoError(t, err)

	var reps []interfaces.Reporter
	for _, r := range reporters {
		reps = append(reps, r)
	}
	return NewRunner(cfg, logger, store, reps...).WithTimeouts(
		pages.LoginTimeouts{Interaction: 3 * time.Second, Presence: time.Second, Load: 3 * time.Second},
		pages.SpreadsheetTimeouts{
			Interaction: 3 * time.Second,
			Create:      3 * time.Second,
			Load:        3 * time.Second,
			Settle:      100 * time.Millisecond,
			Presence:    500 * time.Millisecond,
		},
	)
}

// requireBrowser skips the test when Playwright cannot launch Chromium.
func requireBrowser(t *testing.T) {
	t.Helper()
	pagestest.NewSession(t, "")
}

func TestRunner_MissingCredentials(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Credentials = nil
	reporter := &recordingReporter{}
	runner := newTestRunner(t, cfg, reporter)

	err := runner.Setup(context.Background())
	require.ErrorIs(t, err, entities.ErrMissingCredentials)
	assert.Nil(t, runner.Fixture())

	results := runner.Run(context.Background(), TodayScenario(time.Now))
	require.Len(t, results, 1)
	assert.Equal(t, entities.ScenarioStatusSkipped, results[0].Status)
	assert.Equal(t, ErrSetupFailed.Error(), results[0].Error)

	run, err := runner.Teardown()
	require.NoError(t, err)
	assert.True(t, run.Failed())
	assert.Equal(t, "run-test", run.ID)
	assert.Equal(t, "Chromium Headless", run.Profile)
	assert.FileExists(t, filepath.Join(cfg.ArtifactsDir, "run-test", "results.json"))

	assert.Equal(t, []string{TodayScenarioName}, reporter.started)
	require.Len(t, reporter.runs, 1)
}

func TestRunner_SkipsWithoutWorkbook(t *testing.T) {
	runner := newTestRunner(t, testConfig(t, "http://127.0.0.1:1"))
	runner.fixture = &Fixture{}

	results := runner.Run(context.Background(), Scenario{Name: "never", Run: func(context.Context, *Fixture) error {
		t.Fatal("scenario must not run")
		return nil
	}})
	require.Len(t, results, 1)
	assert.Equal(t, entities.ScenarioStatusSkipped, results[0].Status)
}

type panickingReporter struct{ recordingReporter }

func (p *panickingReporter) ScenarioStarted(string) {
	panic("reporter exploded")
}

func TestRunner_ExecuteTearsDownOnPanic(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Credentials = nil
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	store, err := storage.NewArtifactStore(cfg.ArtifactsDir, "run-test")
	require.NoError(t, err)

	reporter := &panickingReporter{}
	runner := NewRunner(cfg, logger, store, reporter)

	assert.PanicsWithValue(t, "reporter exploded", func() {
		_, _ = runner.Execute(context.Background(), TodayScenario(time.Now))
	})
	assert.FileExists(t, filepath.Join(store.Dir(), "results.json"))
	require.Len(t, reporter.runs, 1)
	assert.Equal(t, entities.ErrMissingCredentials.Error(), reporter.runs[0].SetupError)
}

func TestRunner_InvokeRecoversPanic(t *testing.T) {
	runner := newTestRunner(t, testConfig(t, "http://127.0.0.1:1"))

	err := runner.invoke(context.Background(), Scenario{Name: "panics", Run: func(context.Context, *Fixture) error {
		panic("nil workbook")
	}})
	require.ErrorIs(t, err, ErrScenarioPanicked)
	assert.Contains(t, err.Error(), "nil workbook")

	err = runner.invoke(context.Background(), Scenario{Name: "fails", Run: func(context.Context, *Fixture) error {
		return errors.New("boom")
	}})
	assert.EqualError(t, err, "boom")
}

func TestRunner_TodayPasses(t *testing.T) {
	requireBrowser(t)
	office := pagestest.New(t, pagestest.Options{StaySignedIn: true, Notification: true})
	cfg := testConfig(t, office.URL)
	reporter := &recordingReporter{}
	runner := newTestRunner(t, cfg, reporter)

	run, err := runner.Execute(context.Background(), TodayScenario(time.Now))
	require.NoError(t, err)

	assert.Empty(t, run.SetupError)
	require.Len(t, run.Results, 1)
	assert.Equal(t, entities.ScenarioStatusPassed, run.Results[0].Status, run.Results[0].Error)
	assert.Empty(t, run.Results[0].Screenshots)
	assert.Empty(t, run.Video)
	assert.False(t, run.Failed())

	require.Len(t, reporter.finished, 1)
	assert.Equal(t, entities.ScenarioStatusPassed, reporter.finished[0].Status)
}

func TestRunner_FailureKeepsArtifacts(t *testing.T) {
	requireBrowser(t)
	office := pagestest.New(t, pagestest.Options{})
	cfg := testConfig(t, office.URL)
	runner := newTestRunner(t, cfg)

	yesterday := func() time.Time { return time.Now().AddDate(0, 0, -1) }
	failing := Scenario{Name: "broken step", Run: func(context.Context, *Fixture) error {
		return errors.New("boom")
	}}

	run, err := runner.Execute(context.Background(), TodayScenario(yesterday), failing)
	require.NoError(t, err)

	require.Len(t, run.Results, 2)
	today := run.Results[0]
	assert.Equal(t, entities.ScenarioStatusFailed, today.Status)
	assert.Contains(t, today.Error, "cell A1")
	require.NotEmpty(t, today.Screenshots)
	for _, shot := range today.Screenshots {
		assert.FileExists(t, shot)
	}
	assert.Equal(t, "boom", run.Results[1].Error)

	require.NotEmpty(t, run.Video)
	assert.FileExists(t, run.Video)
	assert.Equal(t, filepath.Join(cfg.ArtifactsDir, "run-test"), filepath.Dir(run.Video))
}

func TestRunner_SetupFailureSkipsScenarios(t *testing.T) {
	requireBrowser(t)
	office := pagestest.New(t, pagestest.Options{DisplayName: "someone.else@example.com"})
	cfg := testConfig(t, office.URL)
	runner := newTestRunner(t, cfg)

	run, err := runner.Execute(context.Background(), TodayScenario(time.Now))
	require.NoError(t, err)

	assert.Contains(t, run.SetupError, "does not match provided username")
	require.Len(t, run.Results, 1)
	assert.Equal(t, entities.ScenarioStatusSkipped, run.Results[0].Status)

	entries, err := os.ReadDir(filepath.Join(cfg.ArtifactsDir, "run-test"))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "setup-page-0.png")
	assert.Contains(t, names, "results.json")
}
