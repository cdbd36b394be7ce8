// Package scenario runs browser scenarios against one signed-in workbook and
// records what happened to each of them.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"
	"excel_automation/infrastructure/browser"
	"excel_automation/infrastructure/config"
	"excel_automation/infrastructure/pages"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// StartPath is where every run begins, relative to the base URL.
const StartPath = "/start/Excel.aspx"

const setupName = "setup"

var (
	// ErrSetupFailed marks scenarios skipped because the fixture never came up.
	ErrSetupFailed = errors.New("setup failed")

	// ErrScenarioPanicked wraps a panic raised by a scenario.
	ErrScenarioPanicked = errors.New("scenario panicked")
)

// Scenario is one named check run against the fixture.
type Scenario struct {
	Name string
	Run  func(ctx context.Context, f *Fixture) error
}

// Fixture is the state every scenario of a run shares.
type Fixture struct {
	Config      *config.Config
	Logger      *logrus.Logger
	Session     *browser.Session
	Login       *pages.LoginPage
	Spreadsheet *pages.SpreadsheetPage
	Workbook    playwright.Page
}

// Runner owns the fixture lifecycle: Setup, Run, then Teardown.
type Runner struct {
	cfg       *config.Config
	logger    *logrus.Logger
	store     interfaces.ArtifactStore
	reporters []interfaces.Reporter

	loginTimeouts       pages.LoginTimeouts
	spreadsheetTimeouts pages.SpreadsheetTimeouts

	fixture *Fixture
	run     entities.RunSummary
}

// NewRunner - creates a runner writing artifacts to store
func NewRunner(cfg *config.Config, logger *logrus.Logger, store interfaces.ArtifactStore, reporters ...interfaces.Reporter) *Runner {
	return &Runner{
		cfg:                 cfg,
		logger:              logger,
		store:               store,
		reporters:           reporters,
		loginTimeouts:       pages.DefaultLoginTimeouts(),
		spreadsheetTimeouts: pages.DefaultSpreadsheetTimeouts(),
		run: entities.RunSummary{
			ID:      filepath.Base(store.Dir()),
			Profile: cfg.Profile(),
			BaseURL: cfg.BaseURL,
		},
	}
}

// WithTimeouts replaces the page object timeouts.
func (r *Runner) WithTimeouts(login pages.LoginTimeouts, spreadsheet pages.SpreadsheetTimeouts) *Runner {
	r.loginTimeouts = login
	r.spreadsheetTimeouts = spreadsheet
	return r
}

// Fixture returns the fixture built by Setup, nil before it.
func (r *Runner) Fixture() *Fixture {
	return r.fixture
}

// Setup launches the browser, signs in and opens a blank workbook. On failure
// the fixture stays partially built so Teardown can still release it.
func (r *Runner) Setup(ctx context.Context) error {
	r.run.StartedAt = time.Now()
	if err := r.setup(ctx); err != nil {
		r.run.SetupError = err.Error()
		r.logger.WithError(err).Error("setup failed")
		if r.fixture != nil {
			r.screenshot(setupName)
		}
		return err
	}
	return nil
}

func (r *Runner) setup(ctx context.Context) error {
	if r.cfg.Credentials == nil {
		return entities.ErrMissingCredentials
	}

	session, err := browser.Launch(browser.OptionsFromConfig(r.cfg), r.logger)
	if err != nil {
		return err
	}

	actions := browser.NewActions(r.logger)
	r.fixture = &Fixture{
		Config:      r.cfg,
		Logger:      r.logger,
		Session:     session,
		Login:       pages.NewLoginPage(session.Page(), actions, r.logger).WithTimeouts(r.loginTimeouts),
		Spreadsheet: pages.NewSpreadsheetPage(session.Page(), actions, r.logger).WithTimeouts(r.spreadsheetTimeouts),
	}

	if err := session.Goto(StartPath); err != nil {
		return err
	}
	if err := r.fixture.Login.Login(ctx, r.cfg.Credentials, pages.LoginOptions{}); err != nil {
		return err
	}
	workbook, err := r.fixture.Spreadsheet.CreateBlankWorkbook(ctx)
	if err != nil {
		return err
	}
	r.fixture.Workbook = workbook
	return nil
}

// Run executes scenarios in order. When setup failed every scenario is
// reported as skipped.
func (r *Runner) Run(ctx context.Context, scenarios ...Scenario) []entities.ScenarioResult {
	results := make([]entities.ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		result := r.runOne(ctx, s)
		results = append(results, result)
		r.run.Results = append(r.run.Results, result)
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, s Scenario) entities.ScenarioResult {
	for _, rep := range r.reporters {
		rep.ScenarioStarted(s.Name)
	}

	result := entities.ScenarioResult{
		Name:      s.Name,
		Status:    entities.ScenarioStatusPending,
		StartedAt: time.Now(),
	}
	log := r.logger.WithField("scenario", s.Name)

	switch {
	case r.run.SetupError != "" || r.fixture == nil || r.fixture.Workbook == nil:
		result.Status = entities.ScenarioStatusSkipped
		result.Error = ErrSetupFailed.Error()
		log.Warn("scenario skipped")
	case ctx.Err() != nil:
		result.Status = entities.ScenarioStatusSkipped
		result.Error = ctx.Err().Error()
		log.Warn("scenario skipped")
	default:
		log.Info("scenario started")
		if err := r.invoke(ctx, s); err != nil {
			result.Status = entities.ScenarioStatusFailed
			result.Error = err.Error()
			result.Screenshots = r.screenshot(s.Name)
			log.WithError(err).Error("scenario failed")
		} else {
			result.Status = entities.ScenarioStatusPassed
			log.Info("scenario passed")
		}
	}
	result.Duration = time.Since(result.StartedAt)

	for _, rep := range r.reporters {
		rep.ScenarioFinished(result)
	}
	return result
}

// invoke runs s and turns a panic into a scenario failure.
func (r *Runner) invoke(ctx context.Context, s Scenario) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrScenarioPanicked, p)
		}
	}()
	return s.Run(ctx, r.fixture)
}

func (r *Runner) screenshot(name string) []string {
	shots, err := r.fixture.Session.Screenshot(func(index int) string {
		return r.store.ScreenshotPath(name, index)
	})
	if err != nil {
		r.logger.WithError(err).WithField("scenario", name).Warn("screenshot failed")
	}
	return shots
}

// Teardown closes the session, keeps the video only when something failed,
// saves results.json and notifies the reporters. It is safe after a failed
// Setup and returns every error it met.
func (r *Runner) Teardown() (entities.RunSummary, error) {
	var errs []error

	failed := r.run.Failed()
	if r.fixture != nil && r.fixture.Session != nil {
		var keep func(string) (string, error)
		if failed {
			keep = r.store.KeepVideo
		}
		kept, err := r.fixture.Session.Close(keep)
		if err != nil {
			errs = append(errs, err)
		}
		if len(kept) > 0 {
			r.run.Video = kept[0]
		}
		r.fixture.Session = nil
	}
	r.run.FinishedAt = time.Now()

	if err := r.store.SaveResults(r.run); err != nil {
		errs = append(errs, fmt.Errorf("failed to save results: %w", err))
	}
	for _, rep := range r.reporters {
		if err := rep.RunFinished(r.run); err != nil {
			errs = append(errs, err)
		}
	}

	r.logger.WithFields(logrus.Fields{
		"passed":  r.run.Count(entities.ScenarioStatusPassed),
		"failed":  r.run.Count(entities.ScenarioStatusFailed),
		"skipped": r.run.Count(entities.ScenarioStatusSkipped),
	}).Info("run finished")
	return r.run, errors.Join(errs...)
}

// Execute runs the whole lifecycle. The setup error is recorded in the summary
// rather than returned. Teardown runs even when a step panics.
func (r *Runner) Execute(ctx context.Context, scenarios ...Scenario) (run entities.RunSummary, err error) {
	defer func() {
		run, err = r.Teardown()
	}()

	_ = r.Setup(ctx)
	r.Run(ctx, scenarios...)
	return run, err
}
