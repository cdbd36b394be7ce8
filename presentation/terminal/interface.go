// Package terminal is the command-line front end: it builds the run from the
// environment and prints progress to the console.
package terminal

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"excel_automation/application/scenario"
	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"
	"excel_automation/infrastructure/config"
	"excel_automation/infrastructure/security"
	"excel_automation/infrastructure/storage"
	"excel_automation/presentation/report"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Overrides are command-line values that win over the environment.
type Overrides struct {
	Headed       bool
	BrowserName  string
	ArtifactsDir string
	JUnitPath    string
}

type TerminalInterface struct {
	cfg       *config.Config
	logger    *logrus.Logger
	out       io.Writer
	junitPath string
}

// NewTerminalInterface - loads configuration from dir and applies overrides.
// Missing credentials fail here, before any browser is launched.
func NewTerminalInterface(dir string, o Overrides, out io.Writer) (*TerminalInterface, error) {
	cfg, err := config.LoadFrom(dir)
	if err != nil {
		return nil, err
	}
	if o.Headed {
		cfg.Headless = false
	}
	if o.BrowserName != "" {
		switch o.BrowserName {
		case config.BrowserChromium, config.BrowserFirefox, config.BrowserWebKit:
			cfg.BrowserName = o.BrowserName
		default:
			return nil, fmt.Errorf("unknown browser %q", o.BrowserName)
		}
	}
	if o.ArtifactsDir != "" {
		cfg.ArtifactsDir = o.ArtifactsDir
	}

	logger := cfg.NewLogger()
	logger.AddHook(security.NewRedactHook(cfg.Credentials.Password()))
	if cfg.EnvFile != "" {
		logger.WithField("file", cfg.EnvFile).Debug("environment file loaded")
	}

	return &TerminalInterface{
		cfg:       cfg,
		logger:    logger,
		out:       out,
		junitPath: o.JUnitPath,
	}, nil
}

// Config returns the effective configuration.
func (t *TerminalInterface) Config() *config.Config {
	return t.cfg
}

// Run executes every scenario once and returns the summary. A failed run is
// not an error; callers check RunSummary.Failed.
func (t *TerminalInterface) Run(ctx context.Context) (entities.RunSummary, error) {
	runID := fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), uuid.NewString()[:8])
	store, err := storage.NewArtifactStore(t.cfg.ArtifactsDir, runID)
	if err != nil {
		return entities.RunSummary{}, err
	}

	reporters := []interfaces.Reporter{
		NewConsoleReporter(t.out),
		report.NewHTMLReporter(t.cfg.ReportDir, t.logger),
	}
	if t.junitPath != "" {
		reporters = append(reporters, report.NewJUnitReporter(t.junitPath))
	}

	fmt.Fprintf(t.out, "Running against %s [%s]\n\n", t.cfg.BaseURL, t.cfg.Profile())
	runner := scenario.NewRunner(t.cfg, t.logger, store, reporters...)
	return runner.Execute(ctx, scenario.TodayScenario(time.Now))
}

// RenderReport rebuilds the HTML report of a finished run from the
// results.json saved in runDir.
func RenderReport(runDir, reportDir string, out io.Writer) (string, error) {
	store, err := storage.NewArtifactStore(filepath.Dir(runDir), filepath.Base(runDir))
	if err != nil {
		return "", err
	}
	run, err := store.LoadResults()
	if err != nil {
		return "", err
	}
	if run.ID == "" {
		return "", fmt.Errorf("no results saved in %s", runDir)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	reporter := report.NewHTMLReporter(reportDir, logger)
	if err := reporter.RunFinished(run); err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Report for run %s written to %s\n", run.ID, reporter.Path())
	return reporter.Path(), nil
}
