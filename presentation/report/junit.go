package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"
)

type junitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
	Skipped   *junitSkipped `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

type junitSkipped struct {
	Message string `xml:"message,attr"`
}

// JUnitReporter writes a JUnit XML file for CI systems when the run finishes.
type JUnitReporter struct {
	path string
}

var _ interfaces.Reporter = (*JUnitReporter)(nil)

// NewJUnitReporter - creates a reporter writing to path
func NewJUnitReporter(path string) *JUnitReporter {
	return &JUnitReporter{path: path}
}

func (r *JUnitReporter) ScenarioStarted(string) {}

func (r *JUnitReporter) ScenarioFinished(entities.ScenarioResult) {}

// RunFinished writes the suite. A setup failure is reported as a suite error.
func (r *JUnitReporter) RunFinished(run entities.RunSummary) error {
	suite := junitTestSuite{
		Name:      run.Profile,
		Tests:     len(run.Results),
		Timestamp: run.StartedAt.Format(time.RFC3339),
		Time:      run.FinishedAt.Sub(run.StartedAt).Seconds(),
	}
	if run.FinishedAt.Before(run.StartedAt) {
		suite.Time = 0
	}
	if run.SetupError != "" {
		suite.Errors = 1
	}

	for _, res := range run.Results {
		tc := junitTestCase{
			Name:      res.Name,
			Classname: run.Profile,
			Time:      res.Duration.Seconds(),
		}
		switch res.Status {
		case entities.ScenarioStatusFailed:
			suite.Failures++
			tc.Failure = &junitFailure{
				Message: res.Error,
				Type:    "ScenarioFailure",
				Content: res.Error,
			}
		case entities.ScenarioStatusSkipped:
			suite.Skipped++
			tc.Skipped = &junitSkipped{Message: res.Error}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	file, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if _, err := file.WriteString(xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}
	encoder := xml.NewEncoder(file)
	encoder.Indent("", "  ")
	if err := encoder.Encode(suite); err != nil {
		return fmt.Errorf("failed to encode JUnit XML: %w", err)
	}
	return nil
}
