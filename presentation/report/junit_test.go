package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"excel_automation/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJUnitReporter_RunFinished(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "junit.xml")
	started := time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

	run := entities.RunSummary{
		Profile:    "Chromium Headless",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Results: []entities.ScenarioResult{
			{Name: "passes", Status: entities.ScenarioStatusPassed, Duration: time.Second},
			{Name: "fails", Status: entities.ScenarioStatusFailed, Error: "cell A1 mismatch"},
			{Name: "skips", Status: entities.ScenarioStatusSkipped, Error: "setup failed"},
		},
	}
	require.NoError(t, NewJUnitReporter(path).RunFinished(run))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > len(xml.Header))
	assert.Equal(t, xml.Header, string(data[:len(xml.Header)]))

	var suite junitTestSuite
	require.NoError(t, xml.Unmarshal(data, &suite))
	assert.Equal(t, "Chromium Headless", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, 0, suite.Errors)
	assert.InDelta(t, 90, suite.Time, 0.001)
	require.Len(t, suite.TestCases, 3)
	assert.Nil(t, suite.TestCases[0].Failure)
	require.NotNil(t, suite.TestCases[1].Failure)
	assert.Equal(t, "cell A1 mismatch", suite.TestCases[1].Failure.Message)
	require.NotNil(t, suite.TestCases[2].Skipped)
}

func TestJUnitReporter_SetupError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junit.xml")
	require.NoError(t, NewJUnitReporter(path).RunFinished(entities.RunSummary{SetupError: "boom"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var suite junitTestSuite
	require.NoError(t, xml.Unmarshal(data, &suite))
	assert.Equal(t, 1, suite.Errors)
	assert.Zero(t, suite.Tests)
}
