package interfaces

import "excel_automation/domain/entities"

// Reporter receives scenario progress
type Reporter interface {
	// ScenarioStarted is called before a scenario runs
	ScenarioStarted(name string)

	// ScenarioFinished is called with the scenario outcome
	ScenarioFinished(result entities.ScenarioResult)

	// RunFinished is called once after teardown
	RunFinished(run entities.RunSummary) error
}
