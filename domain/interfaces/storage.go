package interfaces

import "excel_automation/domain/entities"

// ArtifactStore keeps the files a run leaves behind
type ArtifactStore interface {
	// Dir returns the directory of the current run
	Dir() string

	// ScreenshotPath returns a fresh path for a scenario screenshot
	ScreenshotPath(scenario string, index int) string

	// KeepVideo moves a recorded video into the run directory
	KeepVideo(src string) (string, error)

	// SaveResults persists the run summary
	SaveResults(run entities.RunSummary) error

	// LoadResults loads the run summary
	LoadResults() (entities.RunSummary, error)
}
