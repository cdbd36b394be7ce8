package entities

import "time"

// ScenarioStatus represents the outcome of a scenario
type ScenarioStatus string

const (
	ScenarioStatusPending ScenarioStatus = "pending"
	ScenarioStatusPassed  ScenarioStatus = "passed"
	ScenarioStatusFailed  ScenarioStatus = "failed"
	ScenarioStatusSkipped ScenarioStatus = "skipped"
)

// ScenarioResult records a single scenario execution
type ScenarioResult struct {
	Name        string         `json:"name"`
	Status      ScenarioStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	Duration    time.Duration  `json:"duration"`
	Screenshots []string       `json:"screenshots,omitempty"`
}

// RunSummary is everything persisted about one run
type RunSummary struct {
	ID         string           `json:"id"`
	Profile    string           `json:"profile"`
	BaseURL    string           `json:"base_url"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	SetupError string           `json:"setup_error,omitempty"`
	Video      string           `json:"video,omitempty"`
	Results    []ScenarioResult `json:"results"`
}

// Failed reports whether setup or any scenario failed.
func (r RunSummary) Failed() bool {
	if r.SetupError != "" {
		return true
	}
	for _, res := range r.Results {
		if res.Status == ScenarioStatusFailed {
			return true
		}
	}
	return false
}

// Count returns how many results have the given status.
func (r RunSummary) Count(status ScenarioStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}
