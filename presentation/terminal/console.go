package terminal

import (
	"fmt"
	"io"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/domain/interfaces"

	"github.com/fatih/color"
)

// ConsoleReporter prints one line per scenario and a closing summary.
type ConsoleReporter struct {
	out io.Writer
}

var _ interfaces.Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter - creates a reporter printing to out
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

func (c *ConsoleReporter) ScenarioStarted(name string) {
	fmt.Fprintf(c.out, "%s %s\n", color.CyanString("RUN "), name)
}

func (c *ConsoleReporter) ScenarioFinished(result entities.ScenarioResult) {
	d := result.Duration.Round(10 * time.Millisecond)
	switch result.Status {
	case entities.ScenarioStatusPassed:
		fmt.Fprintf(c.out, "%s %s (%s)\n", color.GreenString("PASS"), result.Name, d)
	case entities.ScenarioStatusFailed:
		fmt.Fprintf(c.out, "%s %s (%s)\n", color.RedString("FAIL"), result.Name, d)
		fmt.Fprintf(c.out, "     %s\n", result.Error)
		for _, shot := range result.Screenshots {
			fmt.Fprintf(c.out, "     screenshot: %s\n", shot)
		}
	default:
		fmt.Fprintf(c.out, "%s %s: %s\n", color.YellowString("SKIP"), result.Name, result.Error)
	}
}

func (c *ConsoleReporter) RunFinished(run entities.RunSummary) error {
	fmt.Fprintln(c.out)
	if run.SetupError != "" {
		fmt.Fprintf(c.out, "%s %s\n", color.RedString("Setup failed:"), run.SetupError)
	}
	summary := fmt.Sprintf("%d passed, %d failed, %d skipped",
		run.Count(entities.ScenarioStatusPassed),
		run.Count(entities.ScenarioStatusFailed),
		run.Count(entities.ScenarioStatusSkipped))
	if run.Failed() {
		fmt.Fprintf(c.out, "%s %s [%s]\n", color.RedString("✗"), summary, run.Profile)
	} else {
		fmt.Fprintf(c.out, "%s %s [%s]\n", color.GreenString("✓"), summary, run.Profile)
	}
	if run.Video != "" {
		fmt.Fprintf(c.out, "video: %s\n", run.Video)
	}
	return nil
}
