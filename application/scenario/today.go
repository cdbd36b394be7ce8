package scenario

import (
	"context"
	"time"

	"excel_automation/domain/entities"
)

// TodayScenarioName is the title the TODAY() check is reported under.
const TodayScenarioName = "Test-01 Validate the today function in Excel"

// TodayCell is where the formula goes.
const TodayCell = "A1"

// TodayScenario enters =TODAY() into A1 and expects the local date from now
// in M/D/YYYY form.
func TodayScenario(now func() time.Time) Scenario {
	return Scenario{
		Name: TodayScenarioName,
		Run: func(ctx context.Context, f *Fixture) error {
			if err := f.Spreadsheet.EnterFormulaInCell(ctx, f.Workbook, TodayCell, "=TODAY()"); err != nil {
				return err
			}
			if err := f.Spreadsheet.DismissNotification(ctx, f.Workbook); err != nil {
				return err
			}
			return f.Spreadsheet.VerifyCellData(ctx, f.Workbook, TodayCell, entities.DateText(now()))
		},
	}
}
