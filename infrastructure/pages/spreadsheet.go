package pages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"excel_automation/domain/entities"
	"excel_automation/infrastructure/browser"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// WorkbookFrame is the iframe the spreadsheet grid is rendered in.
const WorkbookFrame = "#WacFrame_Excel_0"

var (
	ErrWorkbookLoad     = fmt.Errorf("the new Excel page did not load correctly: %w", browser.ErrNotLoaded)
	ErrWorkbookNotReady = errors.New("workbook name box did not become visible")
	ErrFontSizeInput    = errors.New("font size input did not become visible")
)

// CellMismatchError is returned when a cell shows something other than expected.
type CellMismatchError struct {
	Cell     string
	Expected string
	Actual   string
}

func (e *CellMismatchError) Error() string {
	return fmt.Sprintf("cell %s: expected %q, got %q", e.Cell, e.Expected, e.Actual)
}

var excelLocators = struct {
	createBlankWorkbookButton string
	cellInputSelector         string
	formulaInputSelector      string
	autoFontSize              string
	closeNotification         string
}{
	createBlankWorkbookButton: `div[aria-label="Blank workbook"]`,
	cellInputSelector:         `input#FormulaBar-NameBox-input`,
	formulaInputSelector:      `#formulaBarTextDivId`,
	autoFontSize:              `#FontSize-input`,
	closeNotification:         `button.ms-Button[aria-label="Close"]`,
}

// labelFontSize shrinks the grid so accessible labels stay short and stable.
const labelFontSize = "8"

// SpreadsheetTimeouts bound each kind of wait in the workbook flows.
type SpreadsheetTimeouts struct {
	Interaction time.Duration // waits inside the workbook frame
	Create      time.Duration // create button visibility and new tab
	Load        time.Duration // new tab load event
	Settle      time.Duration // pause before looking for notifications
	Presence    time.Duration // optional notification check
}

// DefaultSpreadsheetTimeouts returns the timeouts the hosted workbook needs.
func DefaultSpreadsheetTimeouts() SpreadsheetTimeouts {
	return SpreadsheetTimeouts{
		Interaction: 10 * time.Second,
		Create:      30 * time.Second,
		Load:        browser.DefaultLoadTimeout,
		Settle:      2 * time.Second,
		Presence:    browser.DefaultVisibleTimeout,
	}
}

// SpreadsheetPage drives the start page and the workbooks opened from it.
type SpreadsheetPage struct {
	page     playwright.Page
	actions  *browser.Actions
	logger   *logrus.Logger
	timeouts SpreadsheetTimeouts
}

// NewSpreadsheetPage - creates the spreadsheet page object for the start page
func NewSpreadsheetPage(page playwright.Page, actions *browser.Actions, logger *logrus.Logger) *SpreadsheetPage {
	return &SpreadsheetPage{
		page:     page,
		actions:  actions,
		logger:   logger,
		timeouts: DefaultSpreadsheetTimeouts(),
	}
}

// WithTimeouts replaces the default timeouts.
func (s *SpreadsheetPage) WithTimeouts(t SpreadsheetTimeouts) *SpreadsheetPage {
	s.timeouts = t
	return s
}

// CreateBlankWorkbook clicks the blank workbook tile and returns the tab the
// workbook opens in, once that tab has loaded.
func (s *SpreadsheetPage) CreateBlankWorkbook(ctx context.Context) (playwright.Page, error) {
	start := browser.OnPage(s.page)

	s.logger.Info("creating blank workbook")
	workbook, err := s.page.Context().ExpectPage(func() error {
		return s.actions.Click(ctx, start, browser.Sel(excelLocators.createBlankWorkbookButton), s.timeouts.Create)
	}, playwright.BrowserContextExpectPageOptions{
		Timeout: playwright.Float(float64((s.timeouts.Create + s.timeouts.Load).Milliseconds())),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open blank workbook: %w", err)
	}

	if !s.actions.HasPageLoaded(ctx, workbook, s.timeouts.Load) {
		return nil, ErrWorkbookLoad
	}
	s.logger.WithField("url", workbook.URL()).Info("workbook opened")
	return workbook, nil
}

// EnterFormulaInCell selects cellName through the name box, types formula into
// the formula bar and commits it with Control+Enter. Plain Enter only moves the
// selection in some states of the formula bar.
func (s *SpreadsheetPage) EnterFormulaInCell(ctx context.Context, workbook playwright.Page, cellName, formula string) error {
	if err := entities.ValidateCellRef(cellName); err != nil {
		return err
	}
	frame := browser.InFrame(workbook, WorkbookFrame)
	t := s.timeouts.Interaction
	nameBox := browser.Sel(excelLocators.cellInputSelector)
	formulaBar := browser.Sel(excelLocators.formulaInputSelector)

	if err := s.actions.RequireVisible(ctx, frame, nameBox, t, ErrWorkbookNotReady); err != nil {
		return err
	}
	if err := s.actions.Click(ctx, frame, nameBox, t); err != nil {
		return err
	}
	if err := s.actions.Fill(ctx, frame, nameBox, cellName, t); err != nil {
		return err
	}
	if err := s.actions.Press(ctx, frame, nameBox, t, "Enter"); err != nil {
		return err
	}

	if err := s.actions.Click(ctx, frame, formulaBar, t); err != nil {
		return err
	}
	if err := s.actions.TypeText(ctx, frame, excelLocators.formulaInputSelector, formula, t); err != nil {
		return err
	}
	if err := s.actions.Press(ctx, frame, formulaBar, t, "Control+Enter"); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{"cell": cellName, "formula": formula}).Info("formula entered")
	return nil
}

// DismissNotification waits for notifications to settle and closes the first
// one if any is showing. It is not an error when none appears.
func (s *SpreadsheetPage) DismissNotification(ctx context.Context, workbook playwright.Page) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeouts.Settle):
	}

	frame := browser.InFrame(workbook, WorkbookFrame)
	closeButton, err := frame.Locate(excelLocators.closeNotification)
	if err != nil {
		return err
	}
	first := browser.Handle(closeButton.First())

	if !s.actions.WaitVisible(ctx, frame, first, s.timeouts.Presence) {
		s.logger.Debug("no notification to dismiss")
		return nil
	}
	s.logger.Info("dismissing notification")
	return s.actions.Click(ctx, frame, first, s.timeouts.Interaction)
}

// RetrieveCellData reads the value shown in cellName from the accessible label
// of its grid cell. cellName must be an A1-style reference.
func (s *SpreadsheetPage) RetrieveCellData(ctx context.Context, workbook playwright.Page, cellName string) (string, error) {
	if err := entities.ValidateCellRef(cellName); err != nil {
		return "", fmt.Errorf("unable to retrieve data for cell %s: %w", cellName, err)
	}
	frame := browser.InFrame(workbook, WorkbookFrame)
	t := s.timeouts.Interaction
	fontSize := browser.Sel(excelLocators.autoFontSize)

	if err := s.actions.RequireVisible(ctx, frame, fontSize, t, ErrFontSizeInput); err != nil {
		return "", err
	}
	if err := s.actions.Fill(ctx, frame, fontSize, labelFontSize, t); err != nil {
		return "", err
	}
	if err := s.actions.Press(ctx, frame, fontSize, t, "Enter"); err != nil {
		return "", err
	}

	cell, err := frame.Locate(fmt.Sprintf(`label[aria-label*="%s"]`, cellName))
	if err != nil {
		return "", err
	}
	label, err := cell.Nth(0).GetAttribute("aria-label", playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(float64(t.Milliseconds())),
	})
	if err != nil {
		return "", fmt.Errorf("unable to retrieve data for cell %s: %w", cellName, err)
	}

	value, err := entities.CellValueFromLabel(label)
	if err != nil {
		return "", fmt.Errorf("unable to retrieve data for cell %s: %w", cellName, err)
	}
	s.logger.WithFields(logrus.Fields{"cell": cellName, "value": value}).Debug("cell read")
	return value, nil
}

// VerifyCellData returns a CellMismatchError when cellName does not show expected.
func (s *SpreadsheetPage) VerifyCellData(ctx context.Context, workbook playwright.Page, cellName, expected string) error {
	actual, err := s.RetrieveCellData(ctx, workbook, cellName)
	if err != nil {
		return err
	}
	if actual != expected {
		return &CellMismatchError{Cell: cellName, Expected: expected, Actual: actual}
	}
	return nil
}
