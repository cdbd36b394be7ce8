package entities

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// CellLabelSeparator splits the displayed value from the cell description in
// the accessible label of a grid cell, e.g. "3/14/2024 . Cell A1".
const CellLabelSeparator = " . "

var (
	// ErrNoCellLabel is returned when a cell exposes no accessible label.
	ErrNoCellLabel = errors.New("cell has no accessible label")

	// ErrInvalidCellRef is returned for anything but an A1-style reference.
	ErrInvalidCellRef = errors.New("invalid cell reference")
)

var cellRefPattern = regexp.MustCompile(`^[A-Za-z]{1,3}[1-9][0-9]{0,6}$`)

// ValidateCellRef accepts A1-style references such as "A1" or "XFD1048576".
func ValidateCellRef(ref string) error {
	if !cellRefPattern.MatchString(ref) {
		return fmt.Errorf("%w: %q", ErrInvalidCellRef, ref)
	}
	return nil
}

// CellValueFromLabel returns the text before the first separator.
func CellValueFromLabel(label string) (string, error) {
	if label == "" {
		return "", ErrNoCellLabel
	}
	value, _, _ := strings.Cut(label, CellLabelSeparator)
	return value, nil
}

// DateText renders t the way the en-US grid shows a TODAY() result: month/day/year
// without leading zeros.
func DateText(t time.Time) string {
	return fmt.Sprintf("%d/%d/%d", int(t.Month()), t.Day(), t.Year())
}
