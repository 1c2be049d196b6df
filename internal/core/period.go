package core

import (
	"errors"
	"fmt"
	"strings"
)

// Period is the pay period an import belongs to.
type Period struct {
	Month string `json:"month"` // month name, e.g. "January"
	Year  string `json:"year"`
}

// Key returns the period key used by stores, e.g. "January_2025".
func (p Period) Key() string {
	return strings.TrimSpace(p.Month) + "_" + strings.TrimSpace(p.Year)
}

func (p Period) String() string {
	return strings.TrimSpace(p.Month) + " " + strings.TrimSpace(p.Year)
}

// Validate rejects periods missing a month or year.
func (p Period) Validate() error {
	var errs []error
	if strings.TrimSpace(p.Month) == "" {
		errs = append(errs, errors.New("month is required"))
	}
	if strings.TrimSpace(p.Year) == "" {
		errs = append(errs, errors.New("year is required"))
	}
	return errors.Join(errs...)
}

var monthNumbers = map[string]string{
	"january":   "01",
	"february":  "02",
	"march":     "03",
	"april":     "04",
	"may":       "05",
	"june":      "06",
	"july":      "07",
	"august":    "08",
	"september": "09",
	"october":   "10",
	"november":  "11",
	"december":  "12",
}

// MonthNumber returns the two-digit number for a month name.
// Unknown names return "01" and false.
func MonthNumber(month string) (string, bool) {
	n, ok := monthNumbers[strings.ToLower(strings.TrimSpace(month))]
	if !ok {
		return "01", false
	}
	return n, true
}

// unknownMonthWarning reports a month name that fell back to "01".
func unknownMonthWarning(month string) Warning {
	return Warning{
		Code:    WarnUnknownMonth,
		Message: fmt.Sprintf("unrecognized month %q, month number defaulted to 01", month),
	}
}
