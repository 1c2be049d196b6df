package core

// convert.go provides conversion from raw payroll cells to typed values.
//
// These functions handle the messy reality of exported payroll sheets:
//   - Currency symbols and thousand separators in amounts
//   - Accounting negatives written as (123.45)
//   - Excel text prefixes (="value") and stray quotes
//
// Currency coercion never fails: anything that is not a number becomes 0.

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// currencyMarks are stripped from amounts before parsing.
var currencyMarks = strings.NewReplacer(
	"$", "",
	"€", "", // Euro
	"£", "", // Pound
	"₹", "", // Rupee
	"Rs.", "",
	"Rs", "",
	"INR", "",
	",", "",
	" ", "",
)

// ParseAmount converts a cell to a currency value.
// Returns false if the cell is empty or not numeric.
func ParseAmount(s string) (float64, bool) {
	s = CleanCell(s)
	if s == "" {
		return 0, false
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = currencyMarks.Replace(s)
	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// CoerceAmount is ParseAmount with 0 for missing and invalid input alike.
func CoerceAmount(s string) float64 {
	v, _ := ParseAmount(s)
	return v
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel text prefix (="...")
// - Removes one pair of matching surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		return strings.TrimSpace(s[2 : len(s)-1])
	}

	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}

	return s
}

// headerStripper removes separators ignored when comparing headers.
var headerStripper = strings.NewReplacer(
	" ", "",
	"\t", "",
	"\n", "",
	"\r", "",
	"-", "",
	"_", "",
	".", "",
)

// NormalizeHeader lowercases a header and strips whitespace, hyphens,
// underscores, and periods so "Staff ID" and "staff_id" compare equal.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerStripper.Replace(h)
	return strings.Join(strings.Fields(h), "")
}
