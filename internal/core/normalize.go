package core

import (
	"strconv"
	"time"
)

// MinRowCells is the fewest cells a data row needs to be kept.
const MinRowCells = 3

// createdAtLayout is RFC 3339 in UTC with millisecond precision.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// NormalizeResult holds the records built from a grid.
type NormalizeResult struct {
	Records  []Record
	Skipped  []SkippedRow
	Warnings []Warning
}

// Normalizer builds records from grid rows.
// The zero value uses the wall clock.
type Normalizer struct {
	Now func() time.Time
}

// Normalize builds records with the wall clock.
func Normalize(grid Grid, mapping ColumnMapping, period Period) NormalizeResult {
	return Normalizer{}.Normalize(grid, mapping, period)
}

// Normalize converts every data row of grid into a Record.
//
// Rows with fewer than MinRowCells cells are skipped. Unmapped fields and
// unparseable amounts become zero values. Output keeps input row order.
func (n Normalizer) Normalize(grid Grid, mapping ColumnMapping, period Period) NormalizeResult {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	ts := now().UTC()
	createdAt := ts.Format(createdAtLayout)
	today := ts.Format("2006-01-02")

	var res NormalizeResult

	monthNum, known := MonthNumber(period.Month)
	if !known {
		res.Warnings = append(res.Warnings, unknownMonthWarning(period.Month))
	}

	for i := 1; i < len(grid); i++ {
		row := grid[i]
		if len(row) < MinRowCells {
			res.Skipped = append(res.Skipped, SkippedRow{Row: i, Cells: len(row)})
			continue
		}

		var rec Record
		for f, col := range mapping {
			rec.set(f, cell(row, col))
		}

		ident := rec.TeacherID
		if ident == "" {
			ident = strconv.Itoa(i)
		}
		rec.ID = ident + "_" + period.Month + "_" + period.Year

		rec.Month = period.Month
		rec.Year = period.Year
		rec.MonthNum = monthNum
		rec.CreatedAt = createdAt
		if rec.PayDate == "" {
			rec.PayDate = today
		}
		if rec.Status == "" {
			rec.Status = StatusPaid
		}
		rec.syncAliases()

		res.Records = append(res.Records, rec)
	}

	return res
}
