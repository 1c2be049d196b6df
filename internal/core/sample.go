package core

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// SampleSheetName is the worksheet name of the XLSX sample file.
const SampleSheetName = "Payroll"

var sampleData = [][]string{
	{
		"T001", "Dr. Anita Rao", "Professor", "Physics", "PhD", "57700-182400",
		"57700", "182400", "57700", "44900",
		"28850", "0", "0", "5770", "0", "600", "1000", "93920",
		"200", "5000", "6924", "1200", "100", "13424",
		"80496", "2025-01-31", "paid",
	},
	{
		"T002", "Mr. Ravi Kumar", "Assistant Professor", "Mathematics", "M.Phil", "44900-142400",
		"44900", "142400", "44900", "35400",
		"22450", "0", "1500", "4490", "0", "600", "0", "73940",
		"200", "2500", "5388", "800", "100", "8988",
		"64952", "2025-01-31", "paid",
	},
}

// SampleHeader returns the canonical header row of the sample file.
func SampleHeader() []string {
	h := make([]string, len(fieldSpecs))
	for i, s := range fieldSpecs {
		h[i] = s.Label
	}
	return h
}

// SampleRows returns the header row followed by two illustrative rows.
func SampleRows() [][]string {
	rows := [][]string{SampleHeader()}
	for _, r := range sampleData {
		rows = append(rows, append([]string(nil), r...))
	}
	return rows
}

// WriteSampleCSV writes the sample rows as comma-separated text.
func WriteSampleCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(SampleRows()); err != nil {
		return fmt.Errorf("write sample csv: %w", err)
	}
	return nil
}

// WriteSampleXLSX writes the sample rows as a workbook with one sheet.
// Currency columns are written as numbers.
func WriteSampleXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SampleSheetName); err != nil {
		return fmt.Errorf("write sample xlsx: %w", err)
	}

	for i, row := range SampleRows() {
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
			if i > 0 && fieldSpecs[j].Kind == KindCurrency {
				if n, ok := ParseAmount(v); ok {
					values[j] = n
				}
			}
		}
		start, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("write sample xlsx: %w", err)
		}
		if err := f.SetSheetRow(SampleSheetName, start, &values); err != nil {
			return fmt.Errorf("write sample xlsx: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write sample xlsx: %w", err)
	}
	return nil
}
