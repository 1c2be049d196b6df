package core

// parse.go turns raw import bytes into a Grid.
//
// Delimited text is split line by line and cell by cell. Quoted delimiters
// are not supported: a comma inside quotes still splits the cell. Workbooks
// are read from their first sheet only, using cached cell values.

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// maxXLSRows caps how many rows are read from a legacy workbook sheet.
const maxXLSRows = 100000

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ErrNoWorksheet is wrapped in a ParseError when a workbook has no sheets.
var ErrNoWorksheet = errors.New("no worksheet found")

// Parse converts raw input into a Grid. Empty input yields an empty grid.
// A container that cannot be decoded fails with *ParseError.
func Parse(raw []byte, kind SourceKind) (Grid, error) {
	switch kind {
	case SourceCSV:
		return ParseDelimited(raw, ','), nil
	case SourceTSV:
		return ParseDelimited(raw, '\t'), nil
	case SourceXLSX:
		return parseXLSX(raw)
	case SourceXLS:
		return parseXLS(raw)
	default:
		return nil, &ParseError{Kind: kind, Err: fmt.Errorf("unsupported file type %q", kind)}
	}
}

// ParseDelimited splits text into lines and cells. Blank lines are dropped,
// every cell is trimmed and loses one pair of surrounding quotes.
func ParseDelimited(raw []byte, delim rune) Grid {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	text := string(sanitizeUTF8(raw))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var grid Grid
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, string(delim))
		row := make([]string, len(parts))
		for i, p := range parts {
			row[i] = CleanCell(p)
		}
		grid = append(grid, row)
	}
	return grid
}

func parseXLSX(raw []byte) (Grid, error) {
	if len(raw) == 0 {
		return Grid{}, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, &ParseError{Kind: SourceXLSX, Err: err}
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, &ParseError{Kind: SourceXLSX, Err: ErrNoWorksheet}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, &ParseError{Kind: SourceXLSX, Err: err}
	}
	return cleanRows(rows), nil
}

func parseXLS(raw []byte) (grid Grid, err error) {
	if len(raw) == 0 {
		return Grid{}, nil
	}

	// The xls decoder panics on some truncated containers.
	defer func() {
		if r := recover(); r != nil {
			grid = nil
			err = &ParseError{Kind: SourceXLS, Err: fmt.Errorf("corrupt workbook: %v", r)}
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(raw), "utf-8")
	if err != nil {
		return nil, &ParseError{Kind: SourceXLS, Err: err}
	}
	if wb.NumSheets() == 0 {
		return nil, &ParseError{Kind: SourceXLS, Err: ErrNoWorksheet}
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, &ParseError{Kind: SourceXLS, Err: ErrNoWorksheet}
	}

	var rows [][]string
	for i := 0; i <= int(sheet.MaxRow) && i < maxXLSRows; i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		// Start at column 0 so cell positions line up with the header.
		cells := make([]string, 0, row.LastCol())
		for j := 0; j < row.LastCol(); j++ {
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return cleanRows(rows), nil
}

// cleanRows applies cell cleanup and drops rows with no content.
func cleanRows(rows [][]string) Grid {
	grid := make(Grid, 0, len(rows))
	for _, r := range rows {
		if isEmptyRow(r) {
			continue
		}
		row := make([]string, len(r))
		for i, v := range r {
			row[i] = CleanCell(v)
		}
		grid = append(grid, row)
	}
	return grid
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// sanitizeUTF8 replaces invalid byte sequences with U+FFFD.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
