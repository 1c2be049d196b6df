package core

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Grid is a parsed table of text cells. Row 0 is the header row.
// Rows may differ in length; short rows read as empty cells.
type Grid [][]string

// Header returns the header row, or nil for an empty grid.
func (g Grid) Header() []string {
	if len(g) == 0 {
		return nil
	}
	return g[0]
}

// DataRows returns the number of rows after the header.
func (g Grid) DataRows() int {
	if len(g) <= 1 {
		return 0
	}
	return len(g) - 1
}

// cell returns the trimmed cell at idx, or "" when the row is too short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// SourceKind identifies the container format of raw import bytes.
type SourceKind string

const (
	SourceCSV  SourceKind = "csv"
	SourceTSV  SourceKind = "tsv"
	SourceXLSX SourceKind = "xlsx"
	SourceXLS  SourceKind = "xls"
)

// Valid reports whether k is a supported source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceCSV, SourceTSV, SourceXLSX, SourceXLS:
		return true
	}
	return false
}

// IsSpreadsheet reports whether k is a workbook format.
func (k SourceKind) IsSpreadsheet() bool {
	return k == SourceXLSX || k == SourceXLS
}

// KindFromFilename derives the source kind from a file extension.
func KindFromFilename(name string) (SourceKind, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return SourceCSV, nil
	case ".tsv", ".tab":
		return SourceTSV, nil
	case ".xlsx", ".xlsm":
		return SourceXLSX, nil
	case ".xls":
		return SourceXLS, nil
	default:
		return "", fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

// ParseKind parses a user-supplied kind name such as "CSV" or ".xlsx".
func ParseKind(s string) (SourceKind, error) {
	k := SourceKind(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	if !k.Valid() {
		return "", fmt.Errorf("unsupported file type %q", s)
	}
	return k, nil
}

// ValueKind is the declared type of a canonical field's value.
type ValueKind int

const (
	KindText ValueKind = iota
	KindCurrency
)

func (k ValueKind) String() string {
	if k == KindCurrency {
		return "currency"
	}
	return "text"
}

// WarningCode classifies a non-fatal import problem.
type WarningCode string

const (
	WarnMissingColumn WarningCode = "missing_column"
	WarnUnknownMonth  WarningCode = "unknown_month"
	WarnDuplicateID   WarningCode = "duplicate_id"
)

// Warning is a non-fatal problem found while importing. Warnings are
// reported to the caller and never abort an import.
type Warning struct {
	Code    WarningCode `json:"code"`
	Field   Field       `json:"field,omitempty"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return w.Message
}

// SkippedRow records a data row dropped for having too few cells.
type SkippedRow struct {
	Row   int `json:"row"` // grid row index (header is 0)
	Cells int `json:"cells"`
}

// ParseError is returned when the source container cannot be decoded.
type ParseError struct {
	Kind SourceKind
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Kind, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
