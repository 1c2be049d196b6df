package core

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParseDelimited(t *testing.T) {
	tests := []struct {
		name  string
		input string
		delim rune
		want  Grid
	}{
		{
			name:  "simple rows",
			input: "ID,Name,Basic\nT001,Dr. Smith,50000\n",
			delim: ',',
			want:  Grid{{"ID", "Name", "Basic"}, {"T001", "Dr. Smith", "50000"}},
		},
		{
			name:  "crlf and blank lines dropped",
			input: "ID,Name\r\n\r\n   \r\nT001,Smith\r\n",
			delim: ',',
			want:  Grid{{"ID", "Name"}, {"T001", "Smith"}},
		},
		{
			name:  "cells trimmed and unquoted",
			input: ` "ID" , 'Name' ` + "\n" + `"T001", Smith `,
			delim: ',',
			want:  Grid{{"ID", "Name"}, {"T001", "Smith"}},
		},
		{
			name:  "quoted delimiter still splits",
			input: "Name,Basic\n\"Smith, J\",100",
			delim: ',',
			want:  Grid{{"Name", "Basic"}, {`"Smith`, `J"`, "100"}},
		},
		{
			name:  "short rows kept as is",
			input: "A,B,C\n1,2",
			delim: ',',
			want:  Grid{{"A", "B", "C"}, {"1", "2"}},
		},
		{
			name:  "tab delimited",
			input: "ID\tName\nT001\tSmith",
			delim: '\t',
			want:  Grid{{"ID", "Name"}, {"T001", "Smith"}},
		},
		{
			name:  "utf8 bom stripped",
			input: "\xEF\xBB\xBFID,Name\nT1,A",
			delim: ',',
			want:  Grid{{"ID", "Name"}, {"T1", "A"}},
		},
		{
			name:  "invalid utf8 replaced",
			input: "ID,Name\nT1,A\x80B",
			delim: ',',
			want:  Grid{{"ID", "Name"}, {"T1", "A\uFFFDB"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseDelimited([]byte(tt.input), tt.delim)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseDelimited() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_EmptyInput(t *testing.T) {
	for _, kind := range []SourceKind{SourceCSV, SourceTSV, SourceXLSX, SourceXLS} {
		grid, err := Parse(nil, kind)
		if err != nil {
			t.Errorf("Parse(nil, %s) error = %v", kind, err)
		}
		if len(grid) != 0 {
			t.Errorf("Parse(nil, %s) rows = %d, want 0", kind, len(grid))
		}
	}

	grid, err := Parse([]byte("\n \n\t\n"), SourceCSV)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(grid) != 0 {
		t.Errorf("blank lines produced %d rows, want 0", len(grid))
	}
}

func TestParse_MalformedSpreadsheet(t *testing.T) {
	for _, kind := range []SourceKind{SourceXLSX, SourceXLS} {
		t.Run(string(kind), func(t *testing.T) {
			_, err := Parse([]byte("this is not a workbook"), kind)
			if err == nil {
				t.Fatal("Parse() expected error for malformed container")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Parse() error = %T, want *ParseError", err)
			}
			if pe.Kind != kind {
				t.Errorf("ParseError.Kind = %q, want %q", pe.Kind, kind)
			}
			if pe.Unwrap() == nil {
				t.Error("ParseError should carry the decode error")
			}
		})
	}
}

func TestParse_UnsupportedKind(t *testing.T) {
	_, err := Parse([]byte("a,b"), SourceKind("pdf"))
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse() error = %v, want *ParseError", err)
	}
}

func TestParse_XLSXFirstSheetOnly(t *testing.T) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	mustSetRow(t, f, first, "A1", []interface{}{"Staff ID", "Full Name", "Basic"})
	mustSetRow(t, f, first, "A2", []interface{}{"T001", " Dr. Smith ", 50000})
	mustSetRow(t, f, first, "A4", []interface{}{"T002", "Ms. Jones", 42000.5})

	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("NewSheet() error = %v", err)
	}
	mustSetRow(t, f, "Other", "A1", []interface{}{"ignored"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	grid, err := Parse(buf.Bytes(), SourceXLSX)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	want := Grid{
		{"Staff ID", "Full Name", "Basic"},
		{"T001", "Dr. Smith", "50000"},
		{"T002", "Ms. Jones", "42000.5"},
	}
	if !reflect.DeepEqual(grid, want) {
		t.Errorf("Parse() = %q, want %q", grid, want)
	}
}

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		name    string
		want    SourceKind
		wantErr bool
	}{
		{name: "payroll.csv", want: SourceCSV},
		{name: "PAYROLL.CSV", want: SourceCSV},
		{name: "export.txt", want: SourceCSV},
		{name: "export.tsv", want: SourceTSV},
		{name: "jan.xlsx", want: SourceXLSX},
		{name: "jan.xls", want: SourceXLS},
		{name: "jan.pdf", wantErr: true},
		{name: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := KindFromFilename(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("KindFromFilename(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("KindFromFilename(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func mustSetRow(t *testing.T, f *excelize.File, sheet, cell string, values []interface{}) {
	t.Helper()
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		t.Fatalf("SetSheetRow(%s!%s) error = %v", sheet, cell, err)
	}
}
