package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large maps correctly",
			err:         errors.New("file too large: 200MB exceeds limit"),
			wantCode:    "FILE001",
			wantMessage: "File exceeds the maximum import size",
		},
		{
			name:        "unreadable xlsx maps correctly",
			err:         &ParseError{Kind: SourceXLSX, Err: errors.New("zip: not a valid zip file")},
			wantCode:    "FILE002",
			wantMessage: "The spreadsheet could not be opened",
		},
		{
			name:        "unreadable xls maps correctly",
			err:         &ParseError{Kind: SourceXLS, Err: errors.New("corrupt workbook")},
			wantCode:    "FILE002",
			wantMessage: "The spreadsheet could not be opened",
		},
		{
			name:        "unsupported type maps correctly",
			err:         fmt.Errorf("unsupported file type %q", ".pdf"),
			wantCode:    "FILE006",
			wantMessage: "This file type is not supported",
		},
		{
			name:        "missing period maps correctly",
			err:         Period{Year: "2025"}.Validate(),
			wantCode:    "VAL008",
			wantMessage: "Pay period is incomplete",
		},
		{
			name:        "store unavailable maps correctly",
			err:         fmt.Errorf("import: %w", errors.New("store unavailable")),
			wantCode:    "STORE001",
			wantMessage: "No payroll store could be reached",
		},
		{
			name:        "write failure beats not found",
			err:         errors.New("store write failed: sheet: slip not found"),
			wantCode:    "STORE002",
			wantMessage: "Saving the payroll batch failed",
		},
		{
			name:        "busy maps correctly",
			err:         errors.New("too many concurrent imports, please try again later"),
			wantCode:    "UPL002",
			wantMessage: "System is busy processing other imports",
		},
		{
			name:        "connection refused maps correctly",
			err:         errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode:    "DB004",
			wantMessage: "Unable to connect to the payroll database",
		},
		{
			name:        "timeout maps correctly",
			err:         errors.New("i/o timeout"),
			wantCode:    "DB006",
			wantMessage: "Operation timed out",
		},
		{
			name:        "deadline maps correctly",
			err:         context.DeadlineExceeded,
			wantCode:    "UPL005",
			wantMessage: "Request timed out",
		},
		{
			name:        "cancel maps correctly",
			err:         context.Canceled,
			wantCode:    "UPL004",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "not found maps correctly",
			err:         errors.New("batch not found"),
			wantCode:    "STORE003",
			wantMessage: "No payroll data exists for that period",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "An unexpected error occurred",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("STORE UNAVAILABLE"),
			wantCode:    "STORE001",
			wantMessage: "No payroll store could be reached",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	err := errors.New("no data rows in file")
	result := FormatUserError(err)

	expected := "The file has no payroll rows (Code: VAL007). Add at least one row below the header"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  errors.New("empty file"),
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := errors.New("store unavailable")
		userErr := NewUserError(techErr)

		if userErr.Error() != "No payroll store could be reached" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}

		if !errors.Is(userErr, techErr) {
			t.Error("Unwrap() should return original error")
		}
	})
}
