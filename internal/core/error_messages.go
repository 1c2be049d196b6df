package core

// error_messages.go maps technical errors to user-facing messages with
// codes for support reference. Users quote the code; support looks it up
// here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the maximum import size
//	          Patterns: "file too large"
//	FILE002 - Unreadable workbook: The spreadsheet could not be opened
//	          Patterns: "parse xls" (covers xls and xlsx)
//	FILE004 - No file: No file was selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: The file has no rows
//	          Patterns: "empty file"
//	FILE006 - Unsupported type: Only CSV, TSV, XLS and XLSX are accepted
//	          Patterns: "unsupported file type"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL007 - No data rows: The file has a header but no payroll rows
//	         Patterns: "no data rows"
//	VAL008 - Invalid period: Month or year missing
//	         Patterns: "month is required", "year is required"
//
// # Store Errors (STORE001-STORE099)
//
//	STORE001 - Store unavailable: No payroll store could be reached
//	           Patterns: "store unavailable"
//	STORE002 - Write failed: Saving the payroll batch failed
//	           Patterns: "store write failed"
//	STORE003 - Not found: No batch or slip exists for that key
//	           Patterns: "not found"
//
// # Database Errors (DB004-DB006)
//
//	DB004 - Connection refused       Patterns: "connection refused"
//	DB005 - Connection reset         Patterns: "connection reset"
//	DB006 - Timeout                  Patterns: "timeout"
//
// # Import Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many imports in progress
//	         Patterns: "too many concurrent imports"
//	UPL004 - Request cancelled       Patterns: "context canceled"
//	UPL005 - Request timeout         Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Check the logs for the technical error.
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum import size",
			Action:  "Split the payroll into smaller files",
			Code:    "FILE001",
		},
	},
	{
		pattern: "parse xls",
		msg: UserMessage{
			Message: "The spreadsheet could not be opened",
			Action:  "Re-save the workbook in Excel or export it as CSV",
			Code:    "FILE002",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a payroll file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no rows",
			Action:  "Please import a file with a header row and payroll rows",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "This file type is not supported",
			Action:  "Use a CSV, TSV, XLS or XLSX file",
			Code:    "FILE006",
		},
	},

	// Validation errors
	{
		pattern: "no data rows",
		msg: UserMessage{
			Message: "The file has no payroll rows",
			Action:  "Add at least one row below the header",
			Code:    "VAL007",
		},
	},
	{
		pattern: "month is required",
		msg: UserMessage{
			Message: "Pay period is incomplete",
			Action:  "Select both a month and a year",
			Code:    "VAL008",
		},
	},
	{
		pattern: "year is required",
		msg: UserMessage{
			Message: "Pay period is incomplete",
			Action:  "Select both a month and a year",
			Code:    "VAL008",
		},
	},

	// Store errors
	{
		pattern: "store unavailable",
		msg: UserMessage{
			Message: "No payroll store could be reached",
			Action:  "Keep the file and try the import again later",
			Code:    "STORE001",
		},
	},
	{
		pattern: "store write failed",
		msg: UserMessage{
			Message: "Saving the payroll batch failed",
			Action:  "Keep the file and try the import again later",
			Code:    "STORE002",
		},
	},

	// Import concurrency and request lifetime
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},

	// Database connectivity
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the payroll database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	{
		pattern: "not found",
		msg: UserMessage{
			Message: "No payroll data exists for that period",
			Action:  "Check the month and year, or import the period first",
			Code:    "STORE003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first matching pattern, or ERR000 when nothing matches.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
