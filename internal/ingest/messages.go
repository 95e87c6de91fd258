package ingest

// # Error Codes Reference
//
// Load failures and the errors around them map to user messages with a
// code users can quote to support.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Unsupported file type: the extension does not match the loader
//	          Action: Choose a .csv file or a .xls/.xlsx workbook
//	FILE002 - File not found: no file exists at the given path
//	          Action: Check the path and try again
//	FILE003 - Encoding error: none of utf-8, latin1, iso-8859-1, cp1252 decoded the file
//	          Action: Save the file as UTF-8 and try again
//	FILE004 - Invalid file: the file could not be parsed
//	          Action: Ensure the file has a header row and consistent columns
//	FILE005 - Empty file: the file has no header row
//	          Action: Add a header row and at least one column
//
// # Dependency Errors (DEP001-DEP099)
//
//	DEP001 - Missing component: a spreadsheet reader is not installed
//	         Action: Install the named package and try again
//
// # Export and Database Errors (EXP001-EXP099, DB001-DB099)
//
//	EXP001 - Unknown format: the export format is not supported
//	DB004  - Connection refused: unable to connect to database
//	UPL004 - Request cancelled
//	ERR000 - Unknown error

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

var failureMessages = map[FailureKind]UserMessage{
	InvalidFormat: {
		Message: "Unsupported file type",
		Action:  "Choose a .csv file or a .xls/.xlsx workbook",
		Code:    "FILE001",
	},
	NotFound: {
		Message: "File not found",
		Action:  "Check the path and try again",
		Code:    "FILE002",
	},
	EncodingUndetermined: {
		Message: "Could not determine the file encoding",
		Action:  "Save the file as UTF-8 and try again",
		Code:    "FILE003",
	},
	ParseError: {
		Message: "The file could not be parsed",
		Action:  "Ensure the file has a header row and consistent columns",
		Code:    "FILE004",
	},
	MissingDependency: {
		Message: "A required spreadsheet component is not installed",
		Action:  "Install the named package and try again",
		Code:    "DEP001",
	},
}

var emptyFileMessage = UserMessage{
	Message: "The file is empty",
	Action:  "Add a header row and at least one column",
	Code:    "FILE005",
}

// errorPatterns covers errors that are not load failures.
// Matched case-insensitively with strings.Contains; first match wins.
var errorPatterns = []struct {
	pattern string
	msg     UserMessage
}{
	{"unknown format", UserMessage{Message: "Unsupported export format", Action: "Choose csv, xlsx or json", Code: "EXP001"}},
	{"database is not configured", UserMessage{Message: "Database export is not configured", Action: "Set DATABASE_URL and try again", Code: "EXP002"}},
	{"connection refused", UserMessage{Message: "Unable to connect to database", Action: "Please try again in a few moments", Code: "DB004"}},
	{"context canceled", UserMessage{Message: "Request was cancelled", Action: "Please try again", Code: "UPL004"}},
	{"context deadline exceeded", UserMessage{Message: "Request timed out", Action: "Try again with a smaller file", Code: "UPL005"}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or check the logs",
	Code:    "ERR000",
}

// MapFailure returns the user message for f. A nil failure maps to an
// empty message.
func MapFailure(f *Failure) UserMessage {
	if f == nil {
		return UserMessage{}
	}
	if f.Kind == ParseError && strings.Contains(f.Message, errNoColumns.Error()) {
		return emptyFileMessage
	}
	if msg, ok := failureMessages[f.Kind]; ok {
		return msg
	}
	return defaultMessage
}

// MapError maps any error to a user message, using MapFailure for load
// failures and known patterns for the rest.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var f *Failure
	if errors.As(err, &f) {
		return MapFailure(f)
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action". Load failures also carry their detail.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}

	var f *Failure
	if errors.As(err, &f) && f.Message != "" {
		return fmt.Sprintf("%s: %s (Code: %s). %s", msg.Message, f.Message, msg.Code, msg.Action)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
