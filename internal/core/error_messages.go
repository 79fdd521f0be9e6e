package core

// # Fault Codes Reference
//
// This file maps faults, the errors that stop a run before a report is
// written, to user-facing messages with codes for support reference. Rule
// violations are not faults and never pass through here.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - Table not found: An input table could not be opened
//	          Action: Check the path and file permissions
//	          Matches: ErrTableNotFound, "no such file"
//
//	FILE002 - Malformed table: The file is not a valid template table
//	          Action: Save the table as tab-separated text with two header rows
//	          Matches: ErrMalformedTable
//
// # Validation Setup Errors (VAL001-VAL099)
//
//	VAL004 - Missing column: A column the table's rules read is missing
//	         Action: Restore the column header in the template
//	         Matches: ErrMissingColumn
//
// # Table Configuration Errors (TBL001-TBL099)
//
//	TBL001 - Unknown table: A dependency names a table that is not configured
//	TBL002 - Duplicate table: Two tables share one key
//
// # Dependency Graph Errors (GRF001-GRF099)
//
//	GRF001 - Cycle: Table dependencies form a cycle
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Invalid configuration: Settings failed validation
//	CFG002 - Config file: The configuration file could not be parsed
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - Cancelled: The run was interrupted
//	RUN002 - Timeout: The run exceeded its deadline
//
// # Database Errors (DB001-DB099)
//
//	DB004 - Connection refused: Run history database is unreachable
//	DB006 - Timeout: Run history database did not answer in time
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, so wrapped faults keep
// their code. Otherwise patterns are matched case-insensitively using
// strings.Contains. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern maps a sentinel or a message pattern to a user message.
type errorPattern struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		target:  ErrTableNotFound,
		pattern: "no such file",
		msg: UserMessage{
			Message: "An input table could not be opened",
			Action:  "Check the path and file permissions",
			Code:    "FILE001",
		},
	},
	{
		target:  ErrMalformedTable,
		pattern: "malformed table",
		msg: UserMessage{
			Message: "The file is not a valid template table",
			Action:  "Save the table as tab-separated text with a column row and a template row",
			Code:    "FILE002",
		},
	},

	// Validation setup
	{
		target:  ErrMissingColumn,
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A column the table's rules read is missing",
			Action:  "Restore the column header in the template",
			Code:    "VAL004",
		},
	},

	// Table configuration
	{
		target:  ErrUnknownTable,
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown table",
			Action:  "Check the table dependencies",
			Code:    "TBL001",
		},
	},
	{
		target:  ErrDuplicateTable,
		pattern: "duplicate table",
		msg: UserMessage{
			Message: "Two tables share one key",
			Action:  "Give every table a unique key",
			Code:    "TBL002",
		},
	},

	// Dependency graph
	{
		target:  ErrDependencyCycle,
		pattern: "dependency cycle",
		msg: UserMessage{
			Message: "Table dependencies form a cycle",
			Action:  "Remove one of the dependencies listed in the error",
			Code:    "GRF001",
		},
	},

	// Configuration
	{
		pattern: "config validation failed",
		msg: UserMessage{
			Message: "Settings failed validation",
			Action:  "Fix the settings listed in the error",
			Code:    "CFG001",
		},
	},
	{
		pattern: "parse config file",
		msg: UserMessage{
			Message: "The configuration file could not be parsed",
			Action:  "Check the YAML syntax of the configuration file",
			Code:    "CFG002",
		},
	},

	// Run
	{
		target:  context.Canceled,
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The run was interrupted",
			Action:  "Start the run again",
			Code:    "RUN001",
		},
	},
	{
		target:  context.DeadlineExceeded,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The run exceeded its deadline",
			Action:  "Raise the timeout or validate fewer tables",
			Code:    "RUN002",
		},
	},

	// Database
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the run history database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Please try again later",
			Code:    "DB006",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the original error",
	Code:    "ERR000",
}

// MapError converts a fault to a user-friendly message.
// Sentinels are checked with errors.Is before any message pattern. If
// nothing matches, the ERR000 fallback is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.target != nil && errors.Is(err, ep.target) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if ep.pattern != "" && strings.Contains(errStr, ep.pattern) {
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

// IsUserFacing reports whether err matches a known fault.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
