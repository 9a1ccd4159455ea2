// Package core provides the business logic for the product catalog.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When users hit an error they can quote the code to support
// staff for faster diagnosis.
//
// # Database Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A product with this SKU already exists
//	        Patterns: "duplicate key"
//	DB002 - Unique constraint: This value must be unique but already exists
//	        Patterns: "unique constraint", "violates unique"
//	DB003 - Foreign key: Referenced brand or category does not exist
//	        Patterns: "foreign key constraint", "violates foreign key"
//	DB004 - Connection refused: Unable to connect to database
//	        Patterns: "connection refused"
//	DB005 - Connection reset: Database connection was interrupted
//	        Patterns: "connection reset"
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//	DB007 - Deadlock: Database was busy with conflicting operations
//	        Patterns: "deadlock"
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL002 - Invalid number: A price is not a number
//	         Patterns: "invalid number"
//	VAL003 - Required field: name or sku is empty
//	         Patterns: "required field"
//	VAL006 - Invalid enum: status is not ACTIVE, DRAFT or ARCHIVED
//	         Patterns: "invalid enum"
//	VAL007 - Invalid integer: stock or brandId is not a whole number
//	         Patterns: "invalid integer"
//	VAL008 - No valid records: every record in the import was rejected
//	         Patterns: "no valid records"
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	          Patterns: "file too large", "request body too large"
//	FILE002 - Malformed file: the file could not be parsed
//	          Patterns: "malformed file"
//	FILE003 - Encoding error
//	          Patterns: "encoding error"
//	FILE004 - No file selected
//	          Patterns: "no file provided"
//	FILE005 - Empty file: no header row
//	          Patterns: "empty file"
//	FILE006 - Unsupported file type
//	          Patterns: "unsupported file type"
//
// # Import Errors (IMP001-IMP099)
//
//	IMP002 - System busy: too many imports in progress
//	         Patterns: "too many concurrent imports"
//	IMP004 - Request cancelled
//	         Patterns: "context canceled"
//	IMP005 - Request timeout
//	         Patterns: "context deadline exceeded"
//	IMP006 - No records: the data list is missing or empty
//	         Patterns: "no records provided"
//	IMP007 - Too many records in one import
//	         Patterns: "too many records"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Unsupported export format
//	         Patterns: "unsupported export format"
//	REQ002 - Invalid category
//	         Patterns: "invalid category"
//	REQ003 - Malformed request body
//	         Patterns: "malformed request body"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. Support staff should check the
// application logs for the technical error, correlated by request_id.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains. The first
// match wins, so more specific patterns are listed before general ones.
package core

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

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Order matters: specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "unsupported export format",
		msg: UserMessage{
			Message: "Invalid format",
			Action:  "Use csv, xlsx or json",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid category",
		msg: UserMessage{
			Message: "Invalid category",
			Action:  "Pick a category from the list or clear the filter",
			Code:    "REQ002",
		},
	},
	{
		pattern: "malformed request body",
		msg: UserMessage{
			Message: "Invalid data",
			Action:  `Send a JSON object of the form {"data": [...]}`,
			Code:    "REQ003",
		},
	},

	// =========================================================================
	// Import Errors (IMP002-IMP007)
	// =========================================================================
	{
		pattern: "no records provided",
		msg: UserMessage{
			Message: "Invalid data",
			Action:  "Provide a non-empty list of records in the data field",
			Code:    "IMP006",
		},
	},
	{
		pattern: "too many records",
		msg: UserMessage{
			Message: "Too many records in one import",
			Action:  "Split the file into smaller imports",
			Code:    "IMP007",
		},
	},
	{
		pattern: "too many concurrent imports",
		msg: UserMessage{
			Message: "System is busy processing other imports",
			Action:  "Please wait a moment and try again",
			Code:    "IMP002",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "IMP004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try importing fewer records or check your connection",
			Code:    "IMP005",
		},
	},

	// =========================================================================
	// Database Constraint Errors (DB001-DB003)
	// =========================================================================
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A product with this SKU already exists",
			Action:  "Use a different SKU or remove the duplicate row",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "This value must be unique but already exists",
			Action:  "Check for duplicate entries in your file",
			Code:    "DB002",
		},
	},
	{
		pattern: "violates unique",
		msg: UserMessage{
			Message: "A duplicate value was found",
			Action:  "Review your data for duplicate key values",
			Code:    "DB002",
		},
	},
	{
		pattern: "foreign key constraint",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Check that brand and category ids exist",
			Code:    "DB003",
		},
	},
	{
		pattern: "violates foreign key",
		msg: UserMessage{
			Message: "Referenced record does not exist",
			Action:  "Check that brand and category ids exist",
			Code:    "DB003",
		},
	},

	// =========================================================================
	// Database Connection Errors (DB004-DB007)
	// =========================================================================
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
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
			Action:  "Try importing fewer records or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Database was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},

	// =========================================================================
	// Validation Errors (VAL002-VAL008)
	// =========================================================================
	{
		pattern: "no valid records",
		msg: UserMessage{
			Message: "No record could be imported",
			Action:  "Review the rejected rows and fix the mapped columns",
			Code:    "VAL008",
		},
	},
	{
		pattern: "invalid number",
		msg: UserMessage{
			Message: "Invalid number format detected",
			Action:  "Use a plain decimal such as 19.99",
			Code:    "VAL002",
		},
	},
	{
		pattern: "required field",
		msg: UserMessage{
			Message: "Required field is empty",
			Action:  "Map a column to name and sku and fill every row",
			Code:    "VAL003",
		},
	},
	{
		pattern: "invalid enum",
		msg: UserMessage{
			Message: "Value is not in the allowed list",
			Action:  "Use ACTIVE, DRAFT or ARCHIVED for status",
			Code:    "VAL006",
		},
	},
	{
		pattern: "invalid integer",
		msg: UserMessage{
			Message: "Invalid whole number detected",
			Action:  "Use whole numbers for stock and brandId",
			Code:    "VAL007",
		},
	},

	// =========================================================================
	// File Errors (FILE001-FILE006)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "File exceeds maximum size limit",
			Action:  "Split the file into smaller chunks",
			Code:    "FILE001",
		},
	},
	{
		pattern: "malformed file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is a valid CSV, XLSX or JSON export",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File contains invalid characters",
			Action:  "Save file as UTF-8 encoding",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a file to import",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The file has no header row",
			Action:  "Put column names in the first row",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Unsupported file type",
			Action:  "Upload a .csv, .xlsx or .json file",
			Code:    "FILE006",
		},
	},

	// =========================================================================
	// Rate Limiting (RATE001)
	// =========================================================================
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
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
// It returns the first matching pattern, or the ERR000 fallback.
//
//	msg := MapError(ErrInvalidFormat)
//	// msg.Code == "REQ001"
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

// IsUserFacing reports whether err matches a known pattern, meaning the
// mapped message is specific enough to show instead of a generic failure.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
