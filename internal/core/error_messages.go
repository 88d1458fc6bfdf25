// Package core provides the business logic for the workshop catalog.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When users encounter errors, they can quote the error code to support staff
// for faster diagnosis.
//
// # Download Errors (FETCH001-FETCH099)
//
//	FETCH001 - Unexpected status: The catalog source answered with an error
//	           Action: Check that the shared archive link is still public
//	           Patterns: "unexpected status"
//
//	FETCH002 - Archive too large: The catalog archive exceeds the size limit
//	           Action: Raise CATALOG_MAX_ARCHIVE_SIZE or shrink the archive
//	           Patterns: "archive exceeds"
//
//	FETCH003 - Unreachable: The catalog source could not be reached
//	           Action: Check the network connection and try again
//	           Patterns: "fetch failed"
//
// # Archive Errors (ARC001-ARC099)
//
//	ARC001 - No spreadsheet: The archive contains no .xlsx file
//	         Action: Make sure the ZIP contains the catalog workbook
//	         Patterns: "no spreadsheet found"
//
//	ARC002 - Invalid archive: The download is not a valid ZIP file
//	         Action: Verify the archive link points to the ZIP itself
//	         Patterns: "invalid archive"
//
// # Spreadsheet Errors (XLS001-XLS099)
//
//	XLS001 - Missing sheets: The workbook needs a parts sheet and a products sheet
//	         Action: Keep parts as the first sheet and products as the second
//	         Patterns: "at least two sheets"
//
//	XLS002 - Unreadable sheet: A sheet could not be read
//	         Action: Open the workbook in Excel and save it again as .xlsx
//	         Patterns: "parse error"
//
// # Catalog Errors (CAT001-CAT099)
//
//	CAT001 - Product not found: The product code is not in the catalog
//	         Action: Refresh the data or pick another product
//	         Patterns: "product not found"
//
//	CAT002 - Part not found: The part code is not in the catalog
//	         Action: Refresh the data or pick another part
//	         Patterns: "part not found"
//
// # Export Errors (EXP001-EXP099)
//
//	EXP001 - Export busy: Too many downloads are being generated
//	         Action: Wait a few seconds and download again
//	         Patterns: "too many concurrent exports"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded", "timeout"
//
//	REQ003 - Unknown page: That page does not exist
//	         Patterns: "unknown page"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Support staff should check the
// application logs for the original technical error.
//
// # Pattern Matching
//
// Patterns are matched case-insensitively using strings.Contains and the first
// match wins, so specific patterns come before general ones.
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

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first matching pattern wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Download Errors (FETCH001-FETCH003)
	// =========================================================================
	{
		pattern: "unexpected status",
		msg: UserMessage{
			Message: "The catalog source answered with an error",
			Action:  "Check that the shared archive link is still public",
			Code:    "FETCH001",
		},
	},
	{
		pattern: "archive exceeds",
		msg: UserMessage{
			Message: "The catalog archive exceeds the size limit",
			Action:  "Raise CATALOG_MAX_ARCHIVE_SIZE or shrink the archive",
			Code:    "FETCH002",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// Checked before the generic fetch pattern so a cancelled download is
	// reported as such.
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "The catalog source is slow; try again in a moment",
			Code:    "REQ002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "The catalog source is slow; try again in a moment",
			Code:    "REQ002",
		},
	},
	{
		pattern: "unknown page",
		msg: UserMessage{
			Message: "That page does not exist",
			Action:  "Go back to the start page",
			Code:    "REQ003",
		},
	},
	{
		pattern: "fetch failed",
		msg: UserMessage{
			Message: "The catalog source could not be reached",
			Action:  "Check the network connection and try again",
			Code:    "FETCH003",
		},
	},

	// =========================================================================
	// Archive Errors (ARC001-ARC002)
	// =========================================================================
	{
		pattern: "no spreadsheet found",
		msg: UserMessage{
			Message: "The archive contains no spreadsheet",
			Action:  "Make sure the ZIP contains the catalog workbook",
			Code:    "ARC001",
		},
	},
	{
		pattern: "invalid archive",
		msg: UserMessage{
			Message: "The download is not a valid ZIP file",
			Action:  "Verify the archive link points to the ZIP itself",
			Code:    "ARC002",
		},
	},

	// =========================================================================
	// Spreadsheet Errors (XLS001-XLS002)
	// =========================================================================
	{
		pattern: "at least two sheets",
		msg: UserMessage{
			Message: "The workbook needs a parts sheet and a products sheet",
			Action:  "Keep parts as the first sheet and products as the second",
			Code:    "XLS001",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "A sheet of the workbook could not be read",
			Action:  "Open the workbook in Excel and save it again as .xlsx",
			Code:    "XLS002",
		},
	},

	// =========================================================================
	// Catalog Errors (CAT001-CAT002)
	// =========================================================================
	{
		pattern: "product not found",
		msg: UserMessage{
			Message: "Product not found",
			Action:  "Refresh the data or pick another product",
			Code:    "CAT001",
		},
	},
	{
		pattern: "part not found",
		msg: UserMessage{
			Message: "Part not found",
			Action:  "Refresh the data or pick another part",
			Code:    "CAT002",
		},
	},

	// =========================================================================
	// Export Errors (EXP001)
	// =========================================================================
	{
		pattern: "too many concurrent exports",
		msg: UserMessage{
			Message: "Too many downloads are being generated",
			Action:  "Wait a few seconds and download again",
			Code:    "EXP001",
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
// It returns the first matching pattern, or ERR000 when nothing matches.
//
//	err := &FetchError{URL: u, StatusCode: 404}
//	msg := MapError(err)
//	// msg.Code == "FETCH001"
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

// IsUserFacing reports whether err matches a known pattern (not ERR000).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
