// Package core runs validation jobs and keeps the per-resource record.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Operators and catalog users can quote the code when a run or request fails.
//
// # Configuration Errors (CFG001-CFG099)
//
//	CFG001 - Unknown check: A configured check is not registered
//	         Action: Remove the check or use one listed by "tabcheck checks"
//	         Patterns: "unknown check"
//
//	CFG002 - Bad options: Validation options could not be read
//	         Action: Fix the validation_options JSON on the resource
//	         Patterns: "configuration: options", "configuration: dialect"
//
//	CFG003 - Bad schema: The table schema could not be read
//	         Action: Fix the schema on the resource
//	         Patterns: "configuration: schema"
//
//	CFG004 - Other configuration error
//	         Patterns: "configuration:"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Resource or dataset unknown to the catalog
//	         Patterns: "catalog: not found", "not found error"
//
//	SRC002 - Catalog unreachable
//	         Patterns: "catalog package_show", "catalog resource_patch"
//
//	SRC003 - Uploaded file missing
//	         Patterns: "storage: not found"
//
//	SRC004 - Upload too large
//	         Patterns: "upload too large"
//
// # Record Errors (REC001-REC099)
//
//	REC001 - No validation for this resource yet
//	         Patterns: "validation record not found"
//
//	REC002 - Resource id missing from the request
//	         Patterns: "resource id is required"
//
//	REC003 - Database unreachable
//	         Patterns: "connection refused", "connection reset"
//
// # Run Errors (RUN001-RUN099)
//
//	RUN001 - All run slots busy
//	         Patterns: "too many validation runs"
//
//	RUN002 - Request cancelled
//	         Patterns: "context canceled"
//
//	RUN003 - Request timed out
//	         Patterns: "context deadline exceeded", "timeout"
//
// # General Errors (ERR000)
//
//	ERR000 - Unexpected error, check application logs
//
// # For Support Staff
//
// When a user reports an error code:
//  1. Look up the code in this reference
//  2. Check the associated patterns to understand what triggered it
//  3. If ERR000, check application logs for the original technical error
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
// The first matching pattern wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Configuration Errors (CFG001-CFG004)
	// =========================================================================
	{
		pattern: "unknown check",
		msg: UserMessage{
			Message: "A configured check is not registered",
			Action:  "Remove the check or use one listed by \"tabcheck checks\"",
			Code:    "CFG001",
		},
	},
	{
		pattern: "configuration: options",
		msg: UserMessage{
			Message: "Validation options could not be read",
			Action:  "Fix the validation_options JSON on the resource",
			Code:    "CFG002",
		},
	},
	{
		pattern: "configuration: dialect",
		msg: UserMessage{
			Message: "Validation options could not be read",
			Action:  "Fix the dialect in validation_options",
			Code:    "CFG002",
		},
	},
	{
		pattern: "configuration: schema",
		msg: UserMessage{
			Message: "The table schema could not be read",
			Action:  "Fix the schema on the resource",
			Code:    "CFG003",
		},
	},
	{
		pattern: "configuration:",
		msg: UserMessage{
			Message: "Validation is misconfigured",
			Action:  "Review the validation options for this resource",
			Code:    "CFG004",
		},
	},

	// =========================================================================
	// Source Errors (SRC001-SRC004)
	// =========================================================================
	{
		pattern: "catalog: not found",
		msg: UserMessage{
			Message: "The resource or its dataset does not exist in the catalog",
			Action:  "Check the resource and package ids",
			Code:    "SRC001",
		},
	},
	{
		pattern: "not found error",
		msg: UserMessage{
			Message: "The resource or its dataset does not exist in the catalog",
			Action:  "Check the resource and package ids",
			Code:    "SRC001",
		},
	},
	{
		pattern: "catalog package_show",
		msg: UserMessage{
			Message: "The catalog could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "SRC002",
		},
	},
	{
		pattern: "catalog resource_patch",
		msg: UserMessage{
			Message: "The catalog could not be updated",
			Action:  "The result is stored; the catalog will catch up on the next run",
			Code:    "SRC002",
		},
	},
	{
		pattern: "storage: not found",
		msg: UserMessage{
			Message: "The uploaded file is missing",
			Action:  "Upload the file again",
			Code:    "SRC003",
		},
	},
	{
		pattern: "upload too large",
		msg: UserMessage{
			Message: "The file exceeds the upload size limit",
			Action:  "Split the file or link it by URL",
			Code:    "SRC004",
		},
	},

	// =========================================================================
	// Record Errors (REC001-REC003)
	// =========================================================================
	{
		pattern: "validation record not found",
		msg: UserMessage{
			Message: "No validation has run for this resource",
			Action:  "Start a validation run first",
			Code:    "REC001",
		},
	},
	{
		pattern: "resource id is required",
		msg: UserMessage{
			Message: "The resource id is missing",
			Action:  "Send the resource with its id",
			Code:    "REC002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to database",
			Action:  "Please try again in a few moments",
			Code:    "REC003",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Database connection was interrupted",
			Action:  "Please try again",
			Code:    "REC003",
		},
	},

	// =========================================================================
	// Run Errors (RUN001-RUN003)
	// =========================================================================
	{
		pattern: "too many validation runs",
		msg: UserMessage{
			Message: "The validator is busy with other runs",
			Action:  "Please wait a moment and try again",
			Code:    "RUN001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "RUN002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try again later or validate a smaller file",
			Code:    "RUN003",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try again later or validate a smaller file",
			Code:    "RUN003",
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
// It returns the first pattern match (case-insensitive) or the ERR000
// fallback.
//
// Example:
//
//	msg := MapError(ErrTooManyRuns)
//	// msg.Code == "RUN001"
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

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
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
