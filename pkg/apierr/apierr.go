// Package apierr defines the sanitized error taxonomy exposed to MCP clients.
//
// Internal errors carry full detail for logging; only the Kind's canned
// message ever reaches the client, per the error handling design.
package apierr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the user-visible categories.
type Kind string

const (
	KindTimeout         Kind = "timeout"
	KindPathNotFound    Kind = "path-not-found"
	KindPermission      Kind = "permission"
	KindNoCLIs          Kind = "no-clis"
	KindRecursion       Kind = "recursion"
	KindMissingContext  Kind = "missing-context"
	KindGeneric         Kind = "generic"
)

// messages holds the canonical user-visible text for each Kind. Errors
// built with a non-empty Message (MissingContextID, ContextNotFound, and
// Newf for any Kind) carry that verbatim, call-site-supplied text instead
// (validation errors are informative by nature).
var messages = map[Kind]string{
	KindTimeout:      "Analysis timed out — try reducing scope or increasing timeout",
	KindPathNotFound: "Target path not found — verify the path exists and is accessible",
	KindPermission:   "Permission denied — check file access",
	KindNoCLIs:       "No CLI agents available for analysis",
	KindRecursion:    "Cannot be used from within a brutalist-spawned CLI subprocess",
	KindGeneric:      "Analysis failed due to internal error",
}

// Error is a sanitized, client-facing error that still carries its Kind and
// wraps the internal cause for logging (Unwrap).
type Error struct {
	Kind    Kind
	Message string // overrides the canned message when non-empty
	Cause   error
}

func (e *Error) Error() string {
	return e.UserMessage()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// UserMessage returns the exact text that may be shown to the MCP client.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if msg, ok := messages[e.Kind]; ok {
		return msg
	}
	return messages[KindGeneric]
}

// New wraps cause under the given Kind using the canned message.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Newf builds a KindMissingContext-style error with a verbatim message (no
// wrapped cause); used for validation failures that must stay verbatim.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Recursion returns the canned recursion-guard error.
func Recursion() *Error {
	return &Error{Kind: KindRecursion}
}

// NoCLIs returns the canned no-agents-available error.
func NoCLIs() *Error {
	return &Error{Kind: KindNoCLIs}
}

// MissingContextID is returned when resume=true arrives without context_id.
func MissingContextID() *Error {
	return &Error{
		Kind:    KindMissingContext,
		Message: "The 'resume' flag requires a 'context_id' from a previous response to continue a conversation",
	}
}

// ContextNotFound is returned when a supplied context_id doesn't resolve.
func ContextNotFound() *Error {
	return &Error{
		Kind:    KindMissingContext,
		Message: "Context ID not found. It may have expired or belong to a different session",
	}
}

// UserMessage extracts the sanitized message for any error, classifying
// unrecognized errors as generic. Use at the response boundary only.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return messages[KindGeneric]
}

// KindOf extracts the Kind from any error, defaulting to KindGeneric.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindGeneric
}
