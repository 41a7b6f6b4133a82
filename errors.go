package main

import (
	"errors"
	"fmt"
)

// The hub distinguishes six error classes. Validation, authorization and
// not-found failures terminate a session immediately with an ERROR reply.
// Cancellation is a terminal reply as well. Abort is recoverable: it triggers
// a history-back step instead of a reply, unless no history remains.

// ValidationError reports a malformed or missing field in a caller request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// ValidationErrorf builds a ValidationError for the given field.
func ValidationErrorf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// AuthorizationError reports that a caller origin is not permitted to invoke
// an operation or a privileged-only field.
type AuthorizationError struct {
	Origin string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s %s", e.Origin, e.Reason)
}

// NotFoundError reports that a required local account or wallet could not be
// resolved from the request.
type NotFoundError struct {
	What string
}

func (e *NotFoundError) Error() string {
	return e.What + " not found"
}

// CancellationError reports that the user explicitly canceled the operation
// in the key custody service.
type CancellationError struct{}

func (e *CancellationError) Error() string { return ErrorMsgCanceled }

// AbortError reports a navigation-induced interruption of the keyguard round
// trip. It is recoverable and must not be surfaced to the caller while
// further back-navigation is possible.
type AbortError struct{}

func (e *AbortError) Error() string { return ErrorMsgAborted }

// UnknownKindError reports an unrecognized request kind. The normalizer
// returns no result for these so callers can treat them as a no-op.
type UnknownKindError struct {
	Kind RequestKind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("unknown request kind: %s", e.Kind)
}

// Wire error messages the keyguard uses to signal cancellation and abort.
const (
	ErrorMsgCanceled = "CANCELED"
	ErrorMsgAborted  = "Request aborted"
)

// keyguardError converts a wire error message from the keyguard into the
// matching taxonomy error.
func keyguardError(message string) error {
	switch message {
	case ErrorMsgCanceled:
		return &CancellationError{}
	case ErrorMsgAborted:
		return &AbortError{}
	default:
		return errors.New(message)
	}
}

// IsCanceled reports whether err denotes explicit user cancellation.
func IsCanceled(err error) bool {
	var ce *CancellationError
	return errors.As(err, &ce)
}

// IsAborted reports whether err denotes a navigation-induced abort.
func IsAborted(err error) bool {
	var ae *AbortError
	return errors.As(err, &ae)
}

// diagnosticsIgnoreList holds error messages that are replied to the caller
// but never forwarded to the diagnostics sink. Expected user-driven outcomes
// are not crashes.
var diagnosticsIgnoreList = []string{
	ErrorMsgCanceled,
	ErrorMsgAborted,
	"Account ID not found",
	"Address not found",
	"account not found",
	"wallet not found",
}

// shouldReportToDiagnostics decides whether err is forwarded to the
// diagnostics sink. Validation and not-found failures are caller mistakes,
// not hub defects.
func shouldReportToDiagnostics(err error) bool {
	var ve *ValidationError
	var nfe *NotFoundError
	if errors.As(err, &ve) || errors.As(err, &nfe) {
		return false
	}
	msg := err.Error()
	for _, ignored := range diagnosticsIgnoreList {
		if msg == ignored {
			return false
		}
	}
	return true
}
