package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyguardErrorMapping(t *testing.T) {
	assert.True(t, IsCanceled(keyguardError(ErrorMsgCanceled)))
	assert.True(t, IsAborted(keyguardError(ErrorMsgAborted)))

	plain := keyguardError("key derivation failed")
	assert.False(t, IsCanceled(plain))
	assert.False(t, IsAborted(plain))
	assert.Equal(t, "key derivation failed", plain.Error())
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "CANCELED", (&CancellationError{}).Error())
	assert.Equal(t, "Request aborted", (&AbortError{}).Error())
	assert.Equal(t, "wallet not found", (&NotFoundError{What: "wallet"}).Error())
	assert.Equal(t, "value: is required", ValidationErrorf("value", "is required").Error())
	assert.Equal(t,
		"https://shop.example is not authorized to request onboard",
		(&AuthorizationError{Origin: "https://shop.example", Reason: "is not authorized to request onboard"}).Error())
	assert.Equal(t, "unknown request kind: mystery", (&UnknownKindError{Kind: "mystery"}).Error())
}

func TestShouldReportToDiagnostics(t *testing.T) {
	// Caller mistakes and user-driven outcomes stay out of diagnostics
	assert.False(t, shouldReportToDiagnostics(ValidationErrorf("value", "is required")))
	assert.False(t, shouldReportToDiagnostics(&NotFoundError{What: "wallet"}))
	assert.False(t, shouldReportToDiagnostics(&CancellationError{}))
	assert.False(t, shouldReportToDiagnostics(&AbortError{}))
	assert.False(t, shouldReportToDiagnostics(errors.New("Account ID not found")))

	// Everything else is a hub defect
	assert.True(t, shouldReportToDiagnostics(errors.New("keyguard is not connected")))
	assert.True(t, shouldReportToDiagnostics(&AuthorizationError{Origin: "x", Reason: "y"}))
}
