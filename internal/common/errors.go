// Package common defines shared constants and sentinel errors used across
// sitescribe components. Callers should use errors.Is / errors.As to match
// these values; the set is closed on purpose so every call site can handle
// known failure kinds exhaustively.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrNotFound          = errors.New("not found")
	ErrDuplicateID       = errors.New("duplicate id")
	ErrUnknownInspection = errors.New("unknown inspection")

	// Recording session errors.
	ErrPermissionDenied  = errors.New("permission denied")
	ErrDeviceBusy        = errors.New("device busy")
	ErrNoActiveRecording = errors.New("no active recording")

	// Sync / analysis errors.
	ErrFileNotFound = errors.New("file not found")
	ErrNoAudio      = errors.New("inspection has no remote audio")
)

// TransportError marks a remote call that failed for reasons other than
// authorization (network, timeouts, 5xx). Retrying is generally safe.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError marks a remote call rejected for credential reasons. Retrying
// without operator intervention will not help.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authorization failure during %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TranscriptionError is fatal to a whole analysis run: no partial transcript
// is usable downstream.
type TranscriptionError struct {
	Cause error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Cause)
}

func (e *TranscriptionError) Unwrap() error { return e.Cause }
