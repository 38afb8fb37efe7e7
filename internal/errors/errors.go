// Package errors provides centralized error definitions for the claudewatch
// codebase. It defines the sentinel errors that make up the session manager's
// error taxonomy, along with a typed refusal error for already-active windows.
//
// Callers import only this package for error handling:
//
//	if errors.Is(err, errors.ErrNoSession) { ... }
//
//	var active *errors.AlreadyActiveError
//	if errors.As(err, &active) { ... }
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Session-related sentinel errors
var (
	// ErrNoSession indicates that no usage window has ever been started.
	// It is a legitimate state, not a failure.
	ErrNoSession = New("no session exists")
	// ErrSessionActive indicates that a usage window is currently open
	// and activation was refused without force.
	ErrSessionActive = New("session already active")
	// ErrSessionExpired indicates that the current window has elapsed and
	// cannot be refreshed.
	ErrSessionExpired = New("session expired")
)

// Storage-related sentinel errors
var (
	// ErrCorrupted indicates that the persisted session record cannot be
	// parsed or fails validation.
	ErrCorrupted = New("session record corrupted")
	// ErrStorageUnavailable indicates that the session record could not be
	// read or written.
	ErrStorageUnavailable = New("session storage unavailable")
	// ErrBusy indicates that another invocation holds the store lock and
	// did not release it within the wait deadline.
	ErrBusy = New("session store is busy")
	// ErrLocked indicates that the store lock is currently held by a live
	// process. Lock acquisition retries on this until its deadline.
	ErrLocked = New("session store is locked")
)

// Probe-related sentinel errors
var (
	// ErrProbeUnavailable indicates that the Claude CLI could not be
	// confirmed reachable.
	ErrProbeUnavailable = New("claude probe failed")
	// ErrProbeTimeout indicates that the probe did not complete within its
	// configured deadline.
	ErrProbeTimeout = New("claude probe timed out")
)

// AlreadyActiveError is the refusal signal returned by a non-forced
// activation while a window is open. It carries the existing session's
// ordinal and remaining time so the caller can report them.
type AlreadyActiveError struct {
	SessionID int64
	Remaining time.Duration
}

// Error implements the error interface.
func (e *AlreadyActiveError) Error() string {
	return fmt.Sprintf("session #%d already active, %s remaining", e.SessionID, clockFormat(e.Remaining))
}

// Unwrap allows errors.Is(err, ErrSessionActive) to match.
func (e *AlreadyActiveError) Unwrap() error {
	return ErrSessionActive
}

// clockFormat renders a duration as h:mm.
func clockFormat(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
