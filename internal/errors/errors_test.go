package errors

import (
	"fmt"
	"testing"
	"time"
)

func TestAlreadyActiveError_Message(t *testing.T) {
	err := &AlreadyActiveError{SessionID: 3, Remaining: 2 * time.Hour}

	want := "session #3 already active, 2:00 remaining"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestAlreadyActiveError_MatchesSentinel(t *testing.T) {
	var err error = &AlreadyActiveError{SessionID: 1, Remaining: time.Hour}

	if !Is(err, ErrSessionActive) {
		t.Error("AlreadyActiveError should match ErrSessionActive")
	}

	var active *AlreadyActiveError
	if !As(err, &active) {
		t.Fatal("As should extract AlreadyActiveError")
	}
	if active.Remaining != time.Hour {
		t.Errorf("Remaining = %v, want 1h", active.Remaining)
	}
}

func TestAlreadyActiveError_NegativeRemainingClamped(t *testing.T) {
	err := &AlreadyActiveError{SessionID: 1, Remaining: -time.Minute}

	want := "session #1 already active, 0:00 remaining"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNoSession,
		ErrSessionActive,
		ErrSessionExpired,
		ErrCorrupted,
		ErrStorageUnavailable,
		ErrBusy,
		ErrLocked,
		ErrProbeUnavailable,
		ErrProbeTimeout,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && Is(a, b) {
				t.Errorf("sentinel %v unexpectedly matches %v", a, b)
			}
		}
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	err := fmt.Errorf("%w: permission denied", ErrStorageUnavailable)

	if !Is(err, ErrStorageUnavailable) {
		t.Error("wrapped sentinel should match")
	}
	if Is(err, ErrNoSession) {
		t.Error("wrapped storage error must not match ErrNoSession")
	}
}
