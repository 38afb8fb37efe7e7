// Package window implements the usage-window lifecycle for the Claude CLI's
// rate-limited 5-hour sessions: the immutable Session value, the Manager
// that decides when a new window starts, and the clock abstraction that
// makes both testable against fixed instants.
package window

import "time"

// Status describes whether a usage window is currently open.
// It is never persisted; it is always derived from (session, now) at read
// time, so a record written hours ago still reports correctly.
type Status string

const (
	// StatusActive means the current instant falls inside the window.
	StatusActive Status = "active"
	// StatusExpired means the window's expiry has passed.
	StatusExpired Status = "expired"
)

// Session is one usage window. Values are immutable once constructed:
// a window is never extended or shortened in place, only superseded by
// the next activation.
type Session struct {
	// ID is a monotonic ordinal, starting at 1 for the first window ever
	// created and incremented on every supersession.
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New constructs a session starting at startedAt and expiring exactly
// duration later.
func New(id int64, startedAt time.Time, duration time.Duration) Session {
	return Session{
		ID:        id,
		StartedAt: startedAt,
		ExpiresAt: startedAt.Add(duration),
	}
}

// Duration returns the full length of the window.
func (s Session) Duration() time.Duration {
	return s.ExpiresAt.Sub(s.StartedAt)
}

// Status derives the window state at the given instant.
func (s Session) Status(now time.Time) Status {
	if now.Before(s.ExpiresAt) {
		return StatusActive
	}
	return StatusExpired
}

// Active reports whether the window is open at the given instant.
func (s Session) Active(now time.Time) bool {
	return s.Status(now) == StatusActive
}

// Elapsed returns the time since the window started, clamped to >= 0.
func (s Session) Elapsed(now time.Time) time.Duration {
	if now.Before(s.StartedAt) {
		return 0
	}
	return now.Sub(s.StartedAt)
}

// Remaining returns the time until expiry, clamped to >= 0. An expired
// window reports zero, never a negative value.
func (s Session) Remaining(now time.Time) time.Duration {
	if !now.Before(s.ExpiresAt) {
		return 0
	}
	return s.ExpiresAt.Sub(now)
}
