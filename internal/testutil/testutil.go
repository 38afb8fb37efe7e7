// Package testutil provides test doubles shared across claudewatch tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// FakeClock is a Clock whose instant is set by the test.
type FakeClock struct {
	Current time.Time
}

// Now returns the pinned instant.
func (c *FakeClock) Now() time.Time {
	return c.Current
}

// Advance moves the clock forward.
func (c *FakeClock) Advance(d time.Duration) {
	c.Current = c.Current.Add(d)
}

// StubProber is a Prober double that records calls and returns a canned
// error.
type StubProber struct {
	Err   error
	Calls int
}

// Probe implements the prober contract.
func (p *StubProber) Probe(ctx context.Context) error {
	p.Calls++
	return p.Err
}

// TempRecordPath returns a session record path inside a fresh temp
// directory that is cleaned up with the test.
func TempRecordPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "session.json")
}
