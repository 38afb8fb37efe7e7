package window_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"claudewatch/internal/errors"
	"claudewatch/internal/probe"
	"claudewatch/internal/store"
	"claudewatch/internal/testutil"
	"claudewatch/internal/window"
)

// fileLocker adapts store.FileLock to window.Locker, as the CLI wiring does.
type fileLocker struct {
	lock *store.FileLock
}

func (l fileLocker) Acquire(ctx context.Context) (window.Unlocker, error) {
	return l.lock.Acquire(ctx)
}

func fakeCLI(t *testing.T, script string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "claude")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write fake CLI: %v", err)
	}
	return path
}

func newFileManager(t *testing.T, recordPath string, prober window.Prober, clock window.Clock) *window.Manager {
	t.Helper()
	return window.NewManager(
		store.New(recordPath),
		fileLocker{store.NewFileLock(recordPath, time.Second)},
		prober,
		clock,
		5*time.Hour,
		nil,
	)
}

func TestLifecycle_AgainstFileStore(t *testing.T) {
	recordPath := testutil.TempRecordPath(t)
	cli := fakeCLI(t, `echo '{"is_error": false, "result": "ok"}'`)
	prober := probe.NewCLIProber(probe.WithCommand(cli))
	clock := &testutil.FakeClock{Current: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)}

	mgr := newFileManager(t, recordPath, prober, clock)

	// Activation writes the record.
	sess, err := mgr.Activate(context.Background(), false)
	if err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if sess.ID != 1 {
		t.Fatalf("ID = %d, want 1", sess.ID)
	}

	// 09:30: status reports 1:30 elapsed, 3:30 remaining.
	clock.Advance(90 * time.Minute)
	rep, err := mgr.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if rep.State != window.StatusActive {
		t.Errorf("State = %v, want active", rep.State)
	}
	if rep.Elapsed != 90*time.Minute || rep.Remaining != 3*time.Hour+30*time.Minute {
		t.Errorf("Elapsed/Remaining = %v/%v, want 1h30m/3h30m", rep.Elapsed, rep.Remaining)
	}

	// A non-forced activation while active leaves the record untouched
	// byte for byte.
	before, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	_, err = mgr.Activate(context.Background(), false)
	var active *errors.AlreadyActiveError
	if !errors.As(err, &active) {
		t.Fatalf("err = %v, want AlreadyActiveError", err)
	}
	after, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("record changed across an idempotent refusal")
	}

	// 13:00:01: the window elapsed; the trigger's non-forced call starts
	// session #2 expiring at 18:00:01.
	clock.Current = time.Date(2026, 8, 28, 13, 0, 1, 0, time.UTC)
	sess, err = mgr.Activate(context.Background(), false)
	if err != nil {
		t.Fatalf("Activate after expiry failed: %v", err)
	}
	if sess.ID != 2 {
		t.Errorf("ID = %d, want 2", sess.ID)
	}
	want := time.Date(2026, 8, 28, 18, 0, 1, 0, time.UTC)
	if !sess.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", sess.ExpiresAt, want)
	}
}

func TestLifecycle_ProbeFailureKeepsRecordBytes(t *testing.T) {
	recordPath := testutil.TempRecordPath(t)
	clock := &testutil.FakeClock{Current: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)}

	good := probe.NewCLIProber(probe.WithCommand(fakeCLI(t, `echo '{"is_error": false}'`)))
	if _, err := newFileManager(t, recordPath, good, clock).Activate(context.Background(), false); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	before, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}

	// The window expires, but now the service is down: activation must
	// fail closed and keep the old record.
	clock.Advance(6 * time.Hour)
	bad := probe.NewCLIProber(probe.WithCommand(fakeCLI(t, `echo '{"is_error": true, "result": "limit"}'`)))
	_, err = newFileManager(t, recordPath, bad, clock).Activate(context.Background(), false)
	if !errors.Is(err, errors.ErrProbeUnavailable) {
		t.Fatalf("err = %v, want ErrProbeUnavailable", err)
	}

	after, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("read record: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Error("record changed after a failed probe")
	}
}

func TestLifecycle_RecordSurvivesManagerInstances(t *testing.T) {
	// The manual command and the periodic trigger run as separate
	// processes; each builds its own manager over the same record.
	recordPath := testutil.TempRecordPath(t)
	cli := fakeCLI(t, `echo '{"is_error": false}'`)
	clock := &testutil.FakeClock{Current: time.Date(2026, 8, 28, 8, 0, 0, 0, time.UTC)}

	first := newFileManager(t, recordPath, probe.NewCLIProber(probe.WithCommand(cli)), clock)
	if _, err := first.Activate(context.Background(), false); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	clock.Advance(time.Hour)
	second := newFileManager(t, recordPath, probe.NewCLIProber(probe.WithCommand(cli)), clock)
	rep, err := second.Status()
	if err != nil {
		t.Fatalf("Status from second manager failed: %v", err)
	}
	if rep.Session.ID != 1 || rep.Elapsed != time.Hour {
		t.Errorf("second manager sees ID %d elapsed %v, want 1 and 1h", rep.Session.ID, rep.Elapsed)
	}
}
