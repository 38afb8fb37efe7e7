package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"syscall"
	"time"

	"claudewatch/internal/errors"
)

// lockPollInterval is how often a waiting invocation re-attempts the lock.
const lockPollInterval = 50 * time.Millisecond

// FileLock serializes the read-decide-write sequence across concurrent
// invocations (the periodic trigger and a manual command can overlap as
// independent OS processes). The lock is a sibling file of the session
// record, created with O_EXCL; a lock whose owning process is dead is
// treated as stale and removed.
type FileLock struct {
	path string
	wait time.Duration
}

// lockInfo is the lock file payload, recorded for diagnostics and for the
// liveness check that detects stale locks.
type lockInfo struct {
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// Lock is an acquired store lock. Release is safe to call multiple times
// and never removes a lock owned by another process.
type Lock struct {
	path     string
	pid      int
	released bool
}

// NewFileLock creates a lock scoped to the given session record path.
// wait bounds how long Acquire will retry before reporting errors.ErrBusy.
func NewFileLock(recordPath string, wait time.Duration) *FileLock {
	return &FileLock{
		path: recordPath + ".lock",
		wait: wait,
	}
}

// Acquire obtains the store lock, retrying while another live process holds
// it. It returns errors.ErrBusy once the wait deadline passes, so an
// invocation contending with another never hangs indefinitely.
func (fl *FileLock) Acquire(ctx context.Context) (*Lock, error) {
	deadline := time.Now().Add(fl.wait)

	for {
		lock, err := fl.tryAcquire()
		if err == nil {
			return lock, nil
		}
		if !errors.Is(err, errors.ErrLocked) {
			return nil, err
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: lock held by another invocation at %s", errors.ErrBusy, fl.path)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", errors.ErrBusy, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

// tryAcquire makes a single attempt at the lock.
func (fl *FileLock) tryAcquire() (*Lock, error) {
	// A lock file left behind by a dead process must not wedge the store.
	if existing, err := readLockInfo(fl.path); err == nil {
		if isProcessAlive(existing.PID) {
			return nil, fmt.Errorf("%w: held by PID %d on %s", errors.ErrLocked, existing.PID, existing.Hostname)
		}
		if err := fl.claimStale(); err != nil {
			return nil, err
		}
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	info := lockInfo{
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: time.Now(),
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal lock info: %v", errors.ErrStorageUnavailable, err)
	}

	// O_EXCL makes creation the atomicity point: losing the race surfaces
	// as ErrLocked, never as two holders.
	f, err := os.OpenFile(fl.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			if existing, readErr := readLockInfo(fl.path); readErr == nil {
				return nil, fmt.Errorf("%w: held by PID %d on %s", errors.ErrLocked, existing.PID, existing.Hostname)
			}
			return nil, errors.ErrLocked
		}
		return nil, fmt.Errorf("%w: failed to create lock file: %v", errors.ErrStorageUnavailable, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(fl.path)
		return nil, fmt.Errorf("%w: failed to write lock file: %v", errors.ErrStorageUnavailable, err)
	}

	return &Lock{path: fl.path, pid: info.PID}, nil
}

// claimStale clears a lock file whose owner is dead. The file is renamed
// to a name unique to this process before removal, so when several waiters
// observe the same stale lock exactly one of them clears it; the rest lose
// the rename and go back to polling. If the rename captures a lock a rival
// re-created in the meantime, it is put back untouched.
func (fl *FileLock) claimStale() error {
	claimed := fmt.Sprintf("%s.stale.%d", fl.path, os.Getpid())

	if err := os.Rename(fl.path, claimed); err != nil {
		if os.IsNotExist(err) {
			// Another waiter already cleared it.
			return nil
		}
		return fmt.Errorf("%w: failed to claim stale lock: %v", errors.ErrStorageUnavailable, err)
	}

	if info, err := readLockInfo(claimed); err == nil && isProcessAlive(info.PID) {
		_ = os.Rename(claimed, fl.path)
		return fmt.Errorf("%w: held by PID %d on %s", errors.ErrLocked, info.PID, info.Hostname)
	}

	if err := os.Remove(claimed); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: failed to remove stale lock: %v", errors.ErrStorageUnavailable, err)
	}
	return nil
}

// Release removes the lock file if this process still owns it.
func (l *Lock) Release() error {
	if l == nil || l.released {
		return nil
	}
	l.released = true

	existing, err := readLockInfo(l.path)
	if err != nil {
		// Lock file already gone - nothing to do.
		return nil
	}
	if existing.PID != l.pid {
		// Not our lock - leave it alone.
		return nil
	}

	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// readLockInfo reads and parses a lock file.
func readLockInfo(path string) (*lockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var info lockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to parse lock file: %w", err)
	}
	return &info, nil
}

// isProcessAlive checks if a process with the given PID is still running.
func isProcessAlive(pid int) bool {
	// On Unix, sending signal 0 checks if process exists without affecting it
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
