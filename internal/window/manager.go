package window

import (
	"context"
	"fmt"
	"time"

	"claudewatch/internal/errors"
	"claudewatch/internal/logging"
)

// Store is the persistence contract the Manager depends on. Exactly one
// session record is current at any time; Save fully replaces it.
type Store interface {
	// Load returns the current session, errors.ErrNoSession if none has
	// ever been written, or a storage error.
	Load() (Session, error)
	// Save durably persists the session, overwriting any prior record.
	Save(Session) error
	// Delete removes the record. Missing records are not an error.
	Delete() error
}

// Unlocker releases an acquired store lock.
type Unlocker interface {
	Release() error
}

// Locker provides mutual exclusion around the store's read-decide-write
// sequence. Acquire blocks up to a bounded wait and then reports
// errors.ErrBusy.
type Locker interface {
	Acquire(ctx context.Context) (Unlocker, error)
}

// Prober verifies the remote service before a window is committed.
type Prober interface {
	Probe(ctx context.Context) error
}

// Report is the result of a status query: the session plus its state and
// figures derived against a single instant.
type Report struct {
	Session   Session
	State     Status
	Elapsed   time.Duration
	Remaining time.Duration
}

// Manager owns the session lifecycle rules: when a window starts, when an
// activation is refused, and how status is derived. It is the only
// component that mutates the store.
type Manager struct {
	store    Store
	lock     Locker
	prober   Prober
	clock    Clock
	duration time.Duration
	logger   *logging.Logger
}

// NewManager creates a Manager. duration is the configured window length.
// The logger may be nil, in which case logging is disabled.
func NewManager(store Store, lock Locker, prober Prober, clock Clock, duration time.Duration, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Manager{
		store:    store,
		lock:     lock,
		prober:   prober,
		clock:    clock,
		duration: duration,
		logger:   logger,
	}
}

// Status reports on the current session without side effects. It never
// creates or mutates state: errors.ErrNoSession means no window was ever
// started, which is distinct from a storage failure.
func (m *Manager) Status() (*Report, error) {
	sess, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	now := m.clock.Now()
	return &Report{
		Session:   sess,
		State:     sess.Status(now),
		Elapsed:   sess.Elapsed(now),
		Remaining: sess.Remaining(now),
	}, nil
}

// Activate starts a new usage window unless one is already open.
//
// With force false an open window makes this an idempotent no-op: the call
// returns *errors.AlreadyActiveError carrying the remaining time, without
// probing the service or touching the store. That is what lets a periodic
// trigger invoke Activate on every cycle without ever double-starting a
// window. With force true the open window is discarded early.
//
// The store is only written after the probe acknowledges the service
// (fail-closed): a probe failure surfaces to the caller with stored state
// unchanged. The whole read-decide-write sequence runs under the store
// lock so two overlapping invocations cannot both create a window.
func (m *Manager) Activate(ctx context.Context, force bool) (Session, error) {
	unlock, err := m.lock.Acquire(ctx)
	if err != nil {
		return Session{}, err
	}
	defer func() { _ = unlock.Release() }()

	now := m.clock.Now()

	next := int64(1)
	cur, err := m.store.Load()
	switch {
	case err == nil:
		if cur.Active(now) && !force {
			m.logger.Debug("activation refused, window open",
				"session_id", cur.ID,
				"remaining", cur.Remaining(now).String(),
			)
			return Session{}, &errors.AlreadyActiveError{
				SessionID: cur.ID,
				Remaining: cur.Remaining(now),
			}
		}
		next = cur.ID + 1
	case errors.Is(err, errors.ErrNoSession):
		// First window ever.
	default:
		// A record we cannot read is not "no session": surface the
		// failure instead of silently starting over.
		return Session{}, err
	}

	if err := m.prober.Probe(ctx); err != nil {
		m.logger.Error("activation aborted, probe failed", "error", err.Error())
		return Session{}, err
	}

	sess := New(next, now, m.duration)
	if err := m.store.Save(sess); err != nil {
		return Session{}, err
	}

	m.logger.Info("session activated",
		"session_id", sess.ID,
		"started_at", sess.StartedAt.Format(time.RFC3339),
		"expires_at", sess.ExpiresAt.Format(time.RFC3339),
		"forced", force,
	)
	return sess, nil
}

// Refresh extends the current window to now + duration without starting a
// new one: the ordinal and start instant are kept. It refuses when no
// session exists or the window has already elapsed, and it never probes.
func (m *Manager) Refresh(ctx context.Context) (Session, error) {
	unlock, err := m.lock.Acquire(ctx)
	if err != nil {
		return Session{}, err
	}
	defer func() { _ = unlock.Release() }()

	cur, err := m.store.Load()
	if err != nil {
		return Session{}, err
	}

	now := m.clock.Now()
	if !cur.Active(now) {
		return Session{}, fmt.Errorf("%w: cannot refresh", errors.ErrSessionExpired)
	}

	refreshed := Session{
		ID:        cur.ID,
		StartedAt: cur.StartedAt,
		ExpiresAt: now.Add(m.duration),
	}
	if err := m.store.Save(refreshed); err != nil {
		return Session{}, err
	}

	m.logger.Info("session refreshed",
		"session_id", refreshed.ID,
		"expires_at", refreshed.ExpiresAt.Format(time.RFC3339),
	)
	return refreshed, nil
}

// Clear removes the persisted session record. Clearing when no record
// exists is a no-op.
func (m *Manager) Clear(ctx context.Context) error {
	unlock, err := m.lock.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = unlock.Release() }()

	if err := m.store.Delete(); err != nil {
		return err
	}

	m.logger.Info("session cleared")
	return nil
}
