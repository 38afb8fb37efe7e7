package cmd

import (
	"context"
	"fmt"

	"claudewatch/internal/config"
	"claudewatch/internal/logging"
	"claudewatch/internal/probe"
	"claudewatch/internal/store"
	"claudewatch/internal/window"
)

// fileLocker adapts store.FileLock to the window.Locker interface.
type fileLocker struct {
	lock *store.FileLock
}

func (l fileLocker) Acquire(ctx context.Context) (window.Unlocker, error) {
	return l.lock.Acquire(ctx)
}

// newManager assembles a session manager from the loaded configuration.
// The returned cleanup function closes the logger.
func newManager() (*window.Manager, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NopLogger()
	if cfg.Logging.Enabled {
		logger, err = logging.NewLogger(config.LogFile(), cfg.Logging.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log: %w", err)
		}
	}

	recordPath := cfg.Storage.ResolvePath()

	mgr := window.NewManager(
		store.New(recordPath),
		fileLocker{store.NewFileLock(recordPath, cfg.Storage.LockTimeout())},
		probe.NewCLIProber(
			probe.WithCommand(cfg.Probe.Command),
			probe.WithMessage(cfg.Probe.Message),
			probe.WithMaxTurns(cfg.Probe.MaxTurns),
			probe.WithOutputFormat(cfg.Probe.OutputFormat),
			probe.WithTimeout(cfg.Probe.Timeout()),
		),
		window.SystemClock(),
		cfg.Window.Duration(),
		logger,
	)

	cleanup := func() { _ = logger.Close() }
	return mgr, cleanup, nil
}
