// Package store provides durable single-record persistence for the current
// usage window, plus the advisory file lock that serializes concurrent
// invocations against it. The record lives in one JSON file; writes go to a
// temporary file in the same directory followed by an atomic rename, so a
// reader never observes a partially written record.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"claudewatch/internal/errors"
	"claudewatch/internal/window"
)

// FileStore persists the current session as a single JSON file.
// It distinguishes "no record exists" from read failures: a missing file is
// errors.ErrNoSession, while unreadable or malformed content is reported as
// a storage error and never coerced into "no session".
type FileStore struct {
	path string
}

// record is the on-disk shape of a session. Instants are RFC 3339 via
// time.Time's JSON encoding, so a record written by one process lifetime is
// readable by any later one.
type record struct {
	ID        int64     `json:"id"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// New creates a FileStore for the record at the given path. The parent
// directory is created on the first Save, not here, so constructing a store
// for a read-only query has no side effects.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the canonical location of the session record.
func (fs *FileStore) Path() string {
	return fs.path
}

// Load reads the current session.
// Returns errors.ErrNoSession if no record has ever been written,
// errors.ErrCorrupted if the record cannot be parsed or fails validation,
// and errors.ErrStorageUnavailable for other read failures.
func (fs *FileStore) Load() (window.Session, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return window.Session{}, errors.ErrNoSession
		}
		return window.Session{}, fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return window.Session{}, fmt.Errorf("%w: %v", errors.ErrCorrupted, err)
	}

	if rec.ID < 1 || rec.StartedAt.IsZero() || !rec.ExpiresAt.After(rec.StartedAt) {
		return window.Session{}, fmt.Errorf("%w: invalid record at %s", errors.ErrCorrupted, fs.path)
	}

	return window.Session{
		ID:        rec.ID,
		StartedAt: rec.StartedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Save durably persists the session, fully replacing any prior record.
func (fs *FileStore) Save(sess window.Session) error {
	rec := record{
		ID:        sess.ID,
		StartedAt: sess.StartedAt,
		ExpiresAt: sess.ExpiresAt,
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(fs.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}

	if err := atomicWriteFile(fs.path, data, 0644); err != nil {
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return nil
}

// Delete removes the session record. Deleting a record that does not exist
// is not an error.
func (fs *FileStore) Delete() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: %v", errors.ErrStorageUnavailable, err)
	}
	return nil
}

// atomicWriteFile writes data to a file atomically by writing to a temporary
// file first, then renaming. The temp file is created in the same directory
// so the rename stays on one filesystem.
func atomicWriteFile(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	success = true
	return nil
}
