package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"

	"jobwatch/internal/model"
)

// ErrLocked means another run currently holds the state file lock.
// Callers should treat this as "skip this run", not as a failure.
var ErrLocked = errors.New("seen state is locked by another run")

// seenMarker is the per-signature value persisted in the state file.
type seenMarker struct {
	SeenAt time.Time `json:"seen_at"`
}

// FileStore keeps seen signatures in a single JSON file. All mutation
// happens in memory; Close writes the file back with a temp-file rename so
// a crash mid-run leaves the previous state intact. A sidecar flock
// prevents two overlapping runs from clobbering each other's state.
type FileStore struct {
	path   string
	lock   *flock.Flock
	seen   map[string]seenMarker
	closed bool
}

// NewFileStore acquires the state lock and loads existing state from path.
// A missing or unreadable state file starts empty rather than failing:
// re-notifying is the accepted cost of never blocking a run. Returns
// ErrLocked when another process holds the lock.
func NewFileStore(path string) (*FileStore, error) {
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("locking seen state: %w", err)
	}
	if !locked {
		return nil, ErrLocked
	}

	s := &FileStore{
		path: path,
		lock: lock,
		seen: make(map[string]seenMarker),
	}
	s.load()
	return s, nil
}

var _ model.SeenStore = (*FileStore)(nil)

// load reads existing state best-effort. Markers written by older versions
// of the tool may be plain booleans; those are kept with a fresh timestamp
// so they stay deduplicated and survive retention for a full window.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return
	}

	now := time.Now().UTC()
	for sig, val := range raw {
		var m seenMarker
		if err := json.Unmarshal(val, &m); err == nil && !m.SeenAt.IsZero() {
			s.seen[sig] = m
			continue
		}
		s.seen[sig] = seenMarker{SeenAt: now}
	}
}

// HasSeen reports whether the signature is in the in-memory state.
func (s *FileStore) HasSeen(_ context.Context, signature string) (bool, error) {
	_, ok := s.seen[signature]
	return ok, nil
}

// MarkSeen records the signature with the current time. The file is not
// touched until Close.
func (s *FileStore) MarkSeen(_ context.Context, signature string) error {
	s.seen[signature] = seenMarker{SeenAt: time.Now().UTC()}
	return nil
}

// Cleanup drops signatures first seen longer than olderThan ago.
func (s *FileStore) Cleanup(_ context.Context, olderThan time.Duration) error {
	cutoff := time.Now().UTC().Add(-olderThan)
	for sig, m := range s.seen {
		if m.SeenAt.Before(cutoff) {
			delete(s.seen, sig)
		}
	}
	return nil
}

// Len returns the number of tracked signatures.
func (s *FileStore) Len() int {
	return len(s.seen)
}

// Close persists the state and releases the lock. Safe to call twice.
// A non-nil error here is the one failure a run must surface loudly:
// unsaved state means every new job gets re-notified next run.
func (s *FileStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	defer s.lock.Unlock()
	return s.save()
}

// save writes the full map through a temp file and rename so the state
// file is never left half-written.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.seen, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding seen state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing seen state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing seen state: %w", err)
	}
	return nil
}
