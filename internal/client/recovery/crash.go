// Package recovery bounds data loss on abrupt termination: a crash buffer
// holding the last known reading position, and a debounced saver that
// coalesces progress writes while guaranteeing a flush on session end.
package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// MaxSnapshotAge is how long a crash snapshot stays eligible for replay.
const MaxSnapshotAge = time.Hour

// Snapshot is the single-slot crash record, written synchronously at every
// progress flush.
type Snapshot struct {
	DocumentID string    `json:"documentId"`
	Index      int       `json:"index"`
	Total      int       `json:"total"`
	Timestamp  time.Time `json:"timestamp"`
}

// Buffer persists one Snapshot to a file.
type Buffer struct {
	path string

	// now is a seam for tests that pin the clock.
	now func() time.Time
}

func NewBuffer(path string) *Buffer {
	return &Buffer{path: path, now: time.Now}
}

// Write replaces the snapshot on disk.
func (b *Buffer) Write(documentID string, index, total int) error {
	snap := Snapshot{
		DocumentID: documentID,
		Index:      index,
		Total:      total,
		Timestamp:  b.now().UTC(),
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("failed to create recovery dir: %w", err)
	}
	if err := os.WriteFile(b.path, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write recovery buffer: %w", err)
	}
	return nil
}

// Consume reads the snapshot and clears the file regardless of outcome, so
// a snapshot is replayed at most once. Missing, corrupt or stale snapshots
// yield (nil, nil).
func (b *Buffer) Consume() (*Snapshot, error) {
	raw, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read recovery buffer: %w", err)
	}

	if err := b.Clear(); err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, nil
	}
	if b.now().UTC().Sub(snap.Timestamp) > MaxSnapshotAge {
		return nil, nil
	}
	return &snap, nil
}

// Clear removes the snapshot file if present.
func (b *Buffer) Clear() error {
	err := os.Remove(b.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear recovery buffer: %w", err)
	}
	return nil
}
