package aggregate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"commcal/src-server/model"
)

// A snapshot read or write that went wrong. A failed write degrades the
// run to in-memory data; a failed read during fallback means the source
// contributes nothing.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error for %s: %s", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Where one source keeps its snapshot; the same file doubles as the
// frontend's per-source event listing
func SnapshotPath(dataDir, name string) string {
	return filepath.Join(dataDir, name+".json")
}

func LoadSnapshot(path string) ([]model.Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	events := make([]model.Event, 0)
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, &PersistenceError{Path: path, Err: err}
	}
	return events, nil
}

// Write-then-rename so a concurrent reader of the data dir never sees a
// half-written file. The previous snapshot survives any failure here.
func WriteSnapshot(path string, events []model.Event) error {
	raw, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return &PersistenceError{Path: path, Err: err}
	}
	return writeFileAtomic(path, raw)
}

func writeFileAtomic(path string, raw []byte) error {
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0644); err != nil {
		return &PersistenceError{Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return &PersistenceError{Path: path, Err: err}
	}
	return nil
}

// Whole hours since the snapshot was last successfully written. The file
// modification time is the only staleness signal there is.
func StaleHours(mtime, now time.Time) int {
	return int(now.Sub(mtime).Hours())
}

// The staleness warning fires once per 12-hour boundary, not on every
// run, so a source that is down for days doesn't drown the log.
func ShouldWarnStale(hours int) bool {
	return hours > 0 && hours%12 == 0
}
