// Package persist provides the persistence adapters behind the task store:
// an in-memory no-op, an aggregate snapshot kept under one key of a
// key-value store, and one JSON file per date inside a granted directory.
package persist

import (
	"context"
	"os"
	"path/filepath"

	"daytask/internal/task"
)

// Nop keeps nothing; the store's map is all there is.
type Nop struct{}

// Load implements store.Adapter.
func (Nop) Load(ctx context.Context) (task.Map, error) { return task.Map{}, nil }

// Saved implements store.Adapter.
func (Nop) Saved(ctx context.Context, dateKey string, bucket []task.Task, all task.Map) error {
	return nil
}

// writeFileAtomic writes data to a temp file next to path and renames it
// into place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
