package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"daytask/internal/task"
)

// DefaultStorageKey is the key the whole map is stored under.
const DefaultStorageKey = "smart_calendar_todo_v1"

// KV is a string key-value store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error
}

// Snapshot serializes the entire map under a single key on every change.
type Snapshot struct {
	kv     KV
	key    string
	logger *log.Logger

	// loaded is set once Load has read the KV. Until then an empty map is
	// never written.
	loaded atomic.Bool
}

// NewSnapshot creates a snapshot adapter over kv. An empty key selects
// DefaultStorageKey.
func NewSnapshot(kv KV, key string, logger *log.Logger) *Snapshot {
	if key == "" {
		key = DefaultStorageKey
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Snapshot{kv: kv, key: key, logger: logger}
}

// Load implements store.Adapter. Unparseable data is logged and treated as
// no data; it is left in place.
func (s *Snapshot) Load(ctx context.Context) (task.Map, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	var corrupt *CorruptError
	if errors.As(err, &corrupt) {
		s.logger.Warn("failed to parse storage file", "path", corrupt.Path, "err", corrupt.Err)
		s.loaded.Store(true)
		return task.Map{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.key, err)
	}
	s.loaded.Store(true)
	if !ok {
		return task.Map{}, nil
	}

	var m task.Map
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		s.logger.Warn("failed to parse stored tasks", "key", s.key, "err", err)
		return task.Map{}, nil
	}

	for k := range m {
		if !task.IsDateKey(k) {
			s.logger.Warn("dropping stored bucket with a bad date key", "key", s.key, "date", k)
			delete(m, k)
		}
	}
	return m, nil
}

// Saved implements store.Adapter. An empty map is only written after Load,
// so it cannot replace saved data that was never read.
func (s *Snapshot) Saved(ctx context.Context, dateKey string, bucket []task.Task, all task.Map) error {
	if len(all) == 0 && !s.loaded.Load() {
		s.logger.Debug("snapshot skipped, nothing loaded yet", "key", s.key)
		return nil
	}
	if all == nil {
		all = task.Map{}
	}
	data, err := json.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("write snapshot %s: %w", s.key, err)
	}
	return nil
}
