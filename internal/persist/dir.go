package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"daytask/internal/task"
)

// FileExt is the extension of a per-date file.
const FileExt = ".json"

// ErrHandleRevoked is returned when a directory handle is used after it was
// revoked.
var ErrHandleRevoked = errors.New("directory access revoked")

// bucketSchema is what a per-date file must hold.
const bucketSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": {"type": "string"},
      "text": {"type": "string"},
      "isCompleted": {"type": "boolean"},
      "createdAt": {"type": "number"}
    }
  }
}`

var compiledBucketSchema = jsonschema.MustCompileString("bucket.json", bucketSchema)

// DirHandle is a revocable grant of access to one directory. It lives for
// the session only.
type DirHandle struct {
	mu      sync.RWMutex
	path    string
	revoked bool
}

// OpenDir grants access to path, which must be an existing directory.
func OpenDir(path string) (*DirHandle, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open directory %s: not a directory", abs)
	}
	return &DirHandle{path: abs}, nil
}

// Path returns the granted directory.
func (h *DirHandle) Path() (string, error) {
	if h == nil {
		return "", ErrHandleRevoked
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.revoked {
		return "", ErrHandleRevoked
	}
	return h.path, nil
}

// Valid reports whether the handle can still be used.
func (h *DirHandle) Valid() bool {
	_, err := h.Path()
	return err == nil
}

// Revoke drops access. Later writes through the handle become no-ops.
func (h *DirHandle) Revoke() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.revoked = true
}

// Dir keeps one <YYYY-MM-DD>.json file per date inside a granted directory.
type Dir struct {
	handle *DirHandle
	logger *log.Logger
}

// NewDir creates a per-date directory adapter over h.
func NewDir(h *DirHandle, logger *log.Logger) *Dir {
	if logger == nil {
		logger = log.Default()
	}
	return &Dir{handle: h, logger: logger}
}

// Handle returns the directory handle in use.
func (d *Dir) Handle() *DirHandle { return d.handle }

// Load implements store.Adapter. Files with a bad name, unparseable content
// or a non-array top level are logged and skipped. Dates whose file holds
// an empty array are left out of the map.
func (d *Dir) Load(ctx context.Context) (task.Map, error) {
	dir, err := d.handle.Path()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	m := task.Map{}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, FileExt) {
			continue
		}
		key := strings.TrimSuffix(name, FileExt)
		if !task.IsDateKey(key) {
			continue
		}

		bucket, err := readBucket(filepath.Join(dir, name))
		if err != nil {
			d.logger.Warn("skipping task file", "file", name, "err", err)
			continue
		}
		if len(bucket) > 0 {
			m[key] = bucket
		}
	}
	return m, nil
}

// Saved implements store.Adapter. It writes the full bucket, or removes
// the file once the bucket is empty. Without a valid handle it does nothing.
func (d *Dir) Saved(ctx context.Context, dateKey string, bucket []task.Task, all task.Map) error {
	dir, err := d.handle.Path()
	if err != nil {
		d.logger.Debug("no directory access, not saving", "date", dateKey)
		return nil
	}
	path := filepath.Join(dir, dateKey+FileExt)

	if len(bucket) == 0 {
		if err := os.Remove(path); err != nil {
			d.logger.Debug("could not remove task file", "file", path, "err", err)
		}
		return nil
	}

	data, err := json.MarshalIndent(bucket, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", dateKey, err)
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("save tasks for %s: %w", dateKey, err)
	}
	return nil
}

func readBucket(path string) ([]task.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := compiledBucketSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("unexpected content: %w", err)
	}

	var bucket []task.Task
	if err := json.Unmarshal(data, &bucket); err != nil {
		return nil, fmt.Errorf("invalid task list: %w", err)
	}
	return bucket, nil
}
