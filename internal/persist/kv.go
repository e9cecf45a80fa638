package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/redis/go-redis/v9"
)

// CorruptError reports a storage file that is not a JSON object of strings.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// FileKV is a KV kept as a JSON object of strings in a single local file.
type FileKV struct {
	mu   sync.Mutex
	path string
}

// NewFileKV returns a FileKV stored at path. The file is created on the
// first Set.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path}
}

// Path returns the backing file path.
func (f *FileKV) Path() string { return f.path }

// Get implements KV.
func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := entries[key]
	return v, ok, nil
}

// Set implements KV. Other keys in the file are preserved; a corrupt file
// is replaced.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.read()
	var corrupt *CorruptError
	if errors.As(err, &corrupt) {
		entries, err = map[string]string{}, nil
	}
	if err != nil {
		return err
	}
	entries[key] = value

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	return writeFileAtomic(f.path, data, 0o600)
}

func (f *FileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	entries := map[string]string{}
	if len(data) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptError{Path: f.path, Err: err}
	}
	return entries, nil
}

// RedisKV is a KV backed by a Redis server.
type RedisKV struct {
	client redis.UniversalClient
}

// NewRedisKV wraps an existing client.
func NewRedisKV(client redis.UniversalClient) *RedisKV {
	return &RedisKV{client: client}
}

// DialRedis connects to addr and verifies the server answers.
func DialRedis(ctx context.Context, addr string, db int) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return &RedisKV{client: client}, nil
}

// Get implements KV.
func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set implements KV.
func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

// Close releases the connection.
func (r *RedisKV) Close() error {
	return r.client.Close()
}
