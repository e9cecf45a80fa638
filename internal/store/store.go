// Package store holds the date-keyed task map and forwards every change to
// a persistence adapter.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"daytask/internal/task"
)

// Adapter persists the task map. The store never knows which variant is
// behind it.
type Adapter interface {
	// Load returns the persisted map. An error leaves the store untouched.
	Load(ctx context.Context) (task.Map, error)

	// Saved is called after every mutation with the new bucket for dateKey
	// and a copy of the whole map. An empty bucket means the date is gone.
	Saved(ctx context.Context, dateKey string, bucket []task.Task, all task.Map) error
}

// Store is the in-memory task map. It is the single source of truth for
// every view; persistence happens after the change is applied.
type Store struct {
	mu      sync.Mutex
	tasks   task.Map
	adapter Adapter
	logger  *log.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source for new tasks.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates an empty store backed by adapter.
func New(adapter Adapter, opts ...Option) *Store {
	s := &Store{
		tasks:   make(task.Map),
		adapter: adapter,
		logger:  log.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the map with what the current adapter holds.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	a := s.adapter
	s.mu.Unlock()
	return s.Attach(ctx, a)
}

// Attach loads a's data and, on success, makes a the active adapter with
// that data as the new map. On failure the store keeps its prior state.
func (s *Store) Attach(ctx context.Context, a Adapter) error {
	m, err := a.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter = a
	s.tasks = m.Clone()
	return nil
}

// Detach swaps in a without loading anything. The map is kept.
func (s *Store) Detach(a Adapter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adapter = a
}

// Bucket returns a copy of the bucket for dateKey in storage order.
func (s *Store) Bucket(dateKey string) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]task.Task(nil), s.tasks[dateKey]...)
}

// Snapshot returns a copy of the whole map.
func (s *Store) Snapshot() task.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.Clone()
}

// Statuses returns the day status of every date that has tasks.
func (s *Store) Statuses() map[string]task.DayStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]task.DayStatus, len(s.tasks))
	for k, b := range s.tasks {
		if st := task.StatusOf(b); st.HasTasks {
			out[k] = st
		}
	}
	return out
}

// AddTask appends a new task with text to dateKey's bucket.
func (s *Store) AddTask(ctx context.Context, dateKey, text string) ([]task.Task, error) {
	t := task.New(text, s.now())
	return s.mutate(ctx, dateKey, func(b []task.Task) []task.Task {
		return task.Append(b, t)
	})
}

// AddTasks appends ts, in order, after the existing tasks of dateKey.
func (s *Store) AddTasks(ctx context.Context, dateKey string, ts []task.Task) ([]task.Task, error) {
	return s.mutate(ctx, dateKey, func(b []task.Task) []task.Task {
		return task.Append(b, ts...)
	})
}

// ToggleTask flips the completion of taskID. Unknown ids are ignored.
func (s *Store) ToggleTask(ctx context.Context, dateKey, taskID string) ([]task.Task, error) {
	return s.mutate(ctx, dateKey, func(b []task.Task) []task.Task {
		return task.Toggle(b, taskID)
	})
}

// DeleteTask removes taskID from dateKey. Unknown ids are ignored.
func (s *Store) DeleteTask(ctx context.Context, dateKey, taskID string) ([]task.Task, error) {
	return s.mutate(ctx, dateKey, func(b []task.Task) []task.Task {
		return task.Remove(b, taskID)
	})
}

// mutate replaces dateKey's bucket with op's result and hands it to the
// adapter. The lock is held across the adapter call so writes for a date
// always reach storage in the order they were applied.
func (s *Store) mutate(ctx context.Context, dateKey string, op func([]task.Task) []task.Task) ([]task.Task, error) {
	key, err := task.ParseDateKey(dateKey)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := op(s.tasks[key])
	if len(next) == 0 {
		delete(s.tasks, key)
	} else {
		s.tasks[key] = next
	}

	if s.adapter != nil {
		if err := s.adapter.Saved(ctx, key, append([]task.Task(nil), next...), s.tasks.Clone()); err != nil {
			s.logger.Warn("persist failed", "date", key, "err", err)
		}
	}

	return append([]task.Task(nil), next...), nil
}

// String is used in debug logs.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, b := range s.tasks {
		n += len(b)
	}
	return fmt.Sprintf("store{dates=%d tasks=%d}", len(s.tasks), n)
}
