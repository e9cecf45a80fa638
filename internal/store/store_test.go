package store

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daytask/internal/task"
)

type savedCall struct {
	key    string
	bucket []task.Task
	all    task.Map
}

type recordingAdapter struct {
	loaded  task.Map
	loadErr error
	saveErr error
	calls   []savedCall
}

func (r *recordingAdapter) Load(ctx context.Context) (task.Map, error) {
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return r.loaded, nil
}

func (r *recordingAdapter) Saved(ctx context.Context, key string, b []task.Task, all task.Map) error {
	r.calls = append(r.calls, savedCall{key: key, bucket: b, all: all})
	return r.saveErr
}

func newTestStore(a Adapter) *Store {
	fixed := time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC)
	return New(a, WithLogger(log.New(io.Discard)), WithClock(func() time.Time { return fixed }))
}

func TestStore_EndToEnd(t *testing.T) {
	a := &recordingAdapter{}
	s := newTestStore(a)
	ctx := context.Background()

	b, err := s.AddTask(ctx, "2024-03-15", "Buy milk")
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.False(t, b[0].IsCompleted)
	id := b[0].ID

	b, err = s.ToggleTask(ctx, "2024-03-15", id)
	require.NoError(t, err)
	require.Len(t, b, 1)
	assert.True(t, b[0].IsCompleted)
	assert.Equal(t, id, b[0].ID)

	b, err = s.DeleteTask(ctx, "2024-03-15", id)
	require.NoError(t, err)
	assert.Empty(t, b)
	assert.NotContains(t, s.Snapshot(), "2024-03-15")

	require.Len(t, a.calls, 3)
	assert.Empty(t, a.calls[2].bucket)
	assert.NotContains(t, a.calls[2].all, "2024-03-15")
}

func TestStore_AddTasksKeepsOrder(t *testing.T) {
	s := newTestStore(&recordingAdapter{})
	ctx := context.Background()

	_, err := s.AddTask(ctx, "2024-03-15", "first")
	require.NoError(t, err)

	now := time.Now()
	b, err := s.AddTasks(ctx, "2024-03-15", []task.Task{task.New("second", now), task.New("third", now)})
	require.NoError(t, err)

	texts := []string{}
	for _, tk := range s.Bucket("2024-03-15") {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"first", "second", "third"}, texts)
	assert.Len(t, b, 3)
}

func TestStore_UnknownIDIsNoop(t *testing.T) {
	s := newTestStore(&recordingAdapter{})
	ctx := context.Background()

	_, err := s.AddTask(ctx, "2024-03-15", "keep")
	require.NoError(t, err)

	b, err := s.ToggleTask(ctx, "2024-03-15", "missing")
	require.NoError(t, err)
	assert.False(t, b[0].IsCompleted)

	b, err = s.DeleteTask(ctx, "2024-03-15", "missing")
	require.NoError(t, err)
	assert.Len(t, b, 1)
}

func TestStore_NoDedup(t *testing.T) {
	s := newTestStore(&recordingAdapter{})
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		_, err := s.AddTask(ctx, "2024-03-15", "same")
		require.NoError(t, err)
	}
	assert.Len(t, s.Bucket("2024-03-15"), 2)
}

func TestStore_InvalidDateKey(t *testing.T) {
	a := &recordingAdapter{}
	s := newTestStore(a)

	_, err := s.AddTask(context.Background(), "15/03/2024", "x")
	require.Error(t, err)
	assert.True(t, errors.Is(err, task.ErrInvalidDateKey))
	assert.Empty(t, a.calls)
}

func TestStore_SaveErrorKeepsMutation(t *testing.T) {
	a := &recordingAdapter{saveErr: errors.New("disk full")}
	s := newTestStore(a)

	b, err := s.AddTask(context.Background(), "2024-03-15", "still here")
	require.NoError(t, err)
	assert.Len(t, b, 1)
	assert.Len(t, s.Bucket("2024-03-15"), 1)
}

func TestStore_AttachFailureKeepsState(t *testing.T) {
	first := &recordingAdapter{}
	s := newTestStore(first)
	ctx := context.Background()
	_, err := s.AddTask(ctx, "2024-03-15", "existing")
	require.NoError(t, err)

	broken := &recordingAdapter{loadErr: errors.New("permission denied")}
	require.Error(t, s.Attach(ctx, broken))
	assert.Len(t, s.Bucket("2024-03-15"), 1)

	_, err = s.AddTask(ctx, "2024-03-15", "again")
	require.NoError(t, err)
	assert.Empty(t, broken.calls, "failed attach must not switch adapters")
	assert.Len(t, first.calls, 2)
}

func TestStore_AttachReplacesMapAndDropsEmpty(t *testing.T) {
	s := newTestStore(&recordingAdapter{})
	next := &recordingAdapter{loaded: task.Map{
		"2024-01-01": {},
		"2024-01-02": {{ID: "a", Text: "loaded"}},
	}}
	require.NoError(t, s.Attach(context.Background(), next))

	snap := s.Snapshot()
	assert.NotContains(t, snap, "2024-01-01")
	assert.Len(t, snap["2024-01-02"], 1)
	assert.Equal(t, map[string]task.DayStatus{"2024-01-02": {HasTasks: true}}, s.Statuses())
}

func TestStore_BucketIsCopy(t *testing.T) {
	s := newTestStore(&recordingAdapter{})
	_, err := s.AddTask(context.Background(), "2024-03-15", "orig")
	require.NoError(t, err)

	b := s.Bucket("2024-03-15")
	b[0].Text = "mutated"
	assert.Equal(t, "orig", s.Bucket("2024-03-15")[0].Text)
}
