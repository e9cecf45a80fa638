// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"daytask/internal/session"
	"daytask/internal/store"
	"daytask/internal/task"
)

// ErrRejected is what FakeSuggester returns for a key it does not accept.
var ErrRejected = errors.New("API key rejected")

// FixedNow is the clock used by NewSession.
var FixedNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

// FakeSuggester is an in-memory suggest.Suggester.
type FakeSuggester struct {
	mu sync.Mutex

	// Texts are returned as new tasks by Suggest.
	Texts []string

	// ValidKey is the only key accepted. Empty accepts any non-empty key.
	ValidKey string

	// Error injection for testing
	SuggestErr error
	PingErr    error

	// Gate, when set, blocks Suggest until it is closed.
	Gate chan struct{}

	SuggestCalls int
	PingCalls    int
	LastContext  string
}

// Suggest implements suggest.Suggester.
func (f *FakeSuggester) Suggest(ctx context.Context, dateContext, apiKey string) ([]task.Task, error) {
	f.mu.Lock()
	f.SuggestCalls++
	f.LastContext = dateContext
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.check(apiKey); err != nil {
		return nil, err
	}
	if f.SuggestErr != nil {
		return nil, f.SuggestErr
	}

	out := make([]task.Task, 0, len(f.Texts))
	for _, s := range f.Texts {
		out = append(out, task.New(s, FixedNow))
	}
	return out, nil
}

// Ping implements suggest.Suggester.
func (f *FakeSuggester) Ping(ctx context.Context, apiKey string) error {
	f.mu.Lock()
	f.PingCalls++
	f.mu.Unlock()
	if err := f.check(apiKey); err != nil {
		return err
	}
	return f.PingErr
}

func (f *FakeSuggester) check(apiKey string) error {
	if apiKey == "" {
		return ErrRejected
	}
	if f.ValidKey != "" && apiKey != f.ValidKey {
		return ErrRejected
	}
	return nil
}

// MemKV is an in-memory persist.KV.
type MemKV struct {
	mu     sync.Mutex
	Values map[string]string
	GetErr error
	SetErr error
}

// NewMemKV creates an empty MemKV.
func NewMemKV() *MemKV {
	return &MemKV{Values: map[string]string{}}
}

// Get implements persist.KV.
func (m *MemKV) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.Values[key]
	return v, ok, nil
}

// Set implements persist.KV.
func (m *MemKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.Values[key] = value
	return nil
}

// QuietLogger discards everything.
func QuietLogger() *log.Logger {
	return log.New(io.Discard)
}

// NewSession creates a session on adapter with the FixedNow clock and a
// quiet logger. sugg may be nil.
func NewSession(adapter store.Adapter, sugg *FakeSuggester) *session.Session {
	opts := session.Options{
		Adapter: adapter,
		Logger:  QuietLogger(),
		Now:     func() time.Time { return FixedNow },
	}
	if sugg != nil {
		opts.Suggester = sugg
	}
	return session.New(opts)
}
