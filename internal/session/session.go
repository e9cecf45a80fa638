// Package session ties the store, the active persistence adapter, the
// directory handle and the API key together for one run of the program.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"daytask/internal/credential"
	"daytask/internal/persist"
	"daytask/internal/store"
	"daytask/internal/suggest"
	"daytask/internal/task"
)

// ErrDirectoryUnavailable is returned when a directory cannot be connected.
var ErrDirectoryUnavailable = errors.New("directory unavailable")

// Options configures a Session.
type Options struct {
	// Adapter is the persistence used until a directory is connected.
	// Defaults to persist.Nop.
	Adapter store.Adapter

	// Suggester backs suggestions and key tests. May be nil.
	Suggester suggest.Suggester

	Logger *log.Logger

	// Now is the clock; defaults to time.Now.
	Now func() time.Time
}

// Session is the state of one run. It is created at start-up and dropped
// on exit; nothing in it outlives the process except what adapters write.
type Session struct {
	Store *store.Store
	Keys  *credential.Manager

	suggester suggest.Suggester
	logger    *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	selected string
	handle   *persist.DirHandle
}

// New creates a session with today's date selected.
func New(opts Options) *Session {
	if opts.Adapter == nil {
		opts.Adapter = persist.Nop{}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var pinger credential.Pinger
	if opts.Suggester != nil {
		pinger = opts.Suggester
	}

	s := &Session{
		Store:     store.New(opts.Adapter, store.WithLogger(opts.Logger), store.WithClock(opts.Now)),
		Keys:      credential.NewManager(pinger, opts.Logger),
		suggester: opts.Suggester,
		logger:    opts.Logger,
		now:       opts.Now,
	}
	s.selected = s.Today()
	return s
}

// Open loads whatever the current adapter holds.
func (s *Session) Open(ctx context.Context) error {
	return s.Store.Load(ctx)
}

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.logger }

// Now returns the session clock's current time.
func (s *Session) Now() time.Time { return s.now() }

// Today returns today's date key.
func (s *Session) Today() string {
	return task.KeyOf(s.now())
}

// Selected returns the selected date key.
func (s *Session) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Select changes the selected date.
func (s *Session) Select(dateKey string) error {
	key, err := task.ParseDateKey(dateKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.selected = key
	s.mu.Unlock()
	return nil
}

// Connect grants access to dir and switches persistence to one file per
// date inside it, replacing the in-memory map with the directory's content.
// On failure nothing changes.
func (s *Session) Connect(ctx context.Context, dir string) error {
	h, err := persist.OpenDir(dir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	if err := s.Store.Attach(ctx, persist.NewDir(h, s.logger)); err != nil {
		return fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	s.mu.Lock()
	old := s.handle
	s.handle = h
	s.mu.Unlock()
	old.Revoke()

	s.logger.Debug("directory connected", "dir", dir, "store", s.Store.String())
	return nil
}

// Disconnect revokes the directory handle. The map stays in memory but no
// longer reaches disk.
func (s *Session) Disconnect() {
	s.mu.Lock()
	h := s.handle
	s.handle = nil
	s.mu.Unlock()
	h.Revoke()
}

// Directory returns the connected directory, or "" if none.
func (s *Session) Directory() string {
	s.mu.Lock()
	h := s.handle
	s.mu.Unlock()
	p, err := h.Path()
	if err != nil {
		return ""
	}
	return p
}

// Suggestions is the result of one suggestion request, tagged with the
// date it was made for.
type Suggestions struct {
	DateKey string
	Tasks   []task.Task
	Err     error
}

// RequestSuggestions asks for tasks for the currently selected date. The
// result records that date so a late reply can be recognised as stale.
// Failures are logged and come back as an empty result with Err set.
func (s *Session) RequestSuggestions(ctx context.Context) Suggestions {
	return s.RequestSuggestionsFor(ctx, s.Selected())
}

// RequestSuggestionsFor asks for tasks for dateKey.
func (s *Session) RequestSuggestionsFor(ctx context.Context, dateKey string) Suggestions {
	out := Suggestions{DateKey: dateKey}

	day, err := task.DateOf(dateKey, s.now().Location())
	if err != nil {
		out.Err = err
		return out
	}
	key := s.Keys.Key()
	if key == "" {
		out.Err = credential.ErrNoKey
		return out
	}
	if s.suggester == nil {
		out.Err = errors.New("suggestions are not configured")
		return out
	}

	ts, err := s.suggester.Suggest(ctx, suggest.DateContext(day), key)
	if err != nil {
		s.logger.Warn("suggestion request failed", "date", dateKey, "err", err)
		out.Err = err
		return out
	}
	out.Tasks = ts
	return out
}

// ApplySuggestions appends sg's tasks to its date, but only if that date is
// still the selected one. It reports whether anything was added.
func (s *Session) ApplySuggestions(ctx context.Context, sg Suggestions) (bool, error) {
	if sg.Err != nil || len(sg.Tasks) == 0 {
		return false, nil
	}
	if sel := s.Selected(); sel != sg.DateKey {
		s.logger.Info("discarding stale suggestions", "for", sg.DateKey, "selected", sel)
		return false, nil
	}
	if _, err := s.Store.AddTasks(ctx, sg.DateKey, sg.Tasks); err != nil {
		return false, err
	}
	return true, nil
}
