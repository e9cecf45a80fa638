// Package task defines the Task record, date keys and the pure bucket
// operations the store is built on.
package task

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the Go layout of a date key.
const DateLayout = "2006-01-02"

// ErrInvalidDateKey is returned when a string is not a canonical date key.
var ErrInvalidDateKey = errors.New("invalid date")

var dateKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Task is a single to-do item owned by one date bucket.
type Task struct {
	ID          string `json:"id" yaml:"id" toml:"id"`
	Text        string `json:"text" yaml:"text" toml:"text"`
	IsCompleted bool   `json:"isCompleted" yaml:"isCompleted" toml:"isCompleted"`
	CreatedAt   int64  `json:"createdAt" yaml:"createdAt" toml:"createdAt"` // unix milliseconds
}

// Map maps a date key to its bucket. Buckets keep insertion order.
type Map map[string][]Task

// New creates an incomplete task with a fresh id.
func New(text string, now time.Time) Task {
	return Task{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedAt: now.UnixMilli(),
	}
}

// IsDateKey reports whether s has the YYYY-MM-DD shape.
func IsDateKey(s string) bool {
	return dateKeyPattern.MatchString(s)
}

// KeyOf returns the date key of t in t's own location.
func KeyOf(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDateKey validates s and returns it in canonical form.
// The value must both match the pattern and name a real calendar day.
func ParseDateKey(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsDateKey(s) {
		return "", fmt.Errorf("%w: %s", ErrInvalidDateKey, s)
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidDateKey, s)
	}
	return s, nil
}

// DateOf parses a date key into midnight of that day in loc.
func DateOf(key string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDateKey, key)
	}
	return t, nil
}

// Clone returns a deep copy of m. Empty buckets are dropped.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, b := range m {
		if len(b) == 0 {
			continue
		}
		out[k] = append([]Task(nil), b...)
	}
	return out
}
