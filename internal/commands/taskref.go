package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"daytask/internal/task"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task number from args.
// A reference is the 1-based position of the task in the order `list`
// shows it. Only a single all-digit argument is accepted.
func ParseTaskRef(args []string) (int, error) {
	if len(args) == 0 {
		return 0, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected argument: %s", args[1])
	}
	if !isAllDigits(args[0]) {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid task reference: %s", args[0])
	}
	return num, nil
}

// ResolveTask returns the task shown at position num of bucket.
func ResolveTask(bucket []task.Task, num int) (task.Task, error) {
	sorted := task.SortForDisplay(bucket)
	if num < 1 || num > len(sorted) {
		return task.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	return sorted[num-1], nil
}

// ParseDateRef resolves a date argument relative to today.
// Accepts "today", "tomorrow", "yesterday" or YYYY-MM-DD. Empty means today.
func ParseDateRef(s string, today time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return task.KeyOf(today), nil
	case "tomorrow":
		return task.KeyOf(today.AddDate(0, 0, 1)), nil
	case "yesterday":
		return task.KeyOf(today.AddDate(0, 0, -1)), nil
	}
	key, err := task.ParseDateKey(s)
	if err != nil {
		return "", fmt.Errorf("invalid date: %s", s)
	}
	return key, nil
}

// ParseMonthRef parses YYYY-MM. Empty means the month of fallback.
func ParseMonthRef(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Date(fallback.Year(), fallback.Month(), 1, 0, 0, 0, 0, fallback.Location()), nil
	}
	m, err := time.ParseInLocation("2006-01", s, fallback.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %s", s)
	}
	return m, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
