package task

import (
	"math"
	"sort"
)

// Append returns a new bucket holding b followed by ts.
func Append(b []Task, ts ...Task) []Task {
	out := make([]Task, 0, len(b)+len(ts))
	out = append(out, b...)
	return append(out, ts...)
}

// Toggle returns a new bucket where the task with id has its completion
// flipped. An unknown id yields an unchanged copy.
func Toggle(b []Task, id string) []Task {
	out := make([]Task, len(b))
	for i, t := range b {
		if t.ID == id {
			t.IsCompleted = !t.IsCompleted
		}
		out[i] = t
	}
	return out
}

// Remove returns a new bucket without the task with id.
// An unknown id yields an unchanged copy.
func Remove(b []Task, id string) []Task {
	out := make([]Task, 0, len(b))
	for _, t := range b {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Find returns the task with id and whether it exists.
func Find(b []Task, id string) (Task, bool) {
	for _, t := range b {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// SortForDisplay returns a copy of b ordered incomplete first, then by
// creation time, newest first. The stored order is left alone.
func SortForDisplay(b []Task) []Task {
	out := append([]Task(nil), b...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsCompleted != out[j].IsCompleted {
			return !out[i].IsCompleted
		}
		return out[i].CreatedAt > out[j].CreatedAt
	})
	return out
}

// Progress returns the rounded percentage of completed tasks in b.
func Progress(b []Task) int {
	if len(b) == 0 {
		return 0
	}
	done := 0
	for _, t := range b {
		if t.IsCompleted {
			done++
		}
	}
	return int(math.Round(float64(done) * 100 / float64(len(b))))
}

// DayStatus summarises a bucket for the calendar grid.
type DayStatus struct {
	HasTasks     bool `json:"hasTasks"`
	AllCompleted bool `json:"allCompleted"`
}

// StatusOf returns the status of b. An empty bucket has no tasks.
func StatusOf(b []Task) DayStatus {
	if len(b) == 0 {
		return DayStatus{}
	}
	all := true
	for _, t := range b {
		if !t.IsCompleted {
			all = false
			break
		}
	}
	return DayStatus{HasTasks: true, AllCompleted: all}
}
