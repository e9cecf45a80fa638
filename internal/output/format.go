// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"daytask/internal/task"
)

const (
	// Separator is the line under a day header.
	Separator = "------------"

	// MarkOpen flags a day with open tasks in the month grid.
	MarkOpen = '*'

	// MarkDone flags a day whose tasks are all completed.
	MarkDone = '+'
)

var (
	doneColor  = color.New(color.FgHiBlack)
	todayColor = color.New(color.Bold)
	otherMonth = color.New(color.Faint)
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TEXT}\n" (4-wide right-aligned number, two spaces, box, text)
func FormatTask(w io.Writer, num int, t task.Task) {
	box := "[ ]"
	if t.IsCompleted {
		box = "[x]"
	}
	line := fmt.Sprintf("%4d  %s %s\n", num, box, normalizeText(t.Text))
	if t.IsCompleted {
		doneColor.Fprint(w, line)
		return
	}
	fmt.Fprint(w, line)
}

// FormatDayHeader formats the header of a day's task list.
func FormatDayHeader(w io.Writer, day time.Time, bucket []task.Task) {
	done := 0
	for _, t := range bucket {
		if t.IsCompleted {
			done++
		}
	}
	fmt.Fprintf(w, "%s (%s)\n", DayTitle(day), task.KeyOf(day))
	fmt.Fprintf(w, "%d/%d done (%d%%)\n", done, len(bucket), task.Progress(bucket))
	fmt.Fprintln(w, Separator)
}

// FormatBucket writes the header and the tasks of a day in display order.
// It returns the tasks in the order they were numbered.
func FormatBucket(w io.Writer, day time.Time, bucket []task.Task) []task.Task {
	FormatDayHeader(w, day, bucket)
	sorted := task.SortForDisplay(bucket)
	for i, t := range sorted {
		FormatTask(w, i+1, t)
	}
	return sorted
}

// DayTitle renders "Friday, March 15".
func DayTitle(day time.Time) string {
	return fmt.Sprintf("%s, %s %d", day.Weekday(), day.Month(), day.Day())
}

// FormatMonth writes a Sunday-first calendar grid for the month of anchor.
// Each cell is five columns wide: the selected day is bracketed, a trailing
// mark shows open (*) or all-completed (+) tasks.
func FormatMonth(w io.Writer, anchor time.Time, selected, today string, statuses map[string]task.DayStatus) {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, anchor.Location())
	last := first.AddDate(0, 1, -1)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, 6-int(last.Weekday()))

	fmt.Fprintf(w, "%s %d\n", first.Month(), first.Year())
	fmt.Fprintln(w, " Su   Mo   Tu   We   Th   Fr   Sa")

	var line strings.Builder
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := task.KeyOf(d)
		cell := dayCell(d.Day(), statuses[key], key == selected)
		switch {
		case d.Month() != first.Month():
			cell = otherMonth.Sprint(cell)
		case key == today:
			cell = todayColor.Sprint(cell)
		}
		line.WriteString(cell)

		if d.Weekday() == time.Saturday {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
	fmt.Fprintf(w, "%c open  %c all done\n", MarkOpen, MarkDone)
}

func dayCell(day int, st task.DayStatus, selected bool) string {
	mark := ' '
	if st.HasTasks {
		mark = MarkOpen
		if st.AllCompleted {
			mark = MarkDone
		}
	}
	if selected {
		return fmt.Sprintf("[%2d%c]", day, mark)
	}
	return fmt.Sprintf(" %2d%c ", day, mark)
}

// normalizeText normalizes a task text for display.
// - Empty or whitespace-only texts become "(untitled)"
// - Newlines are replaced with spaces
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r", " ")
	text = strings.ReplaceAll(text, "\n", " ")

	if strings.TrimSpace(text) == "" {
		return "(untitled)"
	}
	return text
}
