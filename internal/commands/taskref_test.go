package commands

import (
	"testing"
	"time"

	"daytask/internal/task"
)

func TestParseTaskRef_Numeric(t *testing.T) {
	num, err := ParseTaskRef([]string{"5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 5 {
		t.Errorf("expected 5, got %d", num)
	}
}

func TestParseTaskRef_NoArgs_Error(t *testing.T) {
	_, err := ParseTaskRef([]string{})
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	tests := []struct {
		args     []string
		expected string
	}{
		{[]string{"a1"}, "invalid task reference: a1"},
		{[]string{"-1"}, "invalid task reference: -1"},
		{[]string{"1.5"}, "invalid task reference: 1.5"},
		{[]string{"１"}, "invalid task reference: １"},
		{[]string{"1", "2"}, "unexpected argument: 2"},
	}
	for _, tt := range tests {
		_, err := ParseTaskRef(tt.args)
		if err == nil {
			t.Errorf("ParseTaskRef(%q): expected error", tt.args)
			continue
		}
		if err.Error() != tt.expected {
			t.Errorf("ParseTaskRef(%q): expected %q, got %q", tt.args, tt.expected, err.Error())
		}
	}
}

func TestResolveTask_DisplayOrder(t *testing.T) {
	bucket := []task.Task{
		{ID: "done", IsCompleted: true, CreatedAt: 3},
		{ID: "old", CreatedAt: 1},
		{ID: "new", CreatedAt: 2},
	}

	for num, id := range map[int]string{1: "new", 2: "old", 3: "done"} {
		got, err := ResolveTask(bucket, num)
		if err != nil {
			t.Fatalf("ResolveTask(%d): unexpected error: %v", num, err)
		}
		if got.ID != id {
			t.Errorf("ResolveTask(%d): expected %q, got %q", num, id, got.ID)
		}
	}

	if _, err := ResolveTask(bucket, 4); err == nil || err.Error() != "task number out of range: 4" {
		t.Errorf("expected out of range error, got %v", err)
	}
	if _, err := ResolveTask(bucket, 0); err == nil {
		t.Error("expected error for 0")
	}
}

func TestParseDateRef(t *testing.T) {
	today := time.Date(2024, 2, 28, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		in       string
		expected string
	}{
		{"", "2024-02-28"},
		{"today", "2024-02-28"},
		{"Tomorrow", "2024-02-29"},
		{"yesterday", "2024-02-27"},
		{"2024-03-01", "2024-03-01"},
	}
	for _, tt := range tests {
		got, err := ParseDateRef(tt.in, today)
		if err != nil {
			t.Errorf("ParseDateRef(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("ParseDateRef(%q): expected %q, got %q", tt.in, tt.expected, got)
		}
	}

	for _, bad := range []string{"2024-02-30", "03/15/2024", "next week"} {
		if _, err := ParseDateRef(bad, today); err == nil || err.Error() != "invalid date: "+bad {
			t.Errorf("ParseDateRef(%q): expected invalid date error, got %v", bad, err)
		}
	}
}

func TestParseMonthRef(t *testing.T) {
	fallback := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	m, err := ParseMonthRef("", fallback)
	if err != nil || m.Month() != time.March || m.Day() != 1 {
		t.Errorf("expected March 1, got %v (%v)", m, err)
	}
	m, err = ParseMonthRef("2023-12", fallback)
	if err != nil || m.Year() != 2023 || m.Month() != time.December {
		t.Errorf("expected December 2023, got %v (%v)", m, err)
	}
	if _, err := ParseMonthRef("2023-13", fallback); err == nil {
		t.Error("expected error for month 13")
	}
}
