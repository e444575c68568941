package domain

import (
	"testing"
	"time"
)

func TestKindFromName(t *testing.T) {
	cases := []struct {
		name string
		kind Kind
		ok   bool
	}{
		{"sql: joins basics", KindSQL, true},
		{"SQL: window functions", KindSQL, true},
		{"python: list comprehensions", KindPython, true},
		{"mcq: pandas fundamentals", KindMCQ, true},
		{"untagged quiz", "", false},
	}
	for _, tc := range cases {
		kind, ok := KindFromName(tc.name)
		if kind != tc.kind || ok != tc.ok {
			t.Fatalf("KindFromName(%q) = %q, %v; want %q, %v", tc.name, kind, ok, tc.kind, tc.ok)
		}
	}
}

func TestDisplayNameStripsPrefix(t *testing.T) {
	if got := DisplayName("SQL:  Joins Basics"); got != "Joins Basics" {
		t.Fatalf("expected prefix stripped, got %q", got)
	}
	if got := DisplayName("Untagged"); got != "Untagged" {
		t.Fatalf("expected name unchanged, got %q", got)
	}
}

func TestQuizSummaryWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)
	summary := QuizSummary{Start: start, End: end}

	if got := summary.Window(start.Add(-time.Minute)); got != WindowUpcoming {
		t.Fatalf("before start: got %v", got)
	}
	if got := summary.Window(start.Add(time.Hour)); got != WindowOpen {
		t.Fatalf("inside window: got %v", got)
	}
	if got := summary.Window(end.Add(time.Minute)); got != WindowEnded {
		t.Fatalf("after end: got %v", got)
	}
}
