package domain

import (
	"regexp"
	"strings"
	"time"
)

// Kind tags the quiz variant. It is set authoritatively on quiz records;
// the legacy display-name prefixes ("sql:", "python:", "mcq:") are parsed
// only as a compatibility shim, see KindFromName.
type Kind string

const (
	KindSQL    Kind = "sql"
	KindPython Kind = "python"
	KindMCQ    Kind = "mcq"
)

var namePrefix = regexp.MustCompile(`(?i)^(sql:|python:|mcq:)\s*`)

// KindFromName inspects a legacy quiz display name for a variant prefix.
func KindFromName(name string) (Kind, bool) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "sql:"):
		return KindSQL, true
	case strings.HasPrefix(lower, "python:"):
		return KindPython, true
	case strings.HasPrefix(lower, "mcq:"):
		return KindMCQ, true
	}
	return "", false
}

// DisplayName strips the legacy variant prefix from a quiz name.
func DisplayName(name string) string {
	return namePrefix.ReplaceAllString(name, "")
}

// WindowStatus describes where "now" falls relative to a quiz's scheduled window.
type WindowStatus string

const (
	WindowUpcoming WindowStatus = "upcoming"
	WindowOpen     WindowStatus = "open"
	WindowEnded    WindowStatus = "ended"
)

// QuizSummary is one entry of the quiz catalog.
type QuizSummary struct {
	ID         string    `json:"_id"`
	Name       string    `json:"quizName"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Difficulty string    `json:"difficulty,omitempty"`

	// Kind is derived from the name prefix until the catalog carries it natively.
	Kind Kind `json:"-"`
}

// Window reports the registration window status at the given instant.
func (s QuizSummary) Window(now time.Time) WindowStatus {
	switch {
	case now.Before(s.Start):
		return WindowUpcoming
	case now.After(s.End):
		return WindowEnded
	default:
		return WindowOpen
	}
}

// TestCase is one input/expected-output pair for a free-form code question.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// TableData is the reference table shown alongside a SQL question.
type TableData struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Question is a single quiz question. Exactly one variant's fields are
// populated, matching the quiz Kind.
type Question struct {
	Prompt string

	// MCQ: option key -> option text, plus the correct option text.
	Options map[string]string
	Answer  string

	// SQL: reference data and the rows a correct query must produce.
	Table          TableData
	ExpectedOutput []Row

	// Python: starter code, test cases, optional reference solution.
	Boilerplate string
	TestCases   []TestCase
	Solution    string
}

// Quiz is an immutable, ordered question set loaded once at session start.
type Quiz struct {
	ID        string
	Kind      Kind
	Name      string
	Questions []Question
}

// Len returns the number of questions.
func (q Quiz) Len() int {
	return len(q.Questions)
}

// ScoreReport is the final result payload sent to the score sink.
type ScoreReport struct {
	QuizID   string
	UserID   string
	Kind     Kind
	Score    int
	Duration time.Duration
}
