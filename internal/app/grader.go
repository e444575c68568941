package app

import (
	"context"
	"fmt"
	"strings"

	"datasense-quiz-client/internal/domain"
)

// Executor runs user-submitted code against the remote execution service.
type Executor interface {
	ExecuteSQL(ctx context.Context, query string) ([]domain.Row, error)
	ExecutePython(ctx context.Context, code string) (string, error)
}

// CheckResult is the outcome of grading one answer.
type CheckResult struct {
	Correct  bool
	Expected string
	Got      string
	Detail   string
	// Stale marks a result that arrived after the user navigated away; it
	// must not be applied to the current question.
	Stale bool
}

// Grader decides answer correctness per quiz variant. MCQ grading is local;
// SQL and Python delegate to the remote executor.
type Grader struct {
	exec Executor
}

func NewGrader(exec Executor) *Grader {
	return &Grader{exec: exec}
}

func (g *Grader) Grade(ctx context.Context, kind domain.Kind, q domain.Question, answer string) (CheckResult, error) {
	switch kind {
	case domain.KindMCQ:
		return g.gradeMCQ(q, answer), nil
	case domain.KindSQL:
		return g.gradeSQL(ctx, q, answer)
	case domain.KindPython:
		return g.gradePython(ctx, q, answer)
	default:
		return CheckResult{}, domain.ErrUnknownKind
	}
}

// gradeMCQ resolves the stored option key through the question's option map
// and compares the resulting text to the correct-answer text. Comparing by
// text rather than by key is a fixed design property: if the same key maps
// to different text than when selected, the answer no longer counts.
func (g *Grader) gradeMCQ(q domain.Question, answer string) CheckResult {
	selected, ok := q.Options[answer]
	result := CheckResult{
		Expected: q.Answer,
		Got:      selected,
	}
	if !ok {
		result.Detail = "no such option"
		return result
	}
	result.Correct = selected == q.Answer
	return result
}

func (g *Grader) gradeSQL(ctx context.Context, q domain.Question, query string) (CheckResult, error) {
	rows, err := g.exec.ExecuteSQL(ctx, query)
	if err != nil {
		return CheckResult{}, fmt.Errorf("execute query: %w", err)
	}
	return CheckResult{
		Correct:  domain.RowsEqual(rows, q.ExpectedOutput),
		Expected: domain.FormatRows(q.ExpectedOutput),
		Got:      domain.FormatRows(rows),
	}, nil
}

// gradePython runs every test case; all must pass. Each case appends a print
// of the case's input expression to the user's code and compares the trimmed
// output to the expected string exactly.
func (g *Grader) gradePython(ctx context.Context, q domain.Question, code string) (CheckResult, error) {
	for i, tc := range q.TestCases {
		full := code + "\nprint(" + tc.Input + ")"
		out, err := g.exec.ExecutePython(ctx, full)
		if err != nil {
			return CheckResult{}, fmt.Errorf("execute test case %d: %w", i+1, err)
		}
		got := strings.TrimSpace(out)
		if got != tc.ExpectedOutput {
			return CheckResult{
				Expected: tc.ExpectedOutput,
				Got:      got,
				Detail:   fmt.Sprintf("test case %d failed", i+1),
			}, nil
		}
	}
	return CheckResult{
		Correct: true,
		Detail:  fmt.Sprintf("all %d test cases passed", len(q.TestCases)),
	}, nil
}
