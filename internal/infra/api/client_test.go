package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"datasense-quiz-client/internal/domain"
)

func TestListQuizzesDerivesKindFromName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/quiz/quizzes" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		io.WriteString(w, `[
			{"_id": "q1", "quizName": "SQL: Joins Basics"},
			{"_id": "q2", "quizName": "python: Loops"},
			{"_id": "q3", "quizName": "MCQ: Pandas"},
			{"_id": "q4", "quizName": "Untagged"}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	quizzes, err := client.ListQuizzes(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 4 {
		t.Fatalf("expected 4 quizzes, got %d", len(quizzes))
	}
	wantKinds := []domain.Kind{domain.KindSQL, domain.KindPython, domain.KindMCQ, ""}
	for i, want := range wantKinds {
		if quizzes[i].Kind != want {
			t.Errorf("quiz %s: kind %q, want %q", quizzes[i].ID, quizzes[i].Kind, want)
		}
	}
}

func TestFetchQuizRoutesPerKind(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		switch r.URL.Path {
		case "/quizadmin/python-mcq-questions/q1":
			io.WriteString(w, `[{"question": "2+2?", "options": {"a": "4", "b": "5"}, "answer": "4"}]`)
		case "/sql-quiz/q2/user@x.com":
			io.WriteString(w, `{"questions": [{
				"question_text": "select all",
				"table_data": {"columns": ["id"], "rows": [[1]]},
				"expected_output": [{"id": 1, "name": "ada"}]
			}]}`)
		case "/python-quiz/q3/user@x.com":
			io.WriteString(w, `{"questions": [{
				"question_text": "double it",
				"boilerplate_code": "def double(n):",
				"test_cases": [{"input": "double(2)", "expected_output": "4"}],
				"solution": "def double(n):\n    return n * 2"
			}]}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	quiz, err := client.FetchQuiz(context.Background(), domain.KindMCQ, "q1", "user@x.com")
	if err != nil {
		t.Fatalf("fetch mcq: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Options["a"] != "4" {
		t.Fatalf("unexpected mcq quiz %+v", quiz)
	}

	quiz, err = client.FetchQuiz(context.Background(), domain.KindSQL, "q2", "user@x.com")
	if err != nil {
		t.Fatalf("fetch sql: %v", err)
	}
	q := quiz.Questions[0]
	if q.Prompt != "select all" || len(q.ExpectedOutput) != 1 {
		t.Fatalf("unexpected sql question %+v", q)
	}
	if got := q.ExpectedOutput[0].Columns; len(got) != 2 || got[0] != "id" || got[1] != "name" {
		t.Fatalf("expected ordered columns [id name], got %v", got)
	}

	quiz, err = client.FetchQuiz(context.Background(), domain.KindPython, "q3", "user@x.com")
	if err != nil {
		t.Fatalf("fetch python: %v", err)
	}
	q = quiz.Questions[0]
	if q.Boilerplate == "" || len(q.TestCases) != 1 || q.Solution == "" {
		t.Fatalf("unexpected python question %+v", q)
	}
	if gotPath != "/python-quiz/q3/user@x.com" {
		t.Fatalf("unexpected last path %s", gotPath)
	}

	if _, err := client.FetchQuiz(context.Background(), domain.Kind("essay"), "q4", "u"); err != domain.ErrUnknownKind {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestRegisterPostsIdentity(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sql-quiz/register" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	if err := client.Register(context.Background(), "q1", "user@x.com"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if got["quizID"] != "q1" || got["userID"] != "user@x.com" {
		t.Fatalf("unexpected payload %v", got)
	}
}

func TestSubmitScoreRouting(t *testing.T) {
	type recorded struct {
		path string
		body map[string]any
	}
	var last recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		last = recorded{path: r.URL.Path, body: body}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())

	err := client.SubmitScore(context.Background(), domain.ScoreReport{
		QuizID: "q1", UserID: "u", Kind: domain.KindMCQ, Score: 3, Duration: 95e9,
	})
	if err != nil {
		t.Fatalf("submit mcq: %v", err)
	}
	if last.path != "/quizadmin/update-scores" {
		t.Fatalf("mcq score path %s", last.path)
	}
	if last.body["duration"] != float64(95) {
		t.Fatalf("mcq payload must carry duration seconds, got %v", last.body)
	}

	err = client.SubmitScore(context.Background(), domain.ScoreReport{
		QuizID: "q1", UserID: "u", Kind: domain.KindSQL, Score: 2,
	})
	if err != nil {
		t.Fatalf("submit sql: %v", err)
	}
	if last.path != "/sql-quiz/update-scores" {
		t.Fatalf("sql score path %s", last.path)
	}
	if _, ok := last.body["duration"]; ok {
		t.Fatalf("sql payload must not carry duration, got %v", last.body)
	}
}

func TestExecuteSQLEncodesQueryAndPreservesRowOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/execute-sql/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "SELECT * FROM t WHERE a = 'x & y'" {
			t.Errorf("query not decoded back, got %q", got)
		}
		io.WriteString(w, `[{"b": 2, "a": 1}]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	rows, err := client.ExecuteSQL(context.Background(), "SELECT * FROM t WHERE a = 'x & y'")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if cols := rows[0].Columns; cols[0] != "b" || cols[1] != "a" {
		t.Fatalf("document field order must be preserved, got %v", cols)
	}
}

func TestExecutePythonReturnsRawOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["pyCode"] != "print(1)" {
			t.Errorf("unexpected code %q", body["pyCode"])
		}
		io.WriteString(w, "1\n")
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	out, err := client.ExecutePython(context.Background(), "print(1)")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "1\n" {
		t.Fatalf("raw output expected, got %q", out)
	}
}

func TestErrorStatusSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	if _, err := client.ListQuizzes(context.Background()); err == nil {
		t.Fatalf("expected error on 502")
	}
	if err := client.Register(context.Background(), "q", "u"); err == nil {
		t.Fatalf("expected error on 502")
	}
	if _, err := client.ExecutePython(context.Background(), "x"); err == nil {
		t.Fatalf("expected error on 502")
	}
}
