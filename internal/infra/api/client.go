// Package api is the REST client for the remote quiz platform: the question
// source, the score sink, quiz registration, and the remote executor that
// evaluates user-submitted SQL and Python.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"datasense-quiz-client/internal/domain"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the given API base URL. Pass nil to use a
// default HTTP client with a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListQuizzes returns the quiz catalog. Kinds are derived from the legacy
// display-name prefixes until the catalog carries them natively.
func (c *Client) ListQuizzes(ctx context.Context) ([]domain.QuizSummary, error) {
	var quizzes []domain.QuizSummary
	if err := c.getJSON(ctx, "/quiz/quizzes", &quizzes); err != nil {
		return nil, err
	}
	for i := range quizzes {
		if kind, ok := domain.KindFromName(quizzes[i].Name); ok {
			quizzes[i].Kind = kind
		}
	}
	return quizzes, nil
}

type mcqQuestion struct {
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
	Answer   string            `json:"answer"`
}

type sqlQuestion struct {
	QuestionText   string           `json:"question_text"`
	TableData      domain.TableData `json:"table_data"`
	ExpectedOutput []domain.Row     `json:"expected_output"`
}

type pythonQuestion struct {
	QuestionText    string            `json:"question_text"`
	BoilerplateCode string            `json:"boilerplate_code"`
	TestCases       []domain.TestCase `json:"test_cases"`
	Solution        string            `json:"solution"`
}

// FetchQuiz loads the ordered question set for a quiz, routed per variant.
func (c *Client) FetchQuiz(ctx context.Context, kind domain.Kind, quizID, userID string) (domain.Quiz, error) {
	quiz := domain.Quiz{ID: quizID, Kind: kind}

	switch kind {
	case domain.KindMCQ:
		var questions []mcqQuestion
		if err := c.getJSON(ctx, "/quizadmin/python-mcq-questions/"+url.PathEscape(quizID), &questions); err != nil {
			return domain.Quiz{}, err
		}
		for _, q := range questions {
			quiz.Questions = append(quiz.Questions, domain.Question{
				Prompt:  q.Question,
				Options: q.Options,
				Answer:  q.Answer,
			})
		}
	case domain.KindSQL:
		var payload struct {
			Questions []sqlQuestion `json:"questions"`
		}
		path := "/sql-quiz/" + url.PathEscape(quizID) + "/" + url.PathEscape(userID)
		if err := c.getJSON(ctx, path, &payload); err != nil {
			return domain.Quiz{}, err
		}
		for _, q := range payload.Questions {
			quiz.Questions = append(quiz.Questions, domain.Question{
				Prompt:         q.QuestionText,
				Table:          q.TableData,
				ExpectedOutput: q.ExpectedOutput,
			})
		}
	case domain.KindPython:
		var payload struct {
			Questions []pythonQuestion `json:"questions"`
		}
		path := "/python-quiz/" + url.PathEscape(quizID) + "/" + url.PathEscape(userID)
		if err := c.getJSON(ctx, path, &payload); err != nil {
			return domain.Quiz{}, err
		}
		for _, q := range payload.Questions {
			quiz.Questions = append(quiz.Questions, domain.Question{
				Prompt:      q.QuestionText,
				Boilerplate: q.BoilerplateCode,
				TestCases:   q.TestCases,
				Solution:    q.Solution,
			})
		}
	default:
		return domain.Quiz{}, domain.ErrUnknownKind
	}

	return quiz, nil
}

// Register enrolls a user for a quiz ahead of its start window.
func (c *Client) Register(ctx context.Context, quizID, userID string) error {
	body := map[string]string{
		"userID": userID,
		"quizID": quizID,
	}
	return c.postJSON(ctx, "/sql-quiz/register", body, nil)
}

// SubmitScore records a final result. MCQ results carry the attempt duration
// and go to the quiz-admin endpoint; SQL and Python results go to the
// sql-quiz endpoint.
func (c *Client) SubmitScore(ctx context.Context, report domain.ScoreReport) error {
	if report.Kind == domain.KindMCQ {
		body := map[string]any{
			"quizID":   report.QuizID,
			"userID":   report.UserID,
			"score":    report.Score,
			"duration": int(report.Duration.Seconds()),
		}
		return c.postJSON(ctx, "/quizadmin/update-scores", body, nil)
	}
	body := map[string]any{
		"quizID": report.QuizID,
		"userID": report.UserID,
		"score":  report.Score,
	}
	return c.postJSON(ctx, "/sql-quiz/update-scores", body, nil)
}

// ExecuteSQL runs a query on the remote executor and returns the result rows
// with their field order preserved.
func (c *Client) ExecuteSQL(ctx context.Context, query string) ([]domain.Row, error) {
	var rows []domain.Row
	path := "/execute-sql/query?q=" + url.QueryEscape(query)
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecutePython runs a Python snippet on the remote executor and returns its
// raw text output.
func (c *Client) ExecutePython(ctx context.Context, code string) (string, error) {
	payload, err := json.Marshal(map[string]string{"pyCode": code})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute-python", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("execute-python returned status %d", resp.StatusCode)
	}
	return string(out), nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s returned status %d", path, resp.StatusCode)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
