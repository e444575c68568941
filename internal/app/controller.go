package app

import (
	"context"
	"fmt"
	"time"

	"datasense-quiz-client/internal/domain"
)

// QuestionSource loads quiz content from the remote question endpoint.
type QuestionSource interface {
	FetchQuiz(ctx context.Context, kind domain.Kind, quizID, userID string) (domain.Quiz, error)
}

// AttemptLedger is the durable per-quiz completion flag. Once set for a quiz
// it is never cleared by the client.
type AttemptLedger interface {
	Completed(ctx context.Context, quizID string) (bool, error)
	MarkCompleted(ctx context.Context, quizID string) error
}

// ScoreSink records the final quiz result. Delivery is best-effort.
type ScoreSink interface {
	SubmitScore(ctx context.Context, report domain.ScoreReport) error
}

const defaultQuestionSeconds = 80

// Config wires the session controller's collaborators.
type Config struct {
	Source   QuestionSource
	Ledger   AttemptLedger
	Sink     ScoreSink
	Executor Executor

	// QuestionSeconds is the per-question countdown; defaults to 80.
	QuestionSeconds int
	// Clock is test-only for deterministic timestamps.
	Clock func() time.Time
}

// Controller starts quiz sessions, enforcing the one-attempt rule.
type Controller struct {
	source          QuestionSource
	ledger          AttemptLedger
	sink            ScoreSink
	grader          *Grader
	questionSeconds int
	now             func() time.Time
}

func NewController(c Config) *Controller {
	seconds := c.QuestionSeconds
	if seconds <= 0 {
		seconds = defaultQuestionSeconds
	}
	clock := c.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Controller{
		source:          c.Source,
		ledger:          c.Ledger,
		sink:            c.Sink,
		grader:          NewGrader(c.Executor),
		questionSeconds: seconds,
		now:             clock,
	}
}

// Start begins a quiz attempt. It returns a session in StateBlocked when the
// attempt ledger already records a completion; that state is terminal.
// A load failure is fatal: no session, no automatic retry.
func (c *Controller) Start(ctx context.Context, kind domain.Kind, quizID, userID string) (*Session, error) {
	if quizID == "" || userID == "" {
		return nil, domain.ErrMissingIdentity
	}

	deps := sessionDeps{grader: c.grader, ledger: c.ledger, sink: c.sink}
	sess := newSession(deps, quizID, userID, c.questionSeconds, c.now)

	done, err := c.ledger.Completed(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("check attempt ledger: %w", err)
	}
	if done {
		sess.setState(StateBlocked)
		return sess, nil
	}

	sess.setState(StateLoading)
	quiz, err := c.source.FetchQuiz(ctx, kind, quizID, userID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, domain.ErrNoQuestions
	}

	sess.begin(quiz)
	return sess, nil
}
