package app

import (
	"context"
	"log"
	"sync"
	"time"

	"datasense-quiz-client/internal/domain"
)

// State is the lifecycle position of a quiz session.
type State int

const (
	StateUninitialized State = iota
	StateBlocked
	StateLoading
	StateAnswering
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateBlocked:
		return "blocked"
	case StateLoading:
		return "loading"
	case StateAnswering:
		return "answering"
	case StateCompleted:
		return "completed"
	default:
		return "uninitialized"
	}
}

// EventType tags session events delivered to subscribers.
type EventType int

const (
	EventTick EventType = iota
	EventAdvanced
	EventCompleted
)

// Event is a session update pushed to subscribers (the terminal renderer).
type Event struct {
	Type      EventType
	Index     int
	Remaining int
	Score     int
}

// Snapshot is a consistent read of the session for rendering.
type Snapshot struct {
	State     State
	Index     int
	Total     int
	Remaining int
	Score     int
	Question  domain.Question
	Answer    string
	Answered  bool
}

const scoreSubmitTimeout = 10 * time.Second

type sessionDeps struct {
	grader *Grader
	ledger AttemptLedger
	sink   ScoreSink
}

// Session drives a single quiz attempt from load to completion. All state is
// guarded by mu; the countdown goroutine is the only writer besides the
// caller, and both go through the same lock.
type Session struct {
	quizID          string
	userID          string
	questionSeconds int
	now             func() time.Time
	deps            sessionDeps

	mu          sync.Mutex
	state       State
	closed      bool
	quiz        domain.Quiz
	index       int
	answers     []string
	answered    []bool
	remaining   int
	score       int
	results     []CheckResult
	startedAt   time.Time
	generation  int
	stopTimer   func()
	subscribers map[chan Event]struct{}
}

func newSession(deps sessionDeps, quizID, userID string, questionSeconds int, now func() time.Time) *Session {
	return &Session{
		quizID:          quizID,
		userID:          userID,
		questionSeconds: questionSeconds,
		now:             now,
		deps:            deps,
		state:           StateUninitialized,
		subscribers:     make(map[chan Event]struct{}),
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// begin installs the loaded quiz and enters Answering: one answer slot per
// question, index 0, timer at the configured duration.
func (s *Session) begin(quiz domain.Quiz) {
	s.mu.Lock()
	s.quiz = quiz
	s.answers = make([]string, len(quiz.Questions))
	s.answered = make([]bool, len(quiz.Questions))
	s.index = 0
	s.remaining = s.questionSeconds
	s.startedAt = s.now()
	s.state = StateAnswering
	s.mu.Unlock()
	s.startCountdown()
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quiz returns the loaded quiz. It is immutable for the session's duration.
func (s *Session) Quiz() domain.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiz
}

// Snapshot returns a consistent view for rendering.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State:     s.state,
		Index:     s.index,
		Total:     len(s.quiz.Questions),
		Remaining: s.remaining,
		Score:     s.score,
	}
	if s.index < len(s.quiz.Questions) {
		snap.Question = s.quiz.Questions[s.index]
		snap.Answer = s.answers[s.index]
		snap.Answered = s.answered[s.index]
	}
	return snap
}

// Select stores the given value as the answer for the current question. The
// index does not advance and the timer is not reset.
func (s *Session) Select(value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering || s.closed {
		return domain.ErrSessionClosed
	}
	s.answers[s.index] = value
	s.answered[s.index] = true
	return nil
}

// Next advances to the following question and resets the timer. On the last
// question it is a no-op; submission is the only forward action there.
func (s *Session) Next() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering || s.closed {
		return domain.ErrSessionClosed
	}
	if s.index >= len(s.quiz.Questions)-1 {
		return nil
	}
	s.advanceLocked(s.index + 1)
	return nil
}

// Prev steps back to the previous question, restoring its stored answer.
// It never touches the score. A no-op on the first question.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAnswering || s.closed {
		return domain.ErrSessionClosed
	}
	if s.index == 0 {
		return nil
	}
	s.advanceLocked(s.index - 1)
	return nil
}

func (s *Session) advanceLocked(to int) {
	s.index = to
	s.generation++
	s.remaining = s.questionSeconds
	s.broadcastLocked(Event{Type: EventAdvanced, Index: s.index, Remaining: s.remaining, Score: s.score})
}

// CheckCurrent runs the stored answer for the current question against the
// remote executor and returns feedback. If the user navigated away while the
// check was in flight the result is marked stale and must be discarded;
// a stale response never overwrites fresher state.
func (s *Session) CheckCurrent(ctx context.Context) (CheckResult, error) {
	s.mu.Lock()
	if s.state != StateAnswering || s.closed {
		s.mu.Unlock()
		return CheckResult{}, domain.ErrSessionClosed
	}
	gen := s.generation
	kind := s.quiz.Kind
	question := s.quiz.Questions[s.index]
	answer := s.answers[s.index]
	s.mu.Unlock()

	result, err := s.deps.grader.Grade(ctx, kind, question, answer)
	if err != nil {
		// Execution failure means the answer is incorrect, never a crash.
		result = CheckResult{Detail: "execution failed: " + err.Error()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen || s.state != StateAnswering {
		result.Stale = true
	}
	return result, nil
}

// Submit finalizes the attempt: answers are frozen, the score is computed
// once from the final answer records, the attempt ledger is marked, and the
// score sink is notified asynchronously. Sink failures are logged and
// swallowed; completion never waits on them.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAnswering || s.closed {
		s.mu.Unlock()
		return domain.ErrSessionClosed
	}
	s.state = StateCompleted
	if s.stopTimer != nil {
		s.stopTimer()
	}
	kind := s.quiz.Kind
	questions := s.quiz.Questions
	answers := append([]string(nil), s.answers...)
	answered := append([]bool(nil), s.answered...)
	startedAt := s.startedAt
	s.mu.Unlock()

	score := 0
	results := make([]CheckResult, len(questions))
	for i := range questions {
		if !answered[i] {
			results[i] = CheckResult{Detail: "not answered", Expected: expectedFor(kind, questions[i])}
			continue
		}
		result, err := s.deps.grader.Grade(ctx, kind, questions[i], answers[i])
		if err != nil {
			log.Printf("grade question %d: %v", i+1, err)
			result = CheckResult{Detail: "execution failed", Expected: expectedFor(kind, questions[i])}
		}
		if result.Correct {
			score++
		}
		results[i] = result
	}
	duration := s.now().Sub(startedAt)

	if err := s.deps.ledger.MarkCompleted(ctx, s.quizID); err != nil {
		log.Printf("mark attempt for quiz %s: %v", s.quizID, err)
	}

	report := domain.ScoreReport{
		QuizID:   s.quizID,
		UserID:   s.userID,
		Kind:     kind,
		Score:    score,
		Duration: duration.Round(time.Second),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), scoreSubmitTimeout)
		defer cancel()
		if err := s.deps.sink.SubmitScore(ctx, report); err != nil {
			log.Printf("submit score for quiz %s: %v", s.quizID, err)
		}
	}()

	s.mu.Lock()
	s.score = score
	s.results = results
	s.broadcastLocked(Event{Type: EventCompleted, Index: s.index, Score: score})
	s.mu.Unlock()
	return nil
}

// Results returns per-question outcomes computed at submission. Empty until
// the session completes.
func (s *Session) Results() []CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]CheckResult(nil), s.results...)
}

// Answers returns the final answer records, one slot per question.
func (s *Session) Answers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.answers...)
}

// Close tears the session down: the countdown is cancelled and subscribers
// are released. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.stopTimer != nil {
		s.stopTimer()
	}
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Subscribe returns a channel of session events. The caller must invoke the
// returned cancel function to avoid leaks.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Drop the oldest event so a slow reader never blocks the timer.
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
}

func (s *Session) startCountdown() {
	stop := make(chan struct{})
	var once sync.Once
	s.mu.Lock()
	s.stopTimer = func() { once.Do(func() { close(stop) }) }
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-stop:
				return
			}
		}
	}()
}

// tick advances the countdown by one second. Expiry on a non-last question
// auto-advances; expiry on the last question submits.
func (s *Session) tick() {
	s.mu.Lock()
	if s.state != StateAnswering || s.closed {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.broadcastLocked(Event{Type: EventTick, Index: s.index, Remaining: s.remaining, Score: s.score})
		s.mu.Unlock()
		return
	}
	if s.index < len(s.quiz.Questions)-1 {
		s.advanceLocked(s.index + 1)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.Submit(context.Background()); err != nil && err != domain.ErrSessionClosed {
		log.Printf("submit on timeout: %v", err)
	}
}

func expectedFor(kind domain.Kind, q domain.Question) string {
	switch kind {
	case domain.KindMCQ:
		return q.Answer
	case domain.KindSQL:
		return domain.FormatRows(q.ExpectedOutput)
	default:
		return ""
	}
}
