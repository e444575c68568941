package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz content could not be loaded.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrNoQuestions is returned when a quiz loads with an empty question list.
	ErrNoQuestions = errors.New("quiz has no questions")
	// ErrMissingIdentity is returned when quizID or userID is absent; a session cannot start without both.
	ErrMissingIdentity = errors.New("quiz ID or user ID is missing")
	// ErrAlreadyAttempted indicates the attempt ledger already records a completion for this quiz.
	ErrAlreadyAttempted = errors.New("quiz already attempted")
	// ErrSessionClosed is returned when an operation arrives after the session left Answering.
	ErrSessionClosed = errors.New("quiz session is closed")
	// ErrUnknownKind indicates a quiz whose variant could not be determined.
	ErrUnknownKind = errors.New("unknown quiz kind")
)
