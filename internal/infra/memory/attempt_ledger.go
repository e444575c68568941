package memory

import (
	"context"
	"sync"
)

// AttemptLedger is an in-memory implementation of app.AttemptLedger, useful
// for tests. Entries are never removed.
type AttemptLedger struct {
	mu        sync.RWMutex
	completed map[string]bool
}

func NewAttemptLedger() *AttemptLedger {
	return &AttemptLedger{completed: make(map[string]bool)}
}

func (l *AttemptLedger) Completed(_ context.Context, quizID string) (bool, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.completed[quizID], nil
}

func (l *AttemptLedger) MarkCompleted(_ context.Context, quizID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.completed[quizID] = true
	return nil
}
