// Package localstore keeps the attempt ledger in a local JSON file, the
// closest analog to the browser-local storage the quiz UI used.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// AttemptLedger stores quizCompleted_{quizID} flags in a single JSON file.
// Writes go through a temp file and rename so a crash never truncates the
// ledger.
type AttemptLedger struct {
	path string
	mu   sync.Mutex
}

func NewAttemptLedger(path string) *AttemptLedger {
	return &AttemptLedger{path: path}
}

func (l *AttemptLedger) Completed(_ context.Context, quizID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	flags, err := l.read()
	if err != nil {
		return false, err
	}
	return flags["quizCompleted_"+quizID], nil
}

func (l *AttemptLedger) MarkCompleted(_ context.Context, quizID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	flags, err := l.read()
	if err != nil {
		return err
	}
	flags["quizCompleted_"+quizID] = true
	return l.write(flags)
}

func (l *AttemptLedger) read() (map[string]bool, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]bool), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	flags := make(map[string]bool)
	if err := json.Unmarshal(data, &flags); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", l.path, err)
	}
	return flags, nil
}

func (l *AttemptLedger) write(flags map[string]bool) error {
	data, err := json.MarshalIndent(flags, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	tmp := l.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
