package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// AttemptLedger persists per-quiz completion flags in Redis. Keys keep the
// quizCompleted_{quizID} format of the original browser storage, and are
// written without expiry: an attempt record is never cleared by the client.
type AttemptLedger struct {
	client *redis.Client
}

func NewAttemptLedger(client *redis.Client) *AttemptLedger {
	return &AttemptLedger{client: client}
}

func (l *AttemptLedger) Completed(ctx context.Context, quizID string) (bool, error) {
	n, err := l.client.Exists(ctx, key(quizID)).Result()
	if err != nil {
		return false, fmt.Errorf("read attempt flag: %w", err)
	}
	return n > 0, nil
}

func (l *AttemptLedger) MarkCompleted(ctx context.Context, quizID string) error {
	if err := l.client.Set(ctx, key(quizID), "true", 0).Err(); err != nil {
		return fmt.Errorf("write attempt flag: %w", err)
	}
	return nil
}

func key(quizID string) string {
	return "quizCompleted_" + quizID
}
