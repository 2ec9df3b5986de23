package memory

import (
	"context"
	"sync"

	"scramble-game-service/internal/domain"
)

// ScoreLog is an append-only in-memory implementation of app.ScoreLog.
type ScoreLog struct {
	mu      sync.Mutex
	records []domain.ScoreRecord
}

func NewScoreLog() *ScoreLog {
	return &ScoreLog{}
}

func (l *ScoreLog) Append(ctx context.Context, record domain.ScoreRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// Records returns a snapshot of everything appended so far.
func (l *ScoreLog) Records() []domain.ScoreRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.ScoreRecord(nil), l.records...)
}
