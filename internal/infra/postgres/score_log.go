package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"scramble-game-service/internal/domain"
)

// ScoreLog appends completed-round outcomes to the score_records table.
// Records are never updated or deleted.
type ScoreLog struct {
	pool *pgxpool.Pool
}

func NewScoreLog(pool *pgxpool.Pool) *ScoreLog {
	return &ScoreLog{pool: pool}
}

func (l *ScoreLog) Append(ctx context.Context, record domain.ScoreRecord) error {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO score_records
			(id, player_id, mode, difficulty, question_id, score, elapsed_ms, accuracy, grammar_score, hints_used, correct, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		record.ID,
		record.PlayerID,
		string(record.Mode),
		string(record.Difficulty),
		record.QuestionID,
		record.Score,
		record.Elapsed.Milliseconds(),
		record.Accuracy,
		record.GrammarScore,
		record.HintsUsed,
		record.Correct,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append score record: %w", err)
	}
	return nil
}
