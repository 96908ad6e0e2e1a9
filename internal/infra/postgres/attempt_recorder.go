package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-attempt-service/internal/domain"
)

// AttemptRecorder persists scored attempts. Rows are insert-only: a completed
// attempt is immutable, so a duplicate insert for the same ID is rejected by
// the primary key rather than re-scored.
type AttemptRecorder struct {
	pool *pgxpool.Pool
}

func NewAttemptRecorder(pool *pgxpool.Pool) *AttemptRecorder {
	return &AttemptRecorder{pool: pool}
}

func (r *AttemptRecorder) RecordAttempt(ctx context.Context, attempt domain.Attempt) error {
	results, err := json.Marshal(attempt.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO quiz_attempts
			(id, quiz_id, course_id, user_id, number, started_at, completed_at,
			 score, max_score, percent, passed, results)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12::jsonb)`,
		attempt.ID, attempt.QuizID, attempt.CourseID, attempt.UserID,
		attempt.Number, attempt.StartedAt, attempt.CompletedAt,
		attempt.Score, attempt.MaxScore, attempt.Percent, attempt.Passed,
		results,
	)
	if err != nil {
		return fmt.Errorf("record attempt: %w", err)
	}
	return nil
}

// CompletedCount returns the number of scored attempts for (quiz, user).
func (r *AttemptRecorder) CompletedCount(ctx context.Context, quizID, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM quiz_attempts WHERE quiz_id=$1 AND user_id=$2`,
		quizID, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return count, nil
}
