package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// CompletionRepository handles database operations for completion records
type CompletionRepository struct {
	db *sqlx.DB
}

// NewCompletionRepository creates a new repository instance
func NewCompletionRepository(db *sqlx.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Get returns the completion record for a (user, task) pair.
func (r *CompletionRepository) Get(ctx context.Context, userID, taskID string) (*models.Completion, error) {
	var c models.Completion
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM completions WHERE user_id = $1 AND task_id = $2",
		userID, taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get completion: %w", err)
	}
	return &c, nil
}

// Create inserts a fresh completion record with attempts = 1. A nil
// completedAt records an in-progress completion. A unique-constraint error is
// returned unwrapped so the caller can fall back to the update path when a
// concurrent creator won the race.
func (r *CompletionRepository) Create(ctx context.Context, userID, taskID, courseID string, score float64, completedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (user_id, task_id, course_id, score, attempts, completed_at)
		VALUES ($1, $2, $3, $4, 1, $5)`,
		userID, taskID, courseID, score, completedAt)
	if err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("failed to create completion: %w", err)
	}
	return nil
}

// ApplyEvent folds one aggregation outcome into an existing record with a
// single atomic statement, so concurrent submissions commute:
//   - score only moves up (strictly greater wins, lower values are kept out)
//   - completed_at is set at most once and never cleared
//   - attempts grows by attemptDelta (0 for reconciliation sweeps, 1 for
//     submitted score events)
//
// Returns ErrNotFound when no record exists for the pair.
func (r *CompletionRepository) ApplyEvent(ctx context.Context, userID, taskID string, score float64, completes bool, completedAt time.Time, attemptDelta int) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE completions SET
			score = CASE WHEN $1 > score THEN $1 ELSE score END,
			completed_at = CASE WHEN completed_at IS NULL AND $2 THEN $3 ELSE completed_at END,
			attempts = attempts + $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE user_id = $5 AND task_id = $6`,
		score, completes, completedAt, attemptDelta, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to update completion: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
