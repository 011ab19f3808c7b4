package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// ItemRepository handles database operations for learning items
type ItemRepository struct {
	db *sqlx.DB
}

// NewItemRepository creates a new repository instance
func NewItemRepository(db *sqlx.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// GetByUserAndTask returns all learning items for a user within a task.
func (r *ItemRepository) GetByUserAndTask(ctx context.Context, userID, taskID string) ([]models.LearningItem, error) {
	var items []models.LearningItem
	err := r.db.SelectContext(ctx, &items,
		"SELECT * FROM learning_items WHERE user_id = $1 AND task_id = $2 ORDER BY id",
		userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning items: %w", err)
	}
	return items, nil
}

// GetByIDForUser returns a single item, scoped to its owner. A missing row
// and an ownership mismatch are both reported as ErrNotFound.
func (r *ItemRepository) GetByIDForUser(ctx context.Context, itemID int64, userID string) (*models.LearningItem, error) {
	var item models.LearningItem
	err := r.db.GetContext(ctx, &item,
		"SELECT * FROM learning_items WHERE id = $1 AND user_id = $2",
		itemID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get learning item: %w", err)
	}
	return &item, nil
}

// BulkCreate inserts one item per term, all with status 0, inside a single
// transaction. On any failure nothing is written; a unique-constraint error
// is returned unwrapped so the caller can detect a lost initialization race.
func (r *ItemRepository) BulkCreate(ctx context.Context, userID, taskID string, terms []string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, term := range terms {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO learning_items (user_id, task_id, term, status) VALUES ($1, $2, $3, $4)",
			userID, taskID, term, models.StatusNotStarted)
		if err != nil {
			if IsUniqueViolation(err) {
				return err
			}
			return fmt.Errorf("failed to insert learning item: %w", err)
		}
	}
	return tx.Commit()
}

// UpdateStatus overwrites the status of an item owned by userID. Backward
// transitions are allowed. Returns ErrNotFound when no row matches, whether
// the item is missing or belongs to someone else.
func (r *ItemRepository) UpdateStatus(ctx context.Context, itemID int64, userID string, status models.MasteryStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE learning_items SET status = $1 WHERE id = $2 AND user_id = $3",
		status, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to update item status: %w", err)
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

// StatusCounts returns how many of the user's items in a task sit at each
// status, plus the total.
func (r *ItemRepository) StatusCounts(ctx context.Context, userID, taskID string) (map[models.MasteryStatus]int, int, error) {
	rows, err := r.db.QueryxContext(ctx,
		"SELECT status, COUNT(*) AS n FROM learning_items WHERE user_id = $1 AND task_id = $2 GROUP BY status",
		userID, taskID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count item statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.MasteryStatus]int)
	total := 0
	for rows.Next() {
		var status models.MasteryStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, 0, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
		total += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate status counts: %w", err)
	}
	return counts, total, nil
}

// TaskPair identifies one (user, task) combination with learning items.
type TaskPair struct {
	UserID string `db:"user_id"`
	TaskID string `db:"task_id"`
}

// PairsPendingCompletion lists (user, task) pairs that have learning items
// but no completed completion record yet. The reconciliation sweep recomputes
// mastery for these to recover completions lost to mid-request failures.
func (r *ItemRepository) PairsPendingCompletion(ctx context.Context) ([]TaskPair, error) {
	var pairs []TaskPair
	err := r.db.SelectContext(ctx, &pairs, `
		SELECT DISTINCT li.user_id, li.task_id FROM learning_items li
		WHERE NOT EXISTS (
			SELECT 1 FROM completions c
			WHERE c.user_id = li.user_id AND c.task_id = li.task_id
			AND c.completed_at IS NOT NULL
		)`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending pairs: %w", err)
	}
	return pairs, nil
}

// BackfillDefinitions copies translations from the task word lists into items
// whose definition is still empty. Returns the number of items filled.
func (r *ItemRepository) BackfillDefinitions(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE learning_items SET definition = (
			SELECT tw.translation FROM task_words tw
			WHERE tw.task_id = learning_items.task_id AND tw.term = learning_items.term
		)
		WHERE definition IS NULL AND EXISTS (
			SELECT 1 FROM task_words tw
			WHERE tw.task_id = learning_items.task_id AND tw.term = learning_items.term
			AND tw.translation <> ''
		)`)
	if err != nil {
		return 0, fmt.Errorf("failed to backfill definitions: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
