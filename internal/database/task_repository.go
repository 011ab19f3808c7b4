package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// TaskRepository handles database operations for tasks and their word lists
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository creates a new repository instance
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Get returns a task by ID.
func (r *TaskRepository) Get(ctx context.Context, taskID string) (*models.Task, error) {
	var task models.Task
	err := r.db.GetContext(ctx, &task, "SELECT * FROM tasks WHERE id = $1", taskID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// GetWordList returns the canonical word list of a task in import order.
func (r *TaskRepository) GetWordList(ctx context.Context, taskID string) ([]models.TaskWord, error) {
	var words []models.TaskWord
	err := r.db.SelectContext(ctx, &words,
		"SELECT * FROM task_words WHERE task_id = $1 ORDER BY position, id", taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to get task words: %w", err)
	}
	return words, nil
}

// Upsert creates a task or updates its metadata if it already exists.
func (r *TaskRepository) Upsert(ctx context.Context, task *models.Task) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, course_id, title, language) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			course_id = EXCLUDED.course_id,
			title = EXCLUDED.title,
			language = EXCLUDED.language`,
		task.ID, task.CourseID, task.Title, task.Language)
	if err != nil {
		return fmt.Errorf("failed to upsert task: %w", err)
	}
	return nil
}

// AddWord appends one entry to a task's word list. Re-importing the same term
// updates its translation and position instead of duplicating it.
func (r *TaskRepository) AddWord(ctx context.Context, word *models.TaskWord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO task_words (task_id, term, translation, position) VALUES ($1, $2, $3, $4)
		ON CONFLICT (task_id, term) DO UPDATE SET
			translation = EXCLUDED.translation,
			position = EXCLUDED.position`,
		word.TaskID, word.Term, word.Translation, word.Position)
	if err != nil {
		return fmt.Errorf("failed to add task word: %w", err)
	}
	return nil
}
