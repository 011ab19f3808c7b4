package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// Service is the progress and completion tracking engine. It owns the
// learning_items and completions tables; route handlers only submit events
// through it and read the results back. All coordination between concurrent
// callers happens through the store's unique constraints, so the service is
// safe behind any number of server processes.
type Service struct {
	items       *database.ItemRepository
	completions *database.CompletionRepository
	tasks       *database.TaskRepository
	logger      *slog.Logger
}

// New creates a Service with the given dependencies.
func New(items *database.ItemRepository, completions *database.CompletionRepository, tasks *database.TaskRepository, logger *slog.Logger) *Service {
	return &Service{
		items:       items,
		completions: completions,
		tasks:       tasks,
		logger:      logger,
	}
}

// Initialize creates the full learning-item set for a (user, task) pair
// exactly once. Repeat calls, sequential or concurrent, return the existing
// set with created=false. Returns ErrNotFound when the task has no canonical
// word list.
func (s *Service) Initialize(ctx context.Context, userID, taskID string) ([]models.LearningItem, bool, error) {
	if userID == "" || taskID == "" {
		return nil, false, invalidf("user_id and task_id are required")
	}

	existing, err := s.items.GetByUserAndTask(ctx, userID, taskID)
	if err != nil {
		return nil, false, err
	}
	if len(existing) > 0 {
		return existing, false, nil
	}

	words, err := s.tasks.GetWordList(ctx, taskID)
	if err != nil {
		return nil, false, err
	}
	if len(words) == 0 {
		return nil, false, fmt.Errorf("%w: task %s has no word list", ErrNotFound, taskID)
	}

	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = w.Term
	}

	if err := s.items.BulkCreate(ctx, userID, taskID, terms); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, false, err
		}
		// A concurrent caller won the insert race; their item set is the
		// one true initialization and this call degrades to a read.
		s.logger.Info("initialization race recovered", "user_id", userID, "task_id", taskID)
		items, rerr := s.items.GetByUserAndTask(ctx, userID, taskID)
		if rerr != nil {
			return nil, false, rerr
		}
		return items, false, nil
	}

	items, err := s.items.GetByUserAndTask(ctx, userID, taskID)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// UpdateItemStatus overwrites the mastery status of one item after checking
// that the caller owns it. Any status may move to any other status, including
// backward, so a grading mistake can be corrected. Returns the updated item
// and the status it had before.
func (s *Service) UpdateItemStatus(ctx context.Context, itemID int64, userID string, status models.MasteryStatus) (*models.LearningItem, models.MasteryStatus, error) {
	if userID == "" {
		return nil, 0, invalidf("user_id is required")
	}
	if !status.Valid() {
		return nil, 0, invalidf("status %d is out of range 0..5", status)
	}

	item, err := s.items.GetByIDForUser(ctx, itemID, userID)
	if err != nil {
		return nil, 0, err
	}
	previous := item.Status

	if err := s.items.UpdateStatus(ctx, itemID, userID, status); err != nil {
		return nil, 0, err
	}
	item.Status = status
	return item, previous, nil
}

// GetCompletion returns the completion record for a (user, task) pair, or
// ErrNotFound when no event has been recorded yet.
func (s *Service) GetCompletion(ctx context.Context, userID, taskID string) (*models.Completion, error) {
	if userID == "" || taskID == "" {
		return nil, invalidf("user_id and task_id are required")
	}
	return s.completions.Get(ctx, userID, taskID)
}

// TaskProgress summarizes a user's standing within one task.
type TaskProgress struct {
	UserID           string             `json:"user_id"`
	TaskID           string             `json:"task_id"`
	TotalItems       int                `json:"total_items"`
	MasteredItems    int                `json:"mastered_items"`
	MasteredFraction float64            `json:"mastered_fraction"`
	StatusCounts     map[string]int     `json:"status_counts"`
	Completion       *models.Completion `json:"completion,omitempty"`
}

// GetTaskProgress derives progress metrics from the item distribution and the
// completion record. Returns ErrNotFound when the pair has no items.
func (s *Service) GetTaskProgress(ctx context.Context, userID, taskID string) (*TaskProgress, error) {
	if userID == "" || taskID == "" {
		return nil, invalidf("user_id and task_id are required")
	}

	counts, total, err := s.items.StatusCounts(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, fmt.Errorf("%w: no learning items for user %s task %s", ErrNotFound, userID, taskID)
	}

	named := make(map[string]int, len(counts))
	for status, n := range counts {
		named[status.String()] = n
	}
	mastered := counts[models.StatusMastered]

	p := &TaskProgress{
		UserID:           userID,
		TaskID:           taskID,
		TotalItems:       total,
		MasteredItems:    mastered,
		MasteredFraction: float64(mastered) / float64(total),
		StatusCounts:     named,
	}

	completion, err := s.completions.Get(ctx, userID, taskID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	p.Completion = completion
	return p, nil
}

// ReconcileCompletions recomputes vocabulary mastery for every (user, task)
// pair that has items but no completed record. It repairs completions lost to
// failures between a status write and the aggregation write. Sweep-driven
// recomputes do not count as attempts. Returns how many pairs became
// completed.
func (s *Service) ReconcileCompletions(ctx context.Context) (int, error) {
	pairs, err := s.items.PairsPendingCompletion(ctx)
	if err != nil {
		return 0, err
	}

	completed := 0
	for _, pair := range pairs {
		_, newlyCompleted, err := s.recomputeMastery(ctx, pair.UserID, pair.TaskID, 0)
		if err != nil {
			s.logger.Error("reconcile failed for pair", "user_id", pair.UserID, "task_id", pair.TaskID, "error", err)
			continue
		}
		if newlyCompleted {
			completed++
		}
	}
	return completed, nil
}

// BackfillDefinitions fills item definitions from imported word lists.
func (s *Service) BackfillDefinitions(ctx context.Context) (int64, error) {
	return s.items.BackfillDefinitions(ctx)
}
