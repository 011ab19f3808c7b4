package progress

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/database"
	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

// The two completion thresholds are intentionally separate values: direct
// score events complete at 70 percent, vocabulary mastery at 80 percent of
// the item set. They are not interchangeable.
const (
	// ScoreCompletionThreshold is the minimum percentage for a quiz,
	// reading or listening result to complete a task.
	ScoreCompletionThreshold = 70.0

	// MasteryCompletionThreshold is the minimum fraction of mastered items
	// for vocabulary work to complete a task.
	MasteryCompletionThreshold = 0.80
)

// SubmitScore validates a score event and folds it into the completion record
// for its (user, task) pair. Quiz, reading and listening events carry their
// percentage directly; vocabulary_mastery events trigger a recompute from the
// stored item distribution instead, since the items are authoritative for
// vocabulary. Returns the resulting record and whether this event moved it
// from in-progress to completed.
func (s *Service) SubmitScore(ctx context.Context, event models.ScoreEvent) (*models.Completion, bool, error) {
	if event.UserID == "" || event.TaskID == "" {
		return nil, false, invalidf("user_id and task_id are required")
	}
	if !event.Source.Valid() {
		return nil, false, invalidf("unknown score source %q", event.Source)
	}
	if event.MaxScore <= 0 {
		return nil, false, invalidf("max_score must be positive, got %g", event.MaxScore)
	}
	if event.RawScore < 0 || event.RawScore > event.MaxScore {
		return nil, false, invalidf("raw_score %g is outside 0..%g", event.RawScore, event.MaxScore)
	}

	if event.Source == models.SourceVocabularyMastery {
		return s.recomputeMastery(ctx, event.UserID, event.TaskID, 1)
	}

	percentage := event.Percentage()
	completes := percentage >= ScoreCompletionThreshold
	return s.applyCompletion(ctx, event.UserID, event.TaskID, event.CourseID, percentage, completes, 1)
}

// RecomputeMastery re-derives the vocabulary completion for a (user, task)
// pair from its current item distribution. Callers use it after a status
// change crosses the mastered boundary.
func (s *Service) RecomputeMastery(ctx context.Context, userID, taskID string) (*models.Completion, bool, error) {
	if userID == "" || taskID == "" {
		return nil, false, invalidf("user_id and task_id are required")
	}
	return s.recomputeMastery(ctx, userID, taskID, 1)
}

func (s *Service) recomputeMastery(ctx context.Context, userID, taskID string, attemptDelta int) (*models.Completion, bool, error) {
	counts, total, err := s.items.StatusCounts(ctx, userID, taskID)
	if err != nil {
		return nil, false, err
	}
	if total == 0 {
		return nil, false, fmt.Errorf("%w: no learning items for user %s task %s", ErrNotFound, userID, taskID)
	}

	fraction := float64(counts[models.StatusMastered]) / float64(total)
	percentage := fraction * 100
	completes := fraction >= MasteryCompletionThreshold

	courseID := ""
	task, err := s.tasks.Get(ctx, taskID)
	if err == nil {
		courseID = task.CourseID
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}

	return s.applyCompletion(ctx, userID, taskID, courseID, percentage, completes, attemptDelta)
}

// applyCompletion is the single upsert path shared by both aggregation modes:
// read the existing record, create it when absent, otherwise apply one atomic
// monotonic update. A unique-constraint race on creation degrades into the
// update path, so two concurrent first events converge on one row with the
// higher score.
func (s *Service) applyCompletion(ctx context.Context, userID, taskID, courseID string, percentage float64, completes bool, attemptDelta int) (*models.Completion, bool, error) {
	now := time.Now().UTC()

	before, err := s.completions.Get(ctx, userID, taskID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, false, err
	}

	if before == nil {
		var completedAt *time.Time
		if completes {
			completedAt = &now
		}
		err := s.completions.Create(ctx, userID, taskID, courseID, percentage, completedAt)
		if err == nil {
			record, rerr := s.completions.Get(ctx, userID, taskID)
			if rerr != nil {
				return nil, false, rerr
			}
			return record, completes, nil
		}
		if !database.IsUniqueViolation(err) {
			return nil, false, err
		}
		// Lost the creation race; re-read the winner and fall through to
		// the update path with its state as the baseline.
		s.logger.Info("completion race recovered", "user_id", userID, "task_id", taskID)
		before, err = s.completions.Get(ctx, userID, taskID)
		if err != nil {
			return nil, false, err
		}
	}

	wasCompleted := before.Completed()
	if err := s.completions.ApplyEvent(ctx, userID, taskID, percentage, completes, now, attemptDelta); err != nil {
		return nil, false, err
	}

	after, err := s.completions.Get(ctx, userID, taskID)
	if err != nil {
		return nil, false, err
	}
	return after, after.Completed() && !wasCompleted, nil
}
