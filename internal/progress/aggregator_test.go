package progress_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/progress"
	"github.com/shershah1024/luna-student-v-5-sub005/pkg/models"
)

func quizEvent(userID, taskID string, raw, max float64) models.ScoreEvent {
	return models.ScoreEvent{
		UserID:   userID,
		TaskID:   taskID,
		CourseID: "c1",
		RawScore: raw,
		MaxScore: max,
		Source:   models.SourceQuiz,
	}
}

func TestSubmitScoreCreatesCompletedRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 8, 10))
	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	assert.Equal(t, 80.0, rec.Score)
	assert.Equal(t, 1, rec.Attempts)
	assert.Equal(t, "c1", rec.CourseID)
	require.NotNil(t, rec.CompletedAt)
}

func TestSubmitScoreBelowThresholdCreatesInProgressRecord(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 5, 10))
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, 50.0, rec.Score)
	assert.Nil(t, rec.CompletedAt)
}

func TestSubmitScoreThresholdBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Exactly 70 percent completes.
	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, quizEvent("u1", "exact", 7, 10))
	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	require.NotNil(t, rec.CompletedAt)

	// 69.999 percent does not.
	rec, newlyCompleted, err = env.engine.SubmitScore(ctx, quizEvent("u1", "below", 69.999, 100))
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Nil(t, rec.CompletedAt)
}

func TestSubmitScoreMonotonicEitherOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Low then high.
	_, _, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 6, 10))
	require.NoError(t, err)
	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 9, 10))
	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	assert.Equal(t, 90.0, rec.Score)
	assert.Equal(t, 2, rec.Attempts)

	// High then low.
	_, _, err = env.engine.SubmitScore(ctx, quizEvent("u2", "t2", 9, 10))
	require.NoError(t, err)
	rec, newlyCompleted, err = env.engine.SubmitScore(ctx, quizEvent("u2", "t2", 6, 10))
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, 90.0, rec.Score)
	assert.Equal(t, 2, rec.Attempts)
}

func TestSubmitScoreConcurrentConvergesToMax(t *testing.T) {
	env := newTestEnv(t)

	raws := []float64{6, 9}
	var wg sync.WaitGroup
	for _, raw := range raws {
		wg.Add(1)
		go func(raw float64) {
			defer wg.Done()
			_, _, err := env.engine.SubmitScore(context.Background(), quizEvent("u1", "t2", raw, 10))
			assert.NoError(t, err)
		}(raw)
	}
	wg.Wait()

	rec, err := env.engine.GetCompletion(context.Background(), "u1", "t2")
	require.NoError(t, err)
	assert.Equal(t, 90.0, rec.Score)
	assert.True(t, rec.Completed())
	assert.Equal(t, 2, rec.Attempts)
}

func TestCompletedAtIsSetOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec, _, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 8, 10))
	require.NoError(t, err)
	require.NotNil(t, rec.CompletedAt)
	first := *rec.CompletedAt

	// Neither a lower nor a higher later score may move the timestamp.
	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 3, 10))
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(first))

	rec, newlyCompleted, err = env.engine.SubmitScore(ctx, quizEvent("u1", "t2", 10, 10))
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, 100.0, rec.Score)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(first))
}

func TestSubmitScoreValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		event models.ScoreEvent
	}{
		{"zero max", quizEvent("u1", "t1", 5, 0)},
		{"negative raw", quizEvent("u1", "t1", -1, 10)},
		{"raw above max", quizEvent("u1", "t1", 11, 10)},
		{"missing user", quizEvent("", "t1", 5, 10)},
		{"missing task", quizEvent("u1", "", 5, 10)},
		{"unknown source", models.ScoreEvent{
			UserID: "u1", TaskID: "t1", RawScore: 5, MaxScore: 10, Source: "karaoke",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := env.engine.SubmitScore(ctx, tc.event)
			assert.ErrorIs(t, err, progress.ErrInvalidInput)
		})
	}

	// Nothing may have been written by rejected events.
	_, err := env.engine.GetCompletion(ctx, "u1", "t1")
	assert.ErrorIs(t, err, progress.ErrNotFound)
}

func TestMasteryBelowThresholdStaysInProgress(t *testing.T) {
	env := newTestEnv(t)
	env.seedTask(t, "t1", "c1", "haus", "baum", "auto")
	ctx := context.Background()

	_, _, err := env.engine.Initialize(ctx, "u1", "t1")
	require.NoError(t, err)
	env.masterN(t, "u1", "t1", 1)

	rec, newlyCompleted, err := env.engine.RecomputeMastery(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.InDelta(t, 100.0/3.0, rec.Score, 1e-9)
	assert.Nil(t, rec.CompletedAt)
	assert.Equal(t, "c1", rec.CourseID)
}

func TestMasteryThresholdBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Exactly 0.80 mastered completes.
	env.seedTask(t, "t-at", "c1", "a", "b", "c", "d", "e")
	_, _, err := env.engine.Initialize(ctx, "u1", "t-at")
	require.NoError(t, err)
	env.masterN(t, "u1", "t-at", 4)

	rec, newlyCompleted, err := env.engine.RecomputeMastery(ctx, "u1", "t-at")
	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	assert.Equal(t, 80.0, rec.Score)
	require.NotNil(t, rec.CompletedAt)

	// 0.75 mastered does not.
	env.seedTask(t, "t-under", "c1", "a", "b", "c", "d")
	_, _, err = env.engine.Initialize(ctx, "u1", "t-under")
	require.NoError(t, err)
	env.masterN(t, "u1", "t-under", 3)

	rec, newlyCompleted, err = env.engine.RecomputeMastery(ctx, "u1", "t-under")
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, 75.0, rec.Score)
	assert.Nil(t, rec.CompletedAt)
}

func TestMasteryWithoutItemsIsNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.engine.RecomputeMastery(context.Background(), "u1", "t1")
	assert.ErrorIs(t, err, progress.ErrNotFound)
}

func TestVocabularyMasterySourceRecomputesFromItems(t *testing.T) {
	env := newTestEnv(t)
	env.seedTask(t, "t1", "c1", "haus", "baum")
	ctx := context.Background()

	_, _, err := env.engine.Initialize(ctx, "u1", "t1")
	require.NoError(t, err)
	env.masterN(t, "u1", "t1", 2)

	// The carried raw/max pair is ignored; the item distribution decides.
	rec, newlyCompleted, err := env.engine.SubmitScore(ctx, models.ScoreEvent{
		UserID:   "u1",
		TaskID:   "t1",
		RawScore: 1,
		MaxScore: 2,
		Source:   models.SourceVocabularyMastery,
	})
	require.NoError(t, err)
	assert.True(t, newlyCompleted)
	assert.Equal(t, 100.0, rec.Score)
	assert.Equal(t, "c1", rec.CourseID, "course resolved from the content store")
}

func TestMasteryCompletionIsTerminalState(t *testing.T) {
	env := newTestEnv(t)
	env.seedTask(t, "t1", "c1", "a", "b", "c", "d", "e")
	ctx := context.Background()

	_, _, err := env.engine.Initialize(ctx, "u1", "t1")
	require.NoError(t, err)
	env.masterN(t, "u1", "t1", 5)

	rec, _, err := env.engine.RecomputeMastery(ctx, "u1", "t1")
	require.NoError(t, err)
	require.NotNil(t, rec.CompletedAt)
	first := *rec.CompletedAt
	assert.Equal(t, 100.0, rec.Score)

	// Demoting items afterwards lowers the fraction but neither regresses
	// the stored score nor clears the completion.
	items, err := env.items.GetByUserAndTask(ctx, "u1", "t1")
	require.NoError(t, err)
	for _, item := range items[:3] {
		require.NoError(t, env.items.UpdateStatus(ctx, item.ID, "u1", models.StatusReviewing))
	}

	rec, newlyCompleted, err := env.engine.RecomputeMastery(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.False(t, newlyCompleted)
	assert.Equal(t, 100.0, rec.Score)
	require.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.CompletedAt.Equal(first))
}
