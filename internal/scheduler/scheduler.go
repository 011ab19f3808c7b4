package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/shershah1024/luna-student-v-5-sub005/internal/progress"
)

// Scheduler runs the engine's background maintenance jobs: the completion
// repair sweep and the definition backfill. Both are idempotent, so an
// overlapping or retried run is harmless.
type Scheduler struct {
	scheduler *gocron.Scheduler
	engine    *progress.Service
	logger    *slog.Logger
	interval  time.Duration
}

// New creates a scheduler instance.
func New(engine *progress.Service, logger *slog.Logger, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		engine:    engine,
		logger:    logger,
		interval:  interval,
	}
}

// Start begins running all scheduled tasks.
func (s *Scheduler) Start() {
	s.scheduler.Every(s.interval).Do(s.reconcile)
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// reconcile repairs completion records and fills in missing definitions.
func (s *Scheduler) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), s.interval)
	defer cancel()

	completed, err := s.engine.ReconcileCompletions(ctx)
	if err != nil {
		s.logger.Error("completion reconcile failed", "error", err)
	} else if completed > 0 {
		s.logger.Info("completion reconcile repaired records", "completed", completed)
	}

	filled, err := s.engine.BackfillDefinitions(ctx)
	if err != nil {
		s.logger.Error("definition backfill failed", "error", err)
	} else if filled > 0 {
		s.logger.Info("definition backfill filled items", "items", filled)
	}
}

// RunNow forces one immediate maintenance pass, used at startup so a crashed
// process repairs its state without waiting for the first tick.
func (s *Scheduler) RunNow() {
	s.reconcile()
}
