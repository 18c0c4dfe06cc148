// Package scheduler runs the daily retention jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"ai-diet-planner/internal/logging"

	"github.com/go-co-op/gocron"
)

// Cleaner removes expired metrics and plans.
type Cleaner interface {
	CleanupMetrics() (int64, error)
	CleanupPlans(ctx context.Context) (int64, error)
}

// Scheduler runs the retention jobs once a day.
type Scheduler struct {
	cleaner   Cleaner
	scheduler *gocron.Scheduler
	at        string
}

// NewScheduler creates a scheduler running cleanup daily at the given "HH:MM" UTC.
func NewScheduler(cleaner Cleaner, at string) *Scheduler {
	return &Scheduler{
		cleaner:   cleaner,
		scheduler: gocron.NewScheduler(time.UTC),
		at:        at,
	}
}

// Start schedules the jobs and starts the scheduler in the background.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Days().At(s.at).Do(s.cleanupMetrics)
	if err != nil {
		return fmt.Errorf("failed to schedule metrics cleanup: %w", err)
	}

	_, err = s.scheduler.Every(1).Days().At(s.at).Do(s.cleanupPlans)
	if err != nil {
		return fmt.Errorf("failed to schedule plan cleanup: %w", err)
	}

	s.scheduler.StartAsync()
	logging.Info("Scheduler started", "at", s.at, "jobs", len(s.scheduler.Jobs()))
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) cleanupMetrics() {
	if _, err := s.cleaner.CleanupMetrics(); err != nil {
		logging.Error("Failed to clean up metrics", "error", err)
	}
}

func (s *Scheduler) cleanupPlans() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.cleaner.CleanupPlans(ctx); err != nil {
		logging.Error("Failed to clean up plans", "error", err)
	}
}
