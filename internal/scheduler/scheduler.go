// Package scheduler drives the periodic allocation passes and the stale
// pending-team sweep.
package scheduler

import (
	"context"
	"time"

	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/models"
)

// Runner is the slice of the team service the scheduler drives.
type Runner interface {
	RunAllocationPass(ctx context.Context) ([]models.TeamInfo, error)
	ExpireStalePending(ctx context.Context) (int, error)
}

// Scheduler ticks on a single goroutine, so runs never overlap: a slow pass
// simply delays the next tick's work.
type Scheduler struct {
	runner   Runner
	log      *logger.Logger
	interval time.Duration

	// Short grace period before the first run, so the process finishes
	// starting up before it forms teams.
	initialDelay time.Duration
}

func New(runner Runner, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		runner:       runner,
		log:          log,
		interval:     interval,
		initialDelay: time.Minute,
	}
}

// Start blocks until ctx is cancelled. Run it in its own goroutine.
func (s *Scheduler) Start(ctx context.Context) {
	s.log.Info("scheduler started", "interval", s.interval, "initial_delay", s.initialDelay)

	timer := time.NewTimer(s.initialDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	expired, err := s.runner.ExpireStalePending(ctx)
	if err != nil {
		s.log.Error("stale team sweep failed", "error", err)
	} else if expired > 0 {
		s.log.Info("stale teams swept", "dissolved", expired)
	}

	created, err := s.runner.RunAllocationPass(ctx)
	if err != nil {
		s.log.Error("scheduled allocation pass failed", "error", err)
		return
	}
	if len(created) > 0 {
		s.log.Info("scheduled pass formed teams", "teams", len(created))
	}
}
