package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teammatch/internal/logger"
	"github.com/nikhil/teammatch/internal/models"
)

type countingRunner struct {
	passes int32
	sweeps int32
}

func (r *countingRunner) RunAllocationPass(ctx context.Context) ([]models.TeamInfo, error) {
	atomic.AddInt32(&r.passes, 1)
	return nil, nil
}

func (r *countingRunner) ExpireStalePending(ctx context.Context) (int, error) {
	atomic.AddInt32(&r.sweeps, 1)
	return 0, nil
}

func TestSchedulerRunsSweepAndPassEachTick(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, 20*time.Millisecond, logger.NewLogger("scheduler-test"))
	s.initialDelay = 5 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&runner.passes) >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}

	assert.Equal(t, atomic.LoadInt32(&runner.passes), atomic.LoadInt32(&runner.sweeps))
}

func TestSchedulerStopsDuringInitialDelay(t *testing.T) {
	runner := &countingRunner{}
	s := New(runner, time.Hour, logger.NewLogger("scheduler-test"))
	s.initialDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop on cancel")
	}
	assert.Zero(t, atomic.LoadInt32(&runner.passes))
}
