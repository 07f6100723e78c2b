package scheduler

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"
	"time"

	"clickboard/tools/logger"
)

type countingRunner struct {
	runs atomic.Int32
}

func (c *countingRunner) Run(ctx context.Context) {
	c.runs.Add(1)
}

func TestSchedulerRunsImmediatelyAndOnTick(t *testing.T) {
	r := &countingRunner{}
	s := New(r, 10*time.Millisecond, logger.NewLoggerWithWriter("error", &bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)

	deadline := time.After(2 * time.Second)
	for r.runs.Load() < 3 {
		select {
		case <-deadline:
			t.Fatalf("expected at least 3 runs, got %d", r.runs.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}

	stopped := r.runs.Load()
	time.Sleep(30 * time.Millisecond)
	if r.runs.Load() != stopped {
		t.Errorf("expected no runs after stop, got %d more", r.runs.Load()-stopped)
	}
}

type slowRunner struct {
	active  atomic.Int32
	overlap atomic.Bool
	runs    atomic.Int32
}

func (s *slowRunner) Run(ctx context.Context) {
	if s.active.Add(1) > 1 {
		s.overlap.Store(true)
	}
	time.Sleep(15 * time.Millisecond)
	s.active.Add(-1)
	s.runs.Add(1)
}

func TestSchedulerNeverOverlapsRuns(t *testing.T) {
	r := &slowRunner{}
	s := New(r, time.Millisecond, logger.NewLoggerWithWriter("error", &bytes.Buffer{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	if r.overlap.Load() {
		t.Errorf("expected runs to be serialized")
	}
	if r.runs.Load() < 2 {
		t.Errorf("expected several runs, got %d", r.runs.Load())
	}
}
