package tasks_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/tasks"
	"go.uber.org/zap"
)

func TestRunner_RunsJobsUntilStopped(t *testing.T) {
	var runs int32
	job := tasks.Job{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return nil
		},
	}

	r := tasks.NewRunner(zap.NewNop(), job)
	r.Start()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	got := atomic.LoadInt32(&runs)
	if got < 3 {
		t.Fatalf("expected at least 3 runs, got %d", got)
	}

	time.Sleep(20 * time.Millisecond)
	if after := atomic.LoadInt32(&runs); after != got {
		t.Errorf("job ran after Stop: %d -> %d", got, after)
	}

	// Idempotent.
	r.Stop()
}

func TestRunner_ErrorsDoNotStopJob(t *testing.T) {
	var runs int32
	job := tasks.Job{
		Name:     "flaky",
		Interval: 5 * time.Millisecond,
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&runs, 1)
			return errors.New("boom")
		},
	}

	r := tasks.NewRunner(zap.NewNop(), job)
	r.Start()
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&runs) < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()

	if atomic.LoadInt32(&runs) < 2 {
		t.Error("expected the job to keep running after an error")
	}
}

func TestRunner_SkipsInvalidJobs(t *testing.T) {
	r := tasks.NewRunner(zap.NewNop(),
		tasks.Job{Name: "no-interval", Run: func(context.Context) error { return nil }},
		tasks.Job{Name: "no-body", Interval: time.Second},
	)
	r.Start()
	r.Stop()
}
