// internal/app/system/tasks/runner.go
package tasks

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/venuehub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Job is a named piece of periodic maintenance.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner runs each registered job on its own ticker until Stop.
type Runner struct {
	jobs   []Job
	log    *zap.Logger
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

// NewRunner creates a runner for jobs. Jobs with a non-positive interval are skipped.
func NewRunner(logger *zap.Logger, jobs ...Job) *Runner {
	keep := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Interval <= 0 || j.Run == nil {
			logger.Warn("skipping job without interval or body", zap.String("job", j.Name))
			continue
		}
		keep = append(keep, j)
	}
	return &Runner{jobs: keep, log: logger, stopCh: make(chan struct{})}
}

// Start launches one goroutine per job.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.loop(j)
		r.log.Info("background job started",
			zap.String("job", j.Name),
			zap.Duration("interval", j.Interval))
	}
}

// Stop signals every job to stop and waits for in-flight runs to finish.
// Calling Stop more than once is safe.
func (r *Runner) Stop() {
	r.once.Do(func() { close(r.stopCh) })
	r.wg.Wait()
}

func (r *Runner) loop(j Job) {
	defer r.wg.Done()

	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.runOnce(j)
		}
	}
}

func (r *Runner) runOnce(j Job) {
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Long(), r.log, j.Name)
	defer cancel()

	if err := j.Run(ctx); err != nil {
		r.log.Error("background job failed", zap.String("job", j.Name), zap.Error(err))
	}
}
