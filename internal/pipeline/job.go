package pipeline

import (
	"context"
	"sync"
	"time"
)

// Job re-runs the pipeline on a fixed cadence for daemon mode. One-shot
// invocations driven by an external scheduler call Pipeline.Run directly.
type Job struct {
	pipeline *Pipeline

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJob creates a Job that re-runs the pipeline on a ticker. The job is idle
// until Start is called.
func NewJob(pipeline *Pipeline) *Job {
	return &Job{pipeline: pipeline}
}

// Start stops any previously running job, then launches a background
// goroutine that runs the pipeline every interval. If interval is zero or
// negative it defaults to 24 hours. The goroutine exits when ctx is cancelled
// or Stop is called. Run errors are already logged and reported by the
// pipeline itself, so the job only keeps the cadence.
func (j *Job) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	j.Stop()

	j.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.wg.Add(1)
	j.mu.Unlock()

	go func() {
		defer j.wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				_, _ = j.pipeline.Run(jobCtx)
			}
		}
	}()
}

// Stop cancels the background goroutine's context and blocks until it has
// fully exited. Safe to call when the job is not running.
func (j *Job) Stop() {
	j.mu.Lock()
	cancel := j.cancel
	j.cancel = nil
	j.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	j.wg.Wait()
}
