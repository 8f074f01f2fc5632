package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"truview/internal/adapters/observability"
)

// JobFunc handles one review id. It must not panic past its own recover.
type JobFunc func(ctx context.Context, id string)

// Runner is a bounded background worker pool. Submit never blocks the caller;
// a full queue drops the job (the review stays translatable on demand).
type Runner struct {
	job     JobFunc
	workers int
	timeout time.Duration
	queue   chan string

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewRunner(job JobFunc, workers, queueSize int, timeout time.Duration) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if queueSize < 0 {
		queueSize = 0
	}
	return &Runner{job: job, workers: workers, timeout: timeout, queue: make(chan string, queueSize)}
}

// Start launches the workers. Jobs derive their context from base.
func (r *Runner) Start(base context.Context) {
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go func(worker int) {
			defer r.wg.Done()
			for id := range r.queue {
				r.run(base, worker, id)
			}
		}(i)
	}
	log.Info().Int("workers", r.workers).Int("queue", cap(r.queue)).Msg("translation runner started")
}

func (r *Runner) run(base context.Context, worker int, id string) {
	ctx, cancel := base, context.CancelFunc(func() {})
	if r.timeout > 0 {
		ctx, cancel = context.WithTimeout(base, r.timeout)
	}
	defer cancel()

	observability.JobStarted()
	defer observability.JobFinished()
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Int("worker", worker).Str("review_id", id).Interface("panic", rec).Msg("translation job crashed")
		}
	}()

	start := time.Now()
	log.Debug().Int("worker", worker).Str("review_id", id).Msg("translation job started")
	r.job(ctx, id)
	log.Debug().Int("worker", worker).Str("review_id", id).Dur("elapsed", time.Since(start)).Msg("translation job finished")
}

// Submit enqueues id and reports whether it was accepted.
func (r *Runner) Submit(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		log.Warn().Str("review_id", id).Msg("translation runner stopped; job dropped")
		observability.ObserveJob("dropped")
		return false
	}
	select {
	case r.queue <- id:
		return true
	default:
		log.Warn().Str("review_id", id).Msg("translation queue full; job dropped")
		observability.ObserveJob("dropped")
		return false
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or ctx to end.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info().Msg("translation runner drained")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
