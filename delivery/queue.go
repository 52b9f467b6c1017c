package delivery

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job is one unit of work for the queue: drive the given attempt of a
// webhook delivery.
type Job struct {
	WebhookID string
	Attempt   int
}

// Runner executes a single job. Implemented by the Orchestrator.
type Runner interface {
	Run(ctx context.Context, job Job)
}

/* Queue admits delivery jobs and retry continuations, decoupling
 * ingestion from execution. A bounded pool of workers limits the number
 * of concurrently attempting deliveries; waiting jobs are never dropped.
 * Backoff delays are driven by timers, so no worker slot is held idle
 * across a multi-minute wait.
 */
type Queue struct {
	jobs        chan Job
	concurrency int
	logger      *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc

	// Guard against duplicate concurrent drivers for one webhook id,
	// e.g. a crash-recovery re-enqueue racing an in-progress worker.
	active   map[string]struct{}
	activeMu sync.Mutex
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithConcurrency sets the number of concurrent worker goroutines.
func WithConcurrency(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.concurrency = n
		}
	}
}

// WithBuffer sets the capacity of the job channel.
func WithBuffer(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.jobs = make(chan Job, n)
		}
	}
}

// NewQueue creates a dispatch queue.
func NewQueue(logger *slog.Logger, opts ...QueueOption) *Queue {
	q := &Queue{
		jobs:        make(chan Job, 256),
		concurrency: 8,
		logger:      logger,
		stopCh:      make(chan struct{}),
		active:      make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker goroutines. It returns immediately.
func (q *Queue) Start(runner Runner) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running {
		return
	}
	q.running = true

	ctx, cancel := context.WithCancel(context.Background())
	q.cancel = cancel

	q.logger.Info("dispatch queue starting", slog.Int("concurrency", q.concurrency))

	for i := 0; i < q.concurrency; i++ {
		q.wg.Add(1)
		go q.workerLoop(ctx, runner)
	}
}

// Stop signals all workers to stop and waits for in-flight attempts to
// finish. If the context deadline expires first, running attempts are
// cancelled.
func (q *Queue) Stop(ctx context.Context) {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.mu.Unlock()

	close(q.stopCh)

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("dispatch queue stopped gracefully")
	case <-ctx.Done():
		q.logger.Warn("dispatch queue shutdown timed out, cancelling active attempts")
		q.cancel()
		q.wg.Wait()
	}
	q.cancel()
}

// EnqueueNow admits a job without blocking the caller. When the buffer
// is full the hand-off continues in the background; jobs wait, they are
// not dropped.
func (q *Queue) EnqueueNow(job Job) {
	select {
	case q.jobs <- job:
	default:
		go func() {
			select {
			case q.jobs <- job:
			case <-q.stopCh:
			}
		}()
	}
}

// EnqueueAfter admits a job once the delay has elapsed. The wait is
// timer-driven and holds no worker slot.
func (q *Queue) EnqueueAfter(job Job, delay time.Duration) {
	time.AfterFunc(delay, func() {
		select {
		case <-q.stopCh:
		default:
			q.EnqueueNow(job)
		}
	})
}

// Depth returns the number of jobs waiting in the buffer.
func (q *Queue) Depth() int {
	return len(q.jobs)
}

// Active returns the number of webhooks currently being driven.
func (q *Queue) Active() int {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	return len(q.active)
}

func (q *Queue) workerLoop(ctx context.Context, runner Runner) {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopCh:
			return
		case job := <-q.jobs:
			q.process(ctx, runner, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, runner Runner, job Job) {
	if !q.admit(job.WebhookID) {
		q.logger.Warn("duplicate dispatch suppressed",
			slog.String("webhook_id", job.WebhookID),
			slog.Int("attempt", job.Attempt),
		)
		return
	}
	defer q.release(job.WebhookID)

	runner.Run(ctx, job)
}

func (q *Queue) admit(webhookID string) bool {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	if _, busy := q.active[webhookID]; busy {
		return false
	}
	q.active[webhookID] = struct{}{}
	return true
}

func (q *Queue) release(webhookID string) {
	q.activeMu.Lock()
	defer q.activeMu.Unlock()
	delete(q.active, webhookID)
}
