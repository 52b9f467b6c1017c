package delivery_test

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRunner counts executions and tracks peak concurrency.
type recordingRunner struct {
	mu      sync.Mutex
	runs    []delivery.Job
	current atomic.Int32
	peak    atomic.Int32
	block   time.Duration
}

func (r *recordingRunner) Run(_ context.Context, job delivery.Job) {
	cur := r.current.Add(1)
	for {
		peak := r.peak.Load()
		if cur <= peak || r.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	if r.block > 0 {
		time.Sleep(r.block)
	}
	r.mu.Lock()
	r.runs = append(r.runs, job)
	r.mu.Unlock()
	r.current.Add(-1)
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func newTestQueue(t *testing.T, runner delivery.Runner, opts ...delivery.QueueOption) *delivery.Queue {
	t.Helper()
	q := delivery.NewQueue(slog.New(slog.DiscardHandler), opts...)
	q.Start(runner)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		q.Stop(ctx)
	})
	return q
}

func TestQueue_BoundsConcurrency(t *testing.T) {
	runner := &recordingRunner{block: 20 * time.Millisecond}
	q := newTestQueue(t, runner, delivery.WithConcurrency(3))

	for i := 0; i < 12; i++ {
		q.EnqueueNow(delivery.Job{WebhookID: fmt.Sprintf("wh-%d", i), Attempt: 1})
	}

	require.Eventually(t, func() bool {
		return runner.count() == 12
	}, 3*time.Second, 5*time.Millisecond)

	assert.LessOrEqual(t, runner.peak.Load(), int32(3))
}

func TestQueue_DoesNotDropJobsBeyondBuffer(t *testing.T) {
	runner := &recordingRunner{block: time.Millisecond}
	q := newTestQueue(t, runner, delivery.WithConcurrency(1), delivery.WithBuffer(2))

	for i := 0; i < 50; i++ {
		q.EnqueueNow(delivery.Job{WebhookID: fmt.Sprintf("wh-%d", i), Attempt: 1})
	}

	require.Eventually(t, func() bool {
		return runner.count() == 50
	}, 5*time.Second, 5*time.Millisecond)
}

func TestQueue_EnqueueAfterWaitsForDelay(t *testing.T) {
	runner := &recordingRunner{}
	q := newTestQueue(t, runner, delivery.WithConcurrency(1))

	start := time.Now()
	q.EnqueueAfter(delivery.Job{WebhookID: "wh-later", Attempt: 2}, 60*time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, runner.count(), "job ran before its delay elapsed")

	require.Eventually(t, func() bool {
		return runner.count() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestQueue_SuppressesDuplicateDrivers(t *testing.T) {
	// A slow runner holds the webhook id while duplicates arrive.
	runner := &recordingRunner{block: 80 * time.Millisecond}
	q := newTestQueue(t, runner, delivery.WithConcurrency(4))

	for i := 0; i < 4; i++ {
		q.EnqueueNow(delivery.Job{WebhookID: "wh-same", Attempt: 1})
	}

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, runner.count(), "duplicate concurrent drivers were not suppressed")
}

func TestQueue_StatsReflectActivity(t *testing.T) {
	release := make(chan struct{})
	runner := runnerFunc(func(_ context.Context, _ delivery.Job) {
		<-release
	})
	q := newTestQueue(t, runner, delivery.WithConcurrency(1))

	q.EnqueueNow(delivery.Job{WebhookID: "wh-a", Attempt: 1})
	require.Eventually(t, func() bool {
		return q.Active() == 1
	}, time.Second, time.Millisecond)

	close(release)
	require.Eventually(t, func() bool {
		return q.Active() == 0 && q.Depth() == 0
	}, time.Second, time.Millisecond)
}

type runnerFunc func(context.Context, delivery.Job)

func (f runnerFunc) Run(ctx context.Context, job delivery.Job) { f(ctx, job) }
