package metrics

import (
	"context"
	"fmt"
	"time"
)

// StatusCounter is the slice of the delivery repository the collector
// needs: counts of deliveries per status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

// QueueStats is the slice of the dispatch queue the collector needs.
type QueueStats interface {
	Depth() int
	Active() int
}

// EngineCollector implements Collector over the delivery repository and
// the dispatch queue.
type EngineCollector struct {
	repo  StatusCounter
	queue QueueStats
}

// NewEngineCollector creates a new engine metrics collector
func NewEngineCollector(repo StatusCounter, queue QueueStats) *EngineCollector {
	return &EngineCollector{
		repo:  repo,
		queue: queue,
	}
}

// Collect gathers all metrics from the engine
func (c *EngineCollector) Collect(ctx context.Context) (Metrics, error) {
	statusCounts, err := c.GetStatusCounts(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting status counts: %w", err)
	}

	depth, err := c.GetQueueDepth(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting queue depth: %w", err)
	}

	active, err := c.GetActiveDeliveries(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("getting active deliveries: %w", err)
	}

	return Metrics{
		StatusCounts:     statusCounts,
		QueueDepth:       depth,
		ActiveDeliveries: active,
		Timestamp:        time.Now(),
	}, nil
}

// GetStatusCounts returns the count of deliveries by status
func (c *EngineCollector) GetStatusCounts(ctx context.Context) (map[string]int64, error) {
	return c.repo.CountByStatus(ctx)
}

// GetQueueDepth returns the number of jobs waiting in the queue
func (c *EngineCollector) GetQueueDepth(_ context.Context) (int64, error) {
	return int64(c.queue.Depth()), nil
}

// GetActiveDeliveries returns the number of in-flight attempts
func (c *EngineCollector) GetActiveDeliveries(_ context.Context) (int64, error) {
	return int64(c.queue.Active()), nil
}
