package metrics

import (
	"context"
	"time"
)

// Metrics represents the current state of the delivery engine.
type Metrics struct {
	// StatusCounts maps status name to count of deliveries in that status
	StatusCounts map[string]int64 `json:"status_counts"`

	// QueueDepth is the number of jobs waiting in the dispatch queue
	QueueDepth int64 `json:"queue_depth"`

	// ActiveDeliveries is the number of webhooks currently being attempted
	ActiveDeliveries int64 `json:"active_deliveries"`

	// Timestamp when metrics were collected
	Timestamp time.Time `json:"timestamp"`
}

// Collector defines the interface for collecting metrics from the
// delivery engine.
type Collector interface {
	// Collect gathers current metrics from the system
	Collect(ctx context.Context) (Metrics, error)

	// GetStatusCounts returns the count of deliveries by status
	GetStatusCounts(ctx context.Context) (map[string]int64, error)

	// GetQueueDepth returns the number of jobs waiting in the queue
	GetQueueDepth(ctx context.Context) (int64, error)

	// GetActiveDeliveries returns the number of in-flight attempts
	GetActiveDeliveries(ctx context.Context) (int64, error)
}
