package memory

import (
	"context"
	"sync"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
)

/* In-memory implementation of delivery.Repository
 * Used in tests and single-process deployments without Redis
 */

type Repository struct {
	mu         sync.RWMutex
	deliveries map[string]delivery.Delivery
	attempts   map[string][]delivery.Attempt
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		deliveries: make(map[string]delivery.Delivery),
		attempts:   make(map[string][]delivery.Attempt),
	}
}

// Save persists a new delivery record
func (r *Repository) Save(_ context.Context, d delivery.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries[d.WebhookID] = d
	return nil
}

// Get retrieves a delivery by webhook id
func (r *Repository) Get(_ context.Context, webhookID string) (delivery.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deliveries[webhookID]
	if !ok {
		return delivery.Delivery{}, delivery.ErrNotFound
	}
	return d, nil
}

// UpdateStatus updates the status of a delivery
func (r *Repository) UpdateStatus(_ context.Context, webhookID string, status delivery.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deliveries[webhookID]
	if !ok {
		return delivery.ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now()
	r.deliveries[webhookID] = d
	return nil
}

// AppendAttempt appends one attempt record to the webhook's log
func (r *Repository) AppendAttempt(_ context.Context, a delivery.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[a.WebhookID] = append(r.attempts[a.WebhookID], a)
	return nil
}

// ListAttempts returns the attempt log ordered by attempt number
func (r *Repository) ListAttempts(_ context.Context, webhookID string) ([]delivery.Attempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	attempts := r.attempts[webhookID]
	out := make([]delivery.Attempt, len(attempts))
	copy(out, attempts)
	return out, nil
}

// ListUnfinished returns deliveries whose status is non-terminal
func (r *Repository) ListUnfinished(_ context.Context) ([]delivery.Delivery, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []delivery.Delivery
	for _, d := range r.deliveries {
		if !d.Status.IsFinal() {
			out = append(out, d)
		}
	}
	return out, nil
}

// CountByStatus returns the number of deliveries per status name
func (r *Repository) CountByStatus(_ context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[string]int64)
	for _, d := range r.deliveries {
		counts[d.Status.String()]++
	}
	return counts, nil
}

// Close is a no-op for the in-memory repository
func (r *Repository) Close(_ context.Context) error {
	return nil
}
