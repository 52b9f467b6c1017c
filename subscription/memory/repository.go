package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/marcelsud/webhook-courier/subscription"
)

/* In-memory implementation of subscription.Repository
 * Used in tests and single-process deployments without Redis
 */

type Repository struct {
	mu   sync.RWMutex
	subs map[string]subscription.Subscription
}

// NewRepository creates an empty in-memory repository
func NewRepository() *Repository {
	return &Repository{
		subs: make(map[string]subscription.Subscription),
	}
}

// Store adds or replaces a subscription
func (r *Repository) Store(_ context.Context, sub subscription.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs[sub.ID] = sub
	return nil
}

// Get retrieves a subscription by id
func (r *Repository) Get(_ context.Context, id string) (subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sub, ok := r.subs[id]
	if !ok {
		return subscription.Subscription{}, subscription.ErrNotFound
	}
	return sub, nil
}

// List returns all subscriptions ordered by id
func (r *Repository) List(_ context.Context) ([]subscription.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	subs := make([]subscription.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID < subs[j].ID })
	return subs, nil
}

// Close is a no-op for the in-memory repository
func (r *Repository) Close(_ context.Context) error {
	return nil
}
