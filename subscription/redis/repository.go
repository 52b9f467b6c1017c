package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-courier/subscription"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of subscription.Repository
 * Uses Redis Hashes for subscription storage and a Set for the index
 */

const (
	hashPrefix = "subscription" // Hash naming: subscription:{id}
	indexKey   = "subscriptions"
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository around an existing client
func NewRepository(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Store writes the subscription hash and registers it in the index
func (r *Repository) Store(ctx context.Context, sub subscription.Subscription) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, sub.ID)

	err := r.client.HSet(ctx, hashKey, map[string]interface{}{
		"id":         sub.ID,
		"target_url": sub.TargetURL,
		"secret":     sub.Secret,
		"created_at": sub.CreatedAt.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing subscription: %w", err)
	}

	if err := r.client.SAdd(ctx, indexKey, sub.ID).Err(); err != nil {
		return fmt.Errorf("indexing subscription: %w", err)
	}

	return nil
}

// Get retrieves a subscription by id
func (r *Repository) Get(ctx context.Context, id string) (subscription.Subscription, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, id)

	data, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return subscription.Subscription{}, fmt.Errorf("getting subscription: %w", err)
	}
	if len(data) == 0 {
		return subscription.Subscription{}, subscription.ErrNotFound
	}

	return subscriptionFromHash(data), nil
}

// List returns all indexed subscriptions
func (r *Repository) List(ctx context.Context) ([]subscription.Subscription, error) {
	ids, err := r.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing subscription ids: %w", err)
	}

	subs := make([]subscription.Subscription, 0, len(ids))
	for _, id := range ids {
		sub, err := r.Get(ctx, id)
		if err == subscription.ErrNotFound {
			// Index can lag behind deleted hashes
			continue
		}
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, nil
}

// Close closes the underlying Redis client
func (r *Repository) Close(_ context.Context) error {
	return r.client.Close()
}

func subscriptionFromHash(data map[string]string) subscription.Subscription {
	return subscription.Subscription{
		ID:        data["id"],
		TargetURL: data["target_url"],
		Secret:    data["secret"],
		CreatedAt: time.Unix(parseInt64(data["created_at"]), 0),
	}
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
