package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-courier/delivery"
	"github.com/redis/go-redis/v9"
)

/* Redis implementation of delivery.Repository
 * Uses Redis Hashes for delivery state, Lists for the append-only
 * attempt log, and Sets to index unfinished deliveries for recovery
 */

const (
	hashPrefix    = "delivery"              // Hash naming: delivery:{webhook_id}
	attemptSuffix = "attempts"              // List naming: delivery:{webhook_id}:attempts
	unfinishedKey = "deliveries:unfinished" // Set of non-terminal webhook ids
	countsKey     = "deliveries:status_counts"
)

type Repository struct {
	client *redis.Client
}

// NewRepository creates a new Redis repository
func NewRepository(addr, password string, db int) (*Repository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to Redis: %w", err)
	}

	return &Repository{client: client}, nil
}

// NewRepositoryWithClient wraps an existing client, sharing a
// connection pool with other adapters.
func NewRepositoryWithClient(client *redis.Client) *Repository {
	return &Repository{client: client}
}

// Client exposes the underlying client for adapters that share it.
func (r *Repository) Client() *redis.Client {
	return r.client
}

// attemptRecord is the wire form of an Attempt in the Redis list
type attemptRecord struct {
	WebhookID      string `json:"webhook_id"`
	SubscriptionID string `json:"subscription_id"`
	TargetURL      string `json:"target_url"`
	AttemptNumber  int    `json:"attempt_number"`
	Success        bool   `json:"success"`
	StatusCode     int    `json:"status_code,omitempty"`
	Error          string `json:"error,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// Save persists a new delivery and indexes it as unfinished
func (r *Repository) Save(ctx context.Context, d delivery.Delivery) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, d.WebhookID)

	err := r.client.HSet(ctx, hashKey, map[string]interface{}{
		"webhook_id":      d.WebhookID,
		"subscription_id": d.SubscriptionID,
		"payload":         d.Payload,
		"status":          d.Status.String(),
		"created_at":      d.CreatedAt.Unix(),
		"updated_at":      d.UpdatedAt.Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("storing delivery: %w", err)
	}

	if err := r.client.SAdd(ctx, unfinishedKey, d.WebhookID).Err(); err != nil {
		return fmt.Errorf("indexing unfinished delivery: %w", err)
	}

	if err := r.client.HIncrBy(ctx, countsKey, d.Status.String(), 1).Err(); err != nil {
		return fmt.Errorf("counting delivery status: %w", err)
	}

	return nil
}

// Get retrieves a delivery by webhook id
func (r *Repository) Get(ctx context.Context, webhookID string) (delivery.Delivery, error) {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, webhookID)

	data, err := r.client.HGetAll(ctx, hashKey).Result()
	if err != nil {
		return delivery.Delivery{}, fmt.Errorf("getting delivery: %w", err)
	}
	if len(data) == 0 {
		return delivery.Delivery{}, delivery.ErrNotFound
	}

	return delivery.Delivery{
		WebhookID:      data["webhook_id"],
		SubscriptionID: data["subscription_id"],
		Payload:        []byte(data["payload"]),
		Status:         delivery.NewStatus(data["status"]),
		CreatedAt:      time.Unix(parseInt64(data["created_at"]), 0),
		UpdatedAt:      time.Unix(parseInt64(data["updated_at"]), 0),
	}, nil
}

// UpdateStatus updates the status of a delivery and maintains the
// unfinished index and status counters
func (r *Repository) UpdateStatus(ctx context.Context, webhookID string, status delivery.Status) error {
	hashKey := fmt.Sprintf("%s:%s", hashPrefix, webhookID)

	prev, err := r.client.HGet(ctx, hashKey, "status").Result()
	if err == redis.Nil {
		return delivery.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reading previous status: %w", err)
	}

	err = r.client.HSet(ctx, hashKey, map[string]interface{}{
		"status":     status.String(),
		"updated_at": time.Now().Unix(),
	}).Err()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if status.IsFinal() {
		if err := r.client.SRem(ctx, unfinishedKey, webhookID).Err(); err != nil {
			return fmt.Errorf("removing from unfinished index: %w", err)
		}
	}

	if prev != status.String() {
		if err := r.client.HIncrBy(ctx, countsKey, prev, -1).Err(); err != nil {
			return fmt.Errorf("counting delivery status: %w", err)
		}
		if err := r.client.HIncrBy(ctx, countsKey, status.String(), 1).Err(); err != nil {
			return fmt.Errorf("counting delivery status: %w", err)
		}
	}

	return nil
}

// AppendAttempt appends one attempt record to the webhook's log
func (r *Repository) AppendAttempt(ctx context.Context, a delivery.Attempt) error {
	listKey := fmt.Sprintf("%s:%s:%s", hashPrefix, a.WebhookID, attemptSuffix)

	data, err := json.Marshal(attemptRecord{
		WebhookID:      a.WebhookID,
		SubscriptionID: a.SubscriptionID,
		TargetURL:      a.TargetURL,
		AttemptNumber:  a.AttemptNumber,
		Success:        a.Success,
		StatusCode:     a.StatusCode,
		Error:          a.Error,
		Timestamp:      a.Timestamp.Unix(),
	})
	if err != nil {
		return fmt.Errorf("marshaling attempt: %w", err)
	}

	if err := r.client.RPush(ctx, listKey, data).Err(); err != nil {
		return fmt.Errorf("appending attempt: %w", err)
	}

	return nil
}

// ListAttempts returns the attempt log ordered by attempt number
func (r *Repository) ListAttempts(ctx context.Context, webhookID string) ([]delivery.Attempt, error) {
	listKey := fmt.Sprintf("%s:%s:%s", hashPrefix, webhookID, attemptSuffix)

	entries, err := r.client.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("listing attempts: %w", err)
	}

	attempts := make([]delivery.Attempt, 0, len(entries))
	for _, entry := range entries {
		var rec attemptRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return nil, fmt.Errorf("unmarshaling attempt: %w", err)
		}
		attempts = append(attempts, delivery.Attempt{
			WebhookID:      rec.WebhookID,
			SubscriptionID: rec.SubscriptionID,
			TargetURL:      rec.TargetURL,
			AttemptNumber:  rec.AttemptNumber,
			Success:        rec.Success,
			StatusCode:     rec.StatusCode,
			Error:          rec.Error,
			Timestamp:      time.Unix(rec.Timestamp, 0),
		})
	}
	return attempts, nil
}

// ListUnfinished returns deliveries indexed as non-terminal
func (r *Repository) ListUnfinished(ctx context.Context) ([]delivery.Delivery, error) {
	ids, err := r.client.SMembers(ctx, unfinishedKey).Result()
	if err != nil {
		return nil, fmt.Errorf("listing unfinished ids: %w", err)
	}

	deliveries := make([]delivery.Delivery, 0, len(ids))
	for _, id := range ids {
		d, err := r.Get(ctx, id)
		if err == delivery.ErrNotFound {
			// Index can lag behind expired hashes
			continue
		}
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// CountByStatus returns the number of deliveries per status name
func (r *Repository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	data, err := r.client.HGetAll(ctx, countsKey).Result()
	if err != nil {
		return nil, fmt.Errorf("reading status counts: %w", err)
	}

	counts := make(map[string]int64, len(data))
	for status, value := range data {
		counts[status] = parseInt64(value)
	}
	return counts, nil
}

// Close closes the underlying Redis client
func (r *Repository) Close(_ context.Context) error {
	return r.client.Close()
}

func parseInt64(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}
