package delivery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcelsud/webhook-courier/subscription"
)

// Report is the status-query view of a delivery: its attempt history
// plus the collapsed summary status.
type Report struct {
	WebhookID      string
	SubscriptionID string
	Status         string
	Attempts       []Attempt
}

// UseCase defines the delivery operations exposed to the HTTP layer
type UseCase interface {
	/* Ingest accepts a payload for a subscription and queues it for
	 * delivery. Fire-and-forget: it returns the generated webhook id
	 * immediately, before any attempt happens. ErrUnknownSubscription
	 * aborts ingestion with nothing recorded.
	 */
	Ingest(ctx context.Context, subscriptionID string, payload []byte) (string, error)
	// Status reports a webhook's attempt history. ErrNotFound for
	// unknown ids; a known but unattempted webhook reads as pending.
	Status(ctx context.Context, webhookID string) (Report, error)
}

type Service struct {
	Subs  subscription.Reader
	Repo  Repository
	Queue *Queue
}

// NewService creates a new delivery service with dependency injection
func NewService(subs subscription.Reader, repo Repository, queue *Queue) *Service {
	return &Service{
		Subs:  subs,
		Repo:  repo,
		Queue: queue,
	}
}

// Ingest validates the subscription, persists the pending delivery and
// enqueues attempt 1 with zero delay.
func (s *Service) Ingest(ctx context.Context, subscriptionID string, payload []byte) (string, error) {
	if _, err := s.Subs.Get(ctx, subscriptionID); err != nil {
		if err == subscription.ErrNotFound {
			return "", ErrUnknownSubscription
		}
		return "", fmt.Errorf("looking up subscription: %w", err)
	}

	d := Delivery{
		WebhookID:      uuid.New().String(),
		SubscriptionID: subscriptionID,
		Payload:        payload,
		Status:         Pending,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	// Persisting before enqueueing makes the webhook visible to status
	// queries as pending and recoverable after a crash.
	if err := s.Repo.Save(ctx, d); err != nil {
		return "", fmt.Errorf("saving delivery: %w", err)
	}

	s.Queue.EnqueueNow(Job{WebhookID: d.WebhookID, Attempt: 1})
	return d.WebhookID, nil
}

// Status derives the externally visible state of a webhook from its
// persisted delivery record and attempt log.
func (s *Service) Status(ctx context.Context, webhookID string) (Report, error) {
	d, err := s.Repo.Get(ctx, webhookID)
	if err != nil {
		return Report{}, err
	}

	attempts, err := s.Repo.ListAttempts(ctx, webhookID)
	if err != nil {
		return Report{}, fmt.Errorf("listing attempts: %w", err)
	}

	return Report{
		WebhookID:      d.WebhookID,
		SubscriptionID: d.SubscriptionID,
		Status:         d.Status.Summary(),
		Attempts:       attempts,
	}, nil
}
