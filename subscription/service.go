package subscription

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

/* Service represents the business logic layer
 * Uses pointer semantics as it's an API, not data
 */

// UseCase defines the business operations for subscription management
type UseCase interface {
	Create(ctx context.Context, targetURL, secret string) (Subscription, error)
	Get(ctx context.Context, id string) (Subscription, error)
	List(ctx context.Context) ([]Subscription, error)
}

type Service struct {
	Repo Repository
}

// NewService creates a new subscription service with dependency injection
func NewService(repo Repository) *Service {
	return &Service{
		Repo: repo,
	}
}

// Create registers a new subscription with a generated id
func (s *Service) Create(ctx context.Context, targetURL, secret string) (Subscription, error) {
	sub := Subscription{
		ID:        uuid.New().String(),
		TargetURL: targetURL,
		Secret:    secret,
		CreatedAt: time.Now(),
	}
	if err := sub.Validate(); err != nil {
		return Subscription{}, fmt.Errorf("validating subscription: %w", err)
	}
	if err := s.Repo.Store(ctx, sub); err != nil {
		return Subscription{}, fmt.Errorf("storing subscription: %w", err)
	}
	return sub, nil
}

// Get retrieves a subscription by id
func (s *Service) Get(ctx context.Context, id string) (Subscription, error) {
	sub, err := s.Repo.Get(ctx, id)
	if err != nil {
		return Subscription{}, err
	}
	return sub, nil
}

// List returns all registered subscriptions
func (s *Service) List(ctx context.Context) ([]Subscription, error) {
	subs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing subscriptions: %w", err)
	}
	return subs, nil
}
